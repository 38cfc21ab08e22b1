package models

import (
	"github.com/oarkflow/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oarkflow/stockbt/config"
)

// DB is DBconnection
var DB *gorm.DB

// OpenDB opens the sqlite file name and migrates the candle table
func OpenDB(name string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.NewE(err, "database open error", "")
	}
	if err := db.AutoMigrate(&Candle{}); err != nil {
		return nil, errors.NewE(err, "database migrate error", "")
	}
	return db, nil
}

// InitDB initializes DB from config.Config.DBname
func InitDB() error {
	db, err := OpenDB(config.Config.DBname)
	if err != nil {
		logrus.Warnf("%v", err)
		return err
	}
	DB = db
	return nil
}
