package config

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/oarkflow/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Config represents config info
var Config ConfList

// ConfList has the process-wide contents of the config file
type ConfList struct {
	DataDriver  string
	DataPath    string
	DBname      string
	Port        int
	LogLevel    string
	Instruments []string
	File        *File
}

// File wraps an ini file with typed getters. Every getter returns def
// when the section or key is missing or the value does not parse.
type File struct {
	ini *ini.File
}

// Load reads an ini source: a file name or raw []byte
func Load(source any) (*File, error) {
	conf, err := ini.Load(source)
	if err != nil {
		return nil, errors.NewE(err, "unable to load config", "")
	}
	return &File{ini: conf}, nil
}

// Empty returns a file without any keys, so every getter yields its default
func Empty() *File {
	return &File{ini: ini.Empty()}
}

// InitConfig initializes config settings from path
func InitConfig(path string) {
	conf, err := Load(path)
	if err != nil {
		logrus.Warnf("init file open error: %v", err)
		conf = Empty()
	}

	Config = ConfList{
		DataDriver:  conf.GetString("data", "driver", "csv"),
		DataPath:    conf.GetString("data", "path", "data"),
		DBname:      conf.GetString("db", "name", "stockbt.sqlite3"),
		Port:        conf.GetInt("web", "port", 8080),
		LogLevel:    conf.GetString("log", "level", "info"),
		Instruments: conf.GetList("universe", "instruments"),
		File:        conf,
	}
}

func (f *File) key(section, key string) (*ini.Key, bool) {
	if f == nil || f.ini == nil {
		return nil, false
	}
	sec, err := f.ini.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return nil, false
	}
	return sec.Key(key), true
}

// GetString returns the trimmed value, def when missing or blank
func (f *File) GetString(section, key, def string) string {
	k, ok := f.key(section, key)
	if !ok {
		return def
	}
	if v := strings.TrimSpace(k.String()); v != "" {
		return v
	}
	return def
}

func (f *File) GetInt(section, key string, def int) int {
	k, ok := f.key(section, key)
	if !ok {
		return def
	}
	v, err := k.Int()
	if err != nil {
		return def
	}
	return v
}

func (f *File) GetDouble(section, key string, def float64) float64 {
	k, ok := f.key(section, key)
	if !ok {
		return def
	}
	v, err := k.Float64()
	if err != nil {
		return def
	}
	return v
}

func (f *File) GetBool(section, key string, def bool) bool {
	k, ok := f.key(section, key)
	if !ok {
		return def
	}
	v, err := k.Bool()
	if err != nil {
		return def
	}
	return v
}

// GetDate parses any common date layout
func (f *File) GetDate(section, key string, def time.Time) time.Time {
	k, ok := f.key(section, key)
	if !ok {
		return def
	}
	v, err := dateparse.ParseAny(strings.TrimSpace(k.String()))
	if err != nil {
		return def
	}
	return v
}

// GetList splits a comma separated value, dropping empty items
func (f *File) GetList(section, key string) []string {
	var out []string
	for _, item := range strings.Split(f.GetString(section, key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
