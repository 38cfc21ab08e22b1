package log

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLogging(t *testing.T) {
	assert := assert.New(t)
	defer logrus.SetLevel(logrus.InfoLevel)

	SetLogging("debug")
	assert.Equal(logrus.DebugLevel, logrus.GetLevel())

	SetLogging("loud")
	assert.Equal(logrus.InfoLevel, logrus.GetLevel())
}

func TestFormatter(t *testing.T) {
	assert.IsType(t, &logrus.TextFormatter{}, formatter(true))
	assert.IsType(t, &logrus.JSONFormatter{}, formatter(false))
}
