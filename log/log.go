package log

import (
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// SetLogging sets log using in this application.
// Unknown levels fall back to info.
func SetLogging(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(formatter(term.IsTerminal(int(os.Stdout.Fd()))))
}

func formatter(tty bool) logrus.Formatter {
	if tty {
		return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
	}
	return &logrus.JSONFormatter{}
}
