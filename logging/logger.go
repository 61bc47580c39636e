package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is implemented by both *logrus.Logger and *logrus.Entry, so contextual
// sub-loggers created via WithField can be passed around interchangeably.
type Logger interface {
	logrus.FieldLogger
}

func New() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return l
}
