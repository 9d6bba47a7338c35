package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a text logger at the given level. config.Load rejects bad
// levels, so the info fallback only covers callers that skip it.
func New(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Discard returns a logger that drops everything, for tests
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
