// Package logging builds the application logger and the timing wrapper used
// around every tool operation.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// New creates a logrus logger. format is "text" or "json". When file is not
// empty the output is tee'd into it and the returned closer must be called on
// shutdown.
func New(level, format, file string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var closer io.Closer = nopCloser{}
	logger.SetOutput(os.Stdout)
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(io.MultiWriter(os.Stdout, f))
		closer = f
	}

	return logger, closer, nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Measure runs fn and logs how long it took under the operation name.
func Measure[T any](log logrus.FieldLogger, name string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	duration := time.Since(start)

	entry := log.WithFields(logrus.Fields{
		"operation":   name,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("operation failed")
	} else {
		entry.Info(fmt.Sprintf("%s executed in %.4f seconds", name, duration.Seconds()))
	}
	return result, err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
