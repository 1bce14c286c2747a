// Package logging builds the logrus logger shared by every component.
// The terminal belongs to the dashboard, so logs go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Off disables logging when used as the log file.
const Off = "off"

const (
	appDir   = "chainwatch"
	fileName = "chainwatch.log"
)

// DefaultPath returns the default log file location under the user's
// cache directory.
func DefaultPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("logging: unable to determine cache directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Open returns a logger writing to path at the given level and a closer
// for the underlying file. An empty path uses DefaultPath; Off discards
// everything.
func Open(path, level string) (*logrus.Logger, io.Closer, error) {
	lvl := logrus.InfoLevel
	if level != "" {
		var err error
		lvl, err = logrus.ParseLevel(level)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
	}

	logger := logrus.New()
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	if strings.EqualFold(path, Off) {
		logger.SetOutput(io.Discard)
		return logger, io.NopCloser(nil), nil
	}

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("logging: failed to create directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: failed to open %s: %w", path, err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

// Discard returns a logger that drops everything. Components fall back
// to it when no logger is configured.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
