// Package logging builds the daemon's slog logger on top of a charmbracelet
// log handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// EnvLevel overrides the configured log level when set.
const EnvLevel = "FLOATWM_LOG_LEVEL"

// Logger pairs the slog front end with the handler whose level can change
// on config reload.
type Logger struct {
	*slog.Logger
	handler *log.Logger
}

// New returns a logger writing to w at the given level. An empty level means
// info. FLOATWM_LOG_LEVEL wins over level when set.
func New(w io.Writer, level string) (*Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "floatwm",
	})
	l := &Logger{Logger: slog.New(handler), handler: handler}
	if err := l.SetLevel(level); err != nil {
		return nil, err
	}
	return l, nil
}

// SetLevel changes the minimum level. The environment override still applies.
func (l *Logger) SetLevel(level string) error {
	if env := strings.TrimSpace(os.Getenv(EnvLevel)); env != "" {
		level = env
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.handler.SetLevel(lvl)
	return nil
}

// Level reports the current minimum level.
func (l *Logger) Level() log.Level {
	return l.handler.GetLevel()
}

// ParseLevel accepts debug, info, warn (or warning) and error, case-insensitively.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("unknown log level %q", level)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
