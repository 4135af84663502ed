// Package logging wraps zerolog for byobu-select.
//
// The terminal belongs to the session prompt and, after exec, to tmux, so
// logs default to warnings on stderr. Debug logging goes to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	Logger zerolog.Logger

	closer io.Closer
)

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

func init() {
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
}

// ParseLevel maps a level name to a LogLevel, defaulting to warn.
func ParseLevel(s string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelInfo:
		return LevelInfo
	case LevelError:
		return LevelError
	default:
		return LevelWarn
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

// Configure sets up the global logger writing to w at the given level.
func Configure(level LogLevel, w io.Writer) {
	Logger = zerolog.New(w).With().Timestamp().Logger().Level(level.zerolog())
	log.Logger = Logger
}

func stderrWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
}

// ConfigureFile opens path for appending (creating parent directories) and
// routes the global logger to it. When path is empty, warnings and errors go
// to stderr in console format.
func ConfigureFile(level LogLevel, path string) error {
	if path == "" {
		Configure(level, stderrWriter())
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	Close()
	closer = f
	Configure(level, f)
	return nil
}

// Close releases the log file, if any, and sends later messages to stderr.
// Called before exec so the descriptor does not leak into tmux or the shell.
func Close() {
	if closer != nil {
		_ = closer.Close()
		closer = nil
		Logger = Logger.Output(stderrWriter())
		log.Logger = Logger
	}
}

// Debugf logs a formatted message at debug level
func Debugf(format string, args ...interface{}) {
	Logger.Debug().Msgf(format, args...)
}

// Infof logs a formatted message at info level
func Infof(format string, args ...interface{}) {
	Logger.Info().Msgf(format, args...)
}

// Warnf logs a formatted message at warn level
func Warnf(format string, args ...interface{}) {
	Logger.Warn().Msgf(format, args...)
}

// Errorf logs a formatted message at error level
func Errorf(format string, args ...interface{}) {
	Logger.Error().Msgf(format, args...)
}

// WithField creates a logger with a field
func WithField(key string, value interface{}) zerolog.Logger {
	return Logger.With().Interface(key, value).Logger()
}
