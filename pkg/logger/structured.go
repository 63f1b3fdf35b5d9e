package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog = zerolog.New(os.Stderr).With().Timestamp().Str("service", "angple-plugins").Logger()

// InitStructured initializes the structured zerolog logger
func InitStructured(env string) {
	var w io.Writer

	if env == "development" || env == "dev" || env == "local" {
		// Pretty console output for development
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	} else {
		// JSON output for production (machine-readable)
		w = os.Stdout
	}

	zlog = zerolog.New(w).With().
		Timestamp().
		Str("service", "angple-plugins").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// SetOutput replaces the writer of the global logger (tests, CLI quiet mode)
func SetOutput(w io.Writer) {
	zlog = zlog.Output(w)
}

// SetLevel sets the global minimum level ("debug", "info", "warn", "error")
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// Info logs a printf-style message on the global logger
func Info(format string, args ...interface{}) {
	zlog.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn logs a printf-style warning on the global logger
func Warn(format string, args ...interface{}) {
	zlog.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs a printf-style error on the global logger
func Error(format string, args ...interface{}) {
	zlog.Error().Msg(fmt.Sprintf(format, args...))
}

// Component printf-style logger tagged with a component name
type Component struct {
	z zerolog.Logger
}

// NewComponent returns a component logger derived from the global logger
func NewComponent(name string) *Component {
	return &Component{z: zlog.With().Str("component", name).Logger()}
}

// Debug debug level
func (c *Component) Debug(msg string, args ...interface{}) {
	c.z.Debug().Msg(fmt.Sprintf(msg, args...))
}

// Info info level
func (c *Component) Info(msg string, args ...interface{}) {
	c.z.Info().Msg(fmt.Sprintf(msg, args...))
}

// Warn warn level
func (c *Component) Warn(msg string, args ...interface{}) {
	c.z.Warn().Msg(fmt.Sprintf(msg, args...))
}

// Error error level
func (c *Component) Error(msg string, args ...interface{}) {
	c.z.Error().Msg(fmt.Sprintf(msg, args...))
}
