package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging surface used across the service.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Infow(msg string, fields map[string]any)
}

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)        {}
func (NopLogger) Infof(string, ...any)         {}
func (NopLogger) Warnf(string, ...any)         {}
func (NopLogger) Errorf(string, ...any)        {}
func (NopLogger) Infow(string, map[string]any) {}

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Setup configures the root logger. format is "json" or "console".
func Setup(level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	var out io.Writer = os.Stdout
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	mu.Lock()
	base = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	mu.Unlock()
	return nil
}

// New returns a Logger tagged with the given component. It follows later
// calls to Setup, so package-level loggers pick up the configured level.
func New(component string) Logger {
	return &ZerologLogger{component: component}
}

// NewWithWriter is used in tests to capture output.
func NewWithWriter(component string, w io.Writer) Logger {
	z := zerolog.New(w).With().Str("component", component).Logger()
	return &ZerologLogger{component: component, fixed: &z}
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	component string
	fixed     *zerolog.Logger
}

func (l *ZerologLogger) logger() *zerolog.Logger {
	if l.fixed != nil {
		return l.fixed
	}
	mu.RLock()
	z := base.With().Str("component", l.component).Logger()
	mu.RUnlock()
	return &z
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.logger().Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.logger().Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.logger().Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.logger().Error().Msgf(format, args...)
}

func (l *ZerologLogger) Infow(msg string, fields map[string]any) {
	ev := l.logger().Info()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
