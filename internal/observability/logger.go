package observability

import (
	"fmt"
	"strings"

	"github.com/hsdfat/go-zlog/logger"
	"go.uber.org/zap"
)

// Log is the process-wide gridops logger
var Log logger.LoggerI = logger.NewLogger()

func init() {
	Log.(*logger.Logger).SugaredLogger = Log.(*logger.Logger).SugaredLogger.WithOptions(zap.AddCallerSkip(1))
}

// Logger is an alias for the underlying logger interface
type Logger = logger.LoggerI

var levels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "fatal": true}

// SetLevel changes the global log level. Unknown levels leave it unchanged.
func SetLevel(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if !levels[level] {
		return fmt.Errorf("unknown log level %q", level)
	}
	logger.SetLevel(level)
	return nil
}

// WithFields returns the global logger with contextual key/value pairs,
// e.g. WithFields("request_id", id)
func WithFields(args ...any) Logger {
	return Log.With(args...).(logger.LoggerI)
}

// New returns a logger tagged with component. An empty level keeps the current one.
func New(component, level string) Logger {
	if level != "" {
		_ = SetLevel(level)
	}
	return WithFields("component", component)
}
