// Package diag holds the process-wide diagnostic logger.
//
// The logger is configured once per process. Later calls to Init return the
// logger built by the first call, whatever level they ask for.
package diag

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel names the environment variable read when no level is given.
const EnvLevel = "SPELL_LOG"

// DefaultLevel is used when neither the caller nor the environment sets a level.
const DefaultLevel = "info"

var (
	once   sync.Once
	mu     sync.RWMutex
	logger *zap.Logger
)

// Init builds the process logger on first use and returns it.
// An empty level falls back to $SPELL_LOG, then to "info".
func Init(level string) *zap.Logger {
	once.Do(func() {
		l, err := New(level)
		if err != nil {
			l = zap.NewNop()
		}
		mu.Lock()
		logger = l
		mu.Unlock()
	})
	return L()
}

// L returns the process logger, or a no-op logger before Init.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// New builds a production JSON logger writing to stderr at the resolved level.
func New(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(ParseLevel(ResolveLevel(level)))
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	return config.Build()
}

// ResolveLevel applies the fallback chain: level, then $SPELL_LOG, then DefaultLevel.
func ResolveLevel(level string) string {
	if level = strings.TrimSpace(level); level != "" {
		return level
	}
	if env := strings.TrimSpace(os.Getenv(EnvLevel)); env != "" {
		return env
	}
	return DefaultLevel
}

// ParseLevel maps a level name to a zap level. Unknown names map to info.
func ParseLevel(name string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
