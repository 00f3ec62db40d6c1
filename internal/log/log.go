// Package log provides leveled, structured logging for sightline.
// It wraps zap with defaults suited to a stdio server: everything goes to
// stderr because stdout carries the MCP protocol.
package log

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel names the environment variable that selects the log level.
const EnvLevel = "SIGHTLINE_LOG_LEVEL"

var (
	mu     sync.Mutex
	logger *zap.SugaredLogger
)

// Init configures the global logger with the given level.
// Valid levels: "debug", "info", "warn", "error". Unknown values mean "info".
// Calling Init again replaces the logger.
func Init(level string) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encoder := zapcore.NewConsoleEncoder(encCfg)
	if os.Getenv("GO_ENV") == "production" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zap.NewAtomicLevelAt(lvl))

	mu.Lock()
	logger = zap.New(core, zap.AddCaller()).Sugar()
	mu.Unlock()
}

// InitFromEnv configures the logger from SIGHTLINE_LOG_LEVEL, falling back
// to level when the variable is unset or empty.
func InitFromEnv(level string) {
	if env := os.Getenv(EnvLevel); env != "" {
		level = env
	}
	Init(level)
}

// L returns the global logger, initializing it at info level on first use.
func L() *zap.SugaredLogger {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l == nil {
		Init("info")
		mu.Lock()
		l = logger
		mu.Unlock()
	}
	return l
}

// Named returns a child logger tagged with a component name.
func Named(component string) *zap.SugaredLogger {
	return L().Named(component)
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}
