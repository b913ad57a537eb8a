package logging

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"

	"github.com/soir-live/soir/internal/conf"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Package logging provides structured logging capabilities using slog.

// global logger instance, initialized in Init()
var (
	structuredLogger *slog.Logger
	loggerMu         sync.RWMutex // Protects logger access
)

// currentLogLevel stores the dynamic level for all loggers, adjusted via
// SetLevel (wired to the --debug flag in cmd/root.go).
var currentLogLevel = new(slog.LevelVar)
var initOnce sync.Once

// defaultReplaceAttr formats time to second precision and truncates float64
// values to 2 decimal places.
func defaultReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.StringValue(a.Value.Time().Format("2006-01-02T15:04:05Z07:00"))
	}
	if a.Value.Kind() == slog.KindFloat64 {
		truncatedVal := math.Trunc(a.Value.Float64()*100) / 100.0
		a.Value = slog.Float64Value(truncatedVal)
	}
	return a
}

// Init initializes the global structured (JSON) logger, writing to
// logs/app.log.
func Init() {
	initOnce.Do(func() {
		currentLogLevel.Set(slog.LevelInfo)

		if err := os.MkdirAll("logs", 0o755); err != nil { //nolint:gosec // accept 0o755 for now
			fmt.Printf("Failed to create logs directory: %v\n", err)
			os.Exit(1)
		}

		structuredLogFile, err := os.OpenFile("logs/app.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666) //nolint:gosec // accept 0o666 for now
		if err != nil {
			fmt.Printf("Failed to open structured log file: %v\n", err)
			structuredLogFile = os.Stderr
		}

		structuredHandler := slog.NewJSONHandler(structuredLogFile, &slog.HandlerOptions{
			Level:       currentLogLevel,
			ReplaceAttr: defaultReplaceAttr,
		})

		loggerMu.Lock()
		structuredLogger = slog.New(structuredHandler)
		loggerMu.Unlock()

		slog.SetDefault(structuredLogger)
	})
}

// SetLevel changes the minimum level the structured logger emits at.
func SetLevel(level slog.Level) {
	currentLogLevel.Set(level)
}

// ForService creates a new logger instance with the 'service' attribute added.
// It uses the global structured logger as the base. Before Init() has been
// called it falls back to slog.Default(), so a package-level logger created
// at import time is never nil.
func ForService(serviceName string) *slog.Logger {
	loggerMu.RLock()
	logger := structuredLogger
	loggerMu.RUnlock()

	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("service", serviceName)
}

// NewFileLogger builds a dedicated rotated JSON logger for a subsystem that
// needs its own file, separate from the global logs/app.log (e.g. a crash
// log for panicking loop bodies). The file rotates by size only, with the
// size limit taken from conf.Setting().Main.Log.MaxSize (10 MB when unset);
// the other Main.Log rotation settings are not read here. levelVar may be
// nil, in which case the logger always emits at slog.LevelInfo and above.
func NewFileLogger(filePath, serviceName string, levelVar *slog.LevelVar) *slog.Logger {
	logCfg := conf.Setting().Main.Log

	maxSizeMB := int(logCfg.MaxSize / (1024 * 1024))
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}

	writer := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    maxSizeMB,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}

	var level slog.Leveler = slog.LevelInfo
	if levelVar != nil {
		level = levelVar
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: defaultReplaceAttr,
	})
	return slog.New(handler).With("service", serviceName)
}
