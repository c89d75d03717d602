package internal

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	logMu   sync.Mutex
	logFile *os.File
	logPath string
	output  io.Writer

	setupOnce sync.Once

	loggerOnce sync.Once
	logger     *slog.Logger
	levelVar   = &slog.LevelVar{}

	internalLoggerOnce sync.Once
	internalLogger     *slog.Logger
	internalLevelVar   = &slog.LevelVar{}
)

// SetLogPath sets the full path for the log file, including filename.
// Creates all necessary parent directories. An empty path logs to stderr only.
// Must be called before the first logger is requested.
func SetLogPath(path string) {
	logMu.Lock()
	defer logMu.Unlock()
	logPath = path
}

// SetLogOutput replaces the log destination. Must be called before the first
// logger is requested; intended for tests and embedding hosts.
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	output = w
}

func setup() {
	setupOnce.Do(func() {
		logMu.Lock()
		defer logMu.Unlock()

		if output != nil {
			return
		}
		output = os.Stderr

		if logPath == "" {
			return
		}

		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return
		}

		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			// Can't open log file, fall back to console-only
			return
		}
		logFile = f
		output = io.MultiWriter(os.Stderr, logFile)
	})
}

// GetLogger returns the logger for application code built on the engine.
func GetLogger() *slog.Logger {
	loggerOnce.Do(func() {
		setup()
		logger = slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level: levelVar,
		}))
	})
	return logger
}

// GetInternalLogger returns the logger the engine itself writes to.
// It defaults to Error so transitions stay quiet unless asked for.
func GetInternalLogger() *slog.Logger {
	internalLoggerOnce.Do(func() {
		setup()
		internalLevelVar.Set(slog.LevelError)
		internalLogger = slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level: internalLevelVar,
		})).With("component", "pagestack")
	})
	return internalLogger
}

func SetLogLevel(level slog.Level) {
	GetLogger()
	levelVar.Set(level)
}

func SetInternalLogLevel(level slog.Level) {
	GetInternalLogger()
	internalLevelVar.Set(level)
}

// ParseLogLevel maps a config string to a level, defaulting to Info.
func ParseLogLevel(rawLevel string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(rawLevel)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func SetRawLogLevel(rawLevel string) {
	SetLogLevel(ParseLogLevel(rawLevel))
}

func CloseLogger() {
	logMu.Lock()
	defer logMu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
