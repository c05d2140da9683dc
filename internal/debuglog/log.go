package debuglog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel. Unknown strings map to INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Charm maps the level onto charmbracelet/log. LevelOff maps above fatal so
// nothing gets through.
func (l LogLevel) Charm() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.FatalLevel + 1
	}
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	logger       = log.New(io.Discard)
	logFile      *os.File
)

// Setup configures the logging system with the specified level and optional file path.
// If filePath is empty, defaults to ~/.reel/reel.log. The TUI owns stdout, so
// logs only ever go to a file.
func Setup(level LogLevel, filePath ...string) error {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	if level == LevelOff {
		logger = log.New(io.Discard)
		return nil
	}

	var logPath string
	if len(filePath) > 0 && filePath[0] != "" {
		logPath = filePath[0]
	} else {
		home, _ := os.UserHomeDir()
		logPath = filepath.Join(home, ".reel", "reel.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	logFile = f
	logger = log.NewWithOptions(f, log.Options{
		Prefix:          "reel",
		ReportTimestamp: true,
		TimeFormat:      time.StampMicro,
		Level:           level.Charm(),
		Formatter:       log.LogfmtFormatter,
	})
	return nil
}

// Use routes package-level logging to l, closing any log file opened by
// Setup. Command-line modes log to stderr this way.
func Use(l *log.Logger, level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	currentLevel = level
	logger = l
	logger.SetLevel(level.Charm())
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Logger returns the underlying logger. It is never nil; when logging is off
// it discards everything.
func Logger() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Close closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(io.Discard)
	currentLevel = LevelOff
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

func Debugf(format string, args ...any) {
	Logger().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	Logger().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	Logger().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	Logger().Errorf(format, args...)
}

// FieldLogger attaches key/value pairs to every message.
type FieldLogger struct {
	l *log.Logger
}

// WithFields returns a new logger with the specified fields. Keys are sorted
// so output is stable.
func WithFields(fields map[string]interface{}) *FieldLogger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return &FieldLogger{l: Logger().With(kv...)}
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	fl.l.Debugf(format, args...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	fl.l.Infof(format, args...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	fl.l.Warnf(format, args...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	fl.l.Errorf(format, args...)
}
