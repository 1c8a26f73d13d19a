package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes assessment audit notes to a per-day file. A nil *Logger is
// safe to use and discards everything, so callers can treat logging as
// optional.
type Logger struct {
	logFile *os.File
	logger  *log.Logger
	mu      sync.Mutex
}

// LogLevel tags log entries by severity
type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARN"
	LogLevelError   LogLevel = "ERROR"
)

// NewLogger creates a file logger under dir, one file per day.
func NewLogger(dir, name string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", name, timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		logFile: file,
		logger:  log.New(file, "", 0),
	}, nil
}

func (l *Logger) write(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[%s] [%s] %s", time.Now().Format("15:04:05"), level, fmt.Sprintf(format, args...))
}

// Info logs an informational entry
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LogLevelInfo, format, args...)
}

// Warn logs a warning entry
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LogLevelWarning, format, args...)
}

// Error logs an error entry
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LogLevelError, format, args...)
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	if l == nil || l.logFile == nil {
		return nil
	}
	return l.logFile.Close()
}
