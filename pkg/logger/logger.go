package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes leveled application logs to stdout and a rotating file.
// It is passed explicitly to every component that logs; there is no
// package-global instance.
type Logger struct {
	out *log.Logger
}

// New creates a Logger writing to the given directory with rotation
func New(logDir string) (*Logger, error) {
	absLogDir, err := filepath.Abs(logDir)
	if err != nil {
		absLogDir = logDir
	}

	if err := os.MkdirAll(absLogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", absLogDir, err)
	}

	currentDate := time.Now().Format("2006-01-02")

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(absLogDir, fmt.Sprintf("app-%s.log", currentDate)),
		MaxSize:    10, // 10 MB
		MaxBackups: 30, // Keep 30 old files
		MaxAge:     30, // 30 days
		Compress:   true,
		LocalTime:  true,
	}

	l := &Logger{
		out: log.New(io.MultiWriter(os.Stdout, logFile), "", log.LstdFlags),
	}
	l.Info("Logger initialized, log directory: %s", absLogDir)

	return l, nil
}

// NewNop returns a Logger that discards all output
func NewNop() *Logger {
	return &Logger{out: log.New(io.Discard, "", 0)}
}

// Info logs info level messages
func (l *Logger) Info(format string, v ...interface{}) {
	l.out.Printf("[INFO] "+format, v...)
}

// Error logs error level messages
func (l *Logger) Error(format string, v ...interface{}) {
	l.out.Printf("[ERROR] "+format, v...)
}

// Debug logs debug level messages
func (l *Logger) Debug(format string, v ...interface{}) {
	l.out.Printf("[DEBUG] "+format, v...)
}
