package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	log "github.com/sirupsen/logrus"
)

// LogFormatter renders entries as "timestamp [LEVEL] message"
type LogFormatter struct {
	TimestampFormat string
}

// Format implements logrus.Formatter
func (f *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	timestamp := entry.Time.Format(f.TimestampFormat)
	level := strings.ToUpper(entry.Level.String())
	msg := fmt.Sprintf("%s [%s] %s\n", timestamp, level, entry.Message)
	return []byte(msg), nil
}

// SetupLogger configures logrus with daily-rotated file output plus stdout
func SetupLogger() error {
	logDir := os.Getenv("LOG_DIRECTORY")
	if logDir == "" {
		logDir = "./logs"
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator, err := rotatelogs.New(
		filepath.Join(logDir, "server.%Y-%m-%d.log"),
		rotatelogs.WithLinkName(filepath.Join(logDir, "server.log")),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(30*24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize log rotation: %w", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	log.SetFormatter(&LogFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	log.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))
	return nil
}

func parseLevel(level string) log.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return log.DebugLevel
	case "WARN", "WARNING":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Info logs informational messages
func Info(format string, v ...interface{}) {
	log.Infof(format, v...)
}

// Warning logs warning messages
func Warning(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

// Error logs error messages
func Error(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

// Debug logs debug messages
func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}
