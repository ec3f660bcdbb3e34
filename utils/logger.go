package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides leveled logging throughout the application.
type Logger struct {
	log *logrus.Logger
}

// LoggerOptions configures level and an optional rotating log file.
type LoggerOptions struct {
	Level string
	File  string
}

// NewLogger creates an info-level Logger writing to stdout.
func NewLogger() *Logger {
	return NewLoggerWithOptions(LoggerOptions{})
}

// NewLoggerWithOptions creates a Logger. When File is set, entries are also
// written to that file, rotated by size.
func NewLoggerWithOptions(opts LoggerOptions) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	var out io.Writer = os.Stdout
	if opts.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
		})
	}
	l.SetOutput(out)

	return &Logger{log: l}
}

// SetOutput redirects all entries to w.
func (l *Logger) SetOutput(w io.Writer) {
	l.log.SetOutput(w)
}

func (l *Logger) Info(format string, args ...any) {
	l.log.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.log.Debugf(format, args...)
}
