package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Level is the minimum level that gets written. Callers set it directly,
// usually from a --verbose flag.
var Level = InfoLevel

var (
	mu     sync.Mutex
	logger = newLogger(os.Stderr)
)

type dynamicLeveler struct{}

func (dynamicLeveler) Level() slog.Level {
	return Level.slog()
}

func (l LogLevel) slog() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l LogLevel) String() string {
	return l.slog().String()
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: dynamicLeveler{}}))
}

// SetOutput redirects every subsequent log line to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func write(level LogLevel, msg string) {
	if level < Level {
		return
	}
	current().Log(context.Background(), level.slog(), msg)
}

func Debug(msg string) { write(DebugLevel, msg) }
func Info(msg string) { write(InfoLevel, msg) }
func Warn(msg string) { write(WarnLevel, msg) }
func Error(msg string) { write(ErrorLevel, msg) }

func Debugf(format string, args ...any) {
	if Level > DebugLevel {
		return
	}
	write(DebugLevel, fmt.Sprintf(format, args...))
}

func Infof(format string, args ...any) {
	if Level > InfoLevel {
		return
	}
	write(InfoLevel, fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	if Level > WarnLevel {
		return
	}
	write(WarnLevel, fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	write(ErrorLevel, fmt.Sprintf(format, args...))
}
