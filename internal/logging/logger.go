package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel accepts debug, info, warn/warning and error, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, errors.Errorf("unknown log level %q", s)
}

var levelTags = map[Level]string{
	LevelDebug: color.New(color.FgHiBlack).Sprint("DEBUG"),
	LevelInfo:  color.New(color.FgCyan).Sprint("INFO "),
	LevelWarn:  color.New(color.FgYellow).Sprint("WARN "),
	LevelError: color.New(color.FgRed, color.Bold).Sprint("ERROR"),
}

var plainTags = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO ",
	LevelWarn:  "WARN ",
	LevelError: "ERROR",
}

// shared output and threshold for every component logger
var (
	mu     sync.RWMutex
	out    = log.New(os.Stderr, "", log.LstdFlags)
	level  = LevelInfo
	colors = !color.NoColor
)

// SetLevel sets the global threshold.
func SetLevel(l Level) {
	mu.Lock()
	level = l
	mu.Unlock()
}

// GetLevel returns the global threshold.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetOutput redirects all loggers. Colour is only used for terminals, so
// redirected output is plain unless enableColor is set.
func SetOutput(w io.Writer, flags int, enableColor bool) {
	mu.Lock()
	out = log.New(w, "", flags)
	colors = enableColor
	mu.Unlock()
}

// Logger writes messages tagged with a component name.
type Logger struct {
	component string
}

// Component returns a logger for a subsystem, e.g. "pool" or "world".
func Component(name string) *Logger {
	return &Logger{component: name}
}

func (l *Logger) logf(lvl Level, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if lvl < level {
		return
	}
	tag := plainTags[lvl]
	if colors {
		tag = levelTags[lvl]
	}
	msg := fmt.Sprintf(format, args...)
	if l.component != "" {
		out.Printf("%s [%s] %s", tag, l.component, msg)
		return
	}
	out.Printf("%s %s", tag, msg)
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }
