// Package logx is a small leveled logger that keeps the most recent lines in
// memory for the application log view. It writes to stderr only when asked,
// since stderr output would corrupt the TUI.
package logx

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = [...]string{Debug: "DEBUG", Info: "INFO", Warn: "WARN", Error: "ERROR"}

func (l Level) String() string {
	if l < Debug || l > Error {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

const keep = 500

var (
	mu       sync.Mutex
	level    = Info
	toStderr bool
	lines    [keep]string
	next     int // slot of the next line
	count    int
)

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// ParseLevel maps a level name to a Level. Unknown names return Info and false.
func ParseLevel(s string) (Level, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		s = "WARN"
	}
	for l, name := range levelNames {
		if name == s {
			return Level(l), true
		}
	}
	return Info, false
}

// SetLevelFromEnv reads AQDASH_LOG_LEVEL and AQDASH_LOG_STDERR.
func SetLevelFromEnv() {
	if l, ok := ParseLevel(os.Getenv("AQDASH_LOG_LEVEL")); ok {
		SetLevel(l)
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("AQDASH_LOG_STDERR"))) {
	case "":
	case "0", "false", "no":
		SetStderr(false)
	default:
		SetStderr(true)
	}
}

// SetStderr forces stderr output on or off. Headless runs turn it on.
func SetStderr(on bool) {
	mu.Lock()
	defer mu.Unlock()
	toStderr = on
}

func Debugf(format string, a ...any) { logf(Debug, format, a...) }
func Infof(format string, a ...any)  { logf(Info, format, a...) }
func Warnf(format string, a ...any)  { logf(Warn, format, a...) }
func Errorf(format string, a ...any) { logf(Error, format, a...) }

func logf(l Level, format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	line := fmt.Sprintf("%s %-5s %s", time.Now().Format("2006-01-02T15:04:05.000Z07:00"), l, fmt.Sprintf(format, a...))
	lines[next] = line
	next = (next + 1) % keep
	if count < keep {
		count++
	}
	if toStderr {
		fmt.Fprintln(os.Stderr, line)
	}
}

// Lines returns the kept lines, oldest first.
func Lines() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, count)
	start := (next - count + keep) % keep
	for i := 0; i < count; i++ {
		out = append(out, lines[(start+i)%keep])
	}
	return out
}

func Dump() string { return strings.Join(Lines(), "\n") }
