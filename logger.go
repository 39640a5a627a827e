package rackclock

import (
	"io"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// Logger writes status lines prefixed with the time since Start, like "[1m5s] Set to 07:45".
// A nil Logger discards everything so components can be used without one
type Logger struct {
	out       io.Writer
	clock     clockwork.Clock
	startTime time.Time
	verbose   bool
}

// NewLogger creates a Logger writing to out. A nil clock uses the real clock
func NewLogger(out io.Writer, clock clockwork.Clock) *Logger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Logger{out: out, clock: clock}
}

// Start sets the reference time for the timestamp prefix
func (l *Logger) Start() {
	if l == nil {
		return
	}
	l.startTime = l.clock.Now()
}

// Verbose enables Debug output
func (l *Logger) Verbose() {
	if l == nil {
		return
	}
	l.verbose = true
}

// IsVerbose reports if Debug output is enabled
func (l *Logger) IsVerbose() bool {
	return l != nil && l.verbose
}

// Println writes the parts separated by spaces
func (l *Logger) Println(parts ...string) {
	if l == nil || l.out == nil {
		return
	}
	_, _ = io.WriteString(l.out, l.ts()+" "+strings.Join(parts, " ")+"\n")
}

// Debug is Println only in verbose mode
func (l *Logger) Debug(parts ...string) {
	if !l.IsVerbose() {
		return
	}
	l.Println(parts...)
}

// ts returns the duration timestamp for logging
func (l *Logger) ts() string {
	if l.startTime.IsZero() {
		return "[-]"
	}
	return "[" + l.clock.Since(l.startTime).Truncate(time.Millisecond).String() + "]"
}
