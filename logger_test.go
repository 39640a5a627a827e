package rackclock

import (
	"bytes"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	fc := clockwork.NewFakeClock()
	l := NewLogger(&buf, fc)

	l.Println("Homing", "Hour")
	l.Debug("hidden")
	assert.Equal(t, "[-] Homing Hour\n", buf.String())

	buf.Reset()
	l.Start()
	fc.Advance(65 * time.Second)
	l.Verbose()
	l.Debug("Set to", "07:45")
	assert.Equal(t, "[1m5s] Set to 07:45\n", buf.String())
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Start()
		l.Verbose()
		l.Println("nothing")
		l.Debug("nothing")
	})
	assert.False(t, l.IsVerbose())
}
