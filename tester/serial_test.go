package main_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// These tests run against real firmware that has started in manual/test mode. Set
// RACKCLOCK_SERIAL_PORT to the firmware's USB serial port to run them
func openPort(t *testing.T) serial.Port {
	t.Helper()

	name := os.Getenv("RACKCLOCK_SERIAL_PORT")
	if name == "" {
		t.Skip("RACKCLOCK_SERIAL_PORT is not set")
	}

	port, err := serial.Open(name, &serial.Mode{
		BaudRate: 115200,
	})
	require.NoError(t, err, "error opening serial connection")
	t.Cleanup(func() { port.Close() })

	return port
}

// sendSerial writes the input and reads until expectedLines lines arrived or wait has passed
func sendSerial(t *testing.T, port serial.Port, in string, expectedLines int, wait time.Duration) string {
	t.Helper()

	_, err := port.Write([]byte(in))
	require.NoError(t, err, "error writing serial")

	var out strings.Builder
	buf := make([]byte, 256)
	require.NoError(t, port.SetReadTimeout(100*time.Millisecond))
	deadline := time.Now().Add(wait)
	for strings.Count(out.String(), "\r\n") < expectedLines && time.Now().Before(deadline) {
		n, err := port.Read(buf)
		require.NoError(t, err, "error reading serial")
		out.Write(buf[:n])
	}
	return out.String()
}

// stripTimestamps removes the "[1m2.5s] " prefix from each line
func stripTimestamps(s string) string {
	lines := strings.Split(s, "\r\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "[") {
			if end := strings.Index(l, "] "); end >= 0 {
				lines[i] = l[end+2:]
			}
		}
	}
	return strings.Join(lines, "\r\n")
}

func TestSerial(t *testing.T) {
	port := openPort(t)

	tests := []struct {
		name     string
		in       string
		expected string
		wait     time.Duration
	}{
		{
			"Home",
			"Z D",
			`Homing Hour
Homing complete Hour
Homing Minute
Homing complete Minute
Hour=0/239(Homed) Minute=0/239(Homed)
`,
			20 * time.Second,
		},
		{
			"SetTime",
			"T 12:30\nD",
			`Set to 12:30
Hour=119/239(Homed) Minute=119/239(Homed)
`,
			10 * time.Second,
		},
		{
			"Jog",
			"sM+5 sH-2 D",
			`Hour=117/239(Homed) Minute=124/239(Homed)
`,
			5 * time.Second,
		},
		{
			"InvalidTime",
			"T 25:99\n",
			`error: invalid time: 25:99
`,
			time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := strings.ReplaceAll(tt.expected, "\n", "\r\n")
			out := sendSerial(t, port, tt.in, strings.Count(expected, "\r\n"), tt.wait)
			clean := stripTimestamps(strings.Trim(out, "\x00"))
			assert.Equal(t, expected, clean)
		})
	}
}
