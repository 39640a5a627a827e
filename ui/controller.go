package ui

import (
	"fmt"
	"io"
	"time"
)

// controllerWrapper writes console commands for the host controller
type controllerWrapper struct {
	writer       io.Writer
	lastSetTimer *timer
}

func (c *controllerWrapper) SetTime(hour, minute float64) {
	c.lastSetTimer.Set(time.Now())
	fmt.Fprintf(c.writer, "set %.0f %.0f\n", hour, minute)
}

func (c *controllerWrapper) Jog(axis string, steps int) {
	fmt.Fprintf(c.writer, "jog %s %d\n", axis, steps)
}

func (c *controllerWrapper) Sync() {
	c.lastSetTimer.Set(time.Now())
	fmt.Fprintln(c.writer, "sync")
}

// Run sends a command without arguments, like "home" or "debug"
func (c *controllerWrapper) Run(command string) {
	fmt.Fprintln(c.writer, command)
}
