package commands

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/calvinmclean/rackclock"
	"github.com/calvinmclean/rackclock/clock"
	"github.com/calvinmclean/rackclock/device"
	"github.com/calvinmclean/rackclock/timesource"
)

// RTC is a clock that can be set, like timesource.RTC
type RTC interface {
	Set(time.Time) error
}

// Console is the Controller used on the firmware's serial port. Times entered with SetTime go
// through the same Clock as the normal update loop, so wraps are handled the same way
type Console struct {
	dev    *device.Device
	clock  *clock.Clock
	manual *timesource.Manual
	rtc    RTC

	in  io.ByteReader
	out io.Writer
}

// NewConsole creates a Console. clk must read its time from manual
func NewConsole(dev *device.Device, clk *clock.Clock, manual *timesource.Manual, in io.ByteReader, out io.Writer) *Console {
	return &Console{
		dev:    dev,
		clock:  clk,
		manual: manual,
		in:     in,
		out:    out,
	}
}

// UseRTC sets the RTC written by SyncTime. With an RTC, the clock is also polled whenever there
// is no serial input, so the racks follow the RTC while commands are still handled. clk should read
// the manual entry before the RTC, like timesource.First{manual, rtc}
func (c *Console) UseRTC(rtc RTC) {
	c.rtc = rtc
}

// SetTime parses a manual entry and moves the racks to it
func (c *Console) SetTime(line string) error {
	line = strings.TrimSpace(line)
	if !c.manual.SetLine(line) {
		return errors.New("invalid time: " + line)
	}
	return c.clock.Update()
}

// SyncTime sets the time from Unix seconds. The RTC is written first, so the time is kept after
// a restart
func (c *Console) SyncTime(line string) error {
	line = strings.TrimSpace(line)
	sec, err := strconv.ParseInt(line, 10, 64)
	if err != nil || sec <= 0 {
		return errors.New("invalid unix time: " + line)
	}
	t := time.Unix(sec, 0)

	if c.rtc != nil {
		err = c.rtc.Set(t)
		if err != nil {
			return errors.New("error setting RTC: " + err.Error())
		}
	}

	c.manual.SetTime(t)
	return c.clock.Update()
}

// Home homes both racks and then returns to the last time that was set
func (c *Console) Home() error {
	last, ok := c.clock.Last()

	err := c.dev.Home(context.Background())
	if err != nil {
		return err
	}

	// the racks are at zero now, so the next reading is not a wrap
	c.clock.Reset()
	if !ok {
		return nil
	}
	return c.clock.Apply(last)
}

func (c *Console) Jog(a rackclock.Axis, delta int32) error {
	return c.dev.Jog(a, delta)
}

func (c *Console) Enable() {
	c.dev.Enable()
}

func (c *Console) Disable() {
	c.dev.Disable()
}

func (c *Console) Debug() {
	c.dev.Debug()
}

func (c *Console) Verbose() {
	c.dev.Verbose()
}

// ReadByte reads the next input byte. When there is none yet and an RTC is used, the clock is
// polled before returning
func (c *Console) ReadByte() (byte, error) {
	b, err := c.in.ReadByte()
	if err != nil && !errors.Is(err, io.EOF) && c.rtc != nil && c.dev.Homed() {
		c.clock.Poll()
	}
	return b, err
}

func (c *Console) Write(p []byte) (int, error) {
	return c.out.Write(p)
}
