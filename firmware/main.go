//go:build tinygo

package main

import (
	"context"
	"io"
	"machine"
	"time"
	_ "time/tzdata"

	"github.com/calvinmclean/rackclock"
	"github.com/calvinmclean/rackclock/clock"
	"github.com/calvinmclean/rackclock/commands"
	"github.com/calvinmclean/rackclock/device"
	"github.com/calvinmclean/rackclock/timesource"
)

func main() {
	// give the USB serial time to come up so startup output is not lost
	time.Sleep(2 * time.Second)

	out := crlfWriter{machine.Serial}
	log := rackclock.NewLogger(out, nil)

	for _, p := range []machine.Pin{machine.GP14, machine.GP9, machine.GP10, machine.GP11, machine.GP12} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	for _, p := range []machine.Pin{machine.GP5, machine.GP6} {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}

	cfg := device.Config{
		EnablePin: machine.GP14,
		Geometry:  device.DefaultGeometry,
		Hour: device.AxisConfig{
			Stepper: device.StepperConfig{
				StepPin:    machine.GP9,
				DirPin:     machine.GP10,
				InvertDir:  true,
				PulseWidth: 10 * time.Millisecond,
			},
			Home:     device.HomeConfig{Pin: machine.GP5},
			TravelMM: 120,
		},
		Minute: device.AxisConfig{
			Stepper: device.StepperConfig{
				StepPin:    machine.GP11,
				DirPin:     machine.GP12,
				PulseWidth: 10 * time.Millisecond,
			},
			Home:     device.HomeConfig{Pin: machine.GP6},
			TravelMM: 120,
		},
		Logger: log,
	}

	d, err := device.New(cfg)
	if err != nil {
		panic(err)
	}

	log.Println("Stepper clock rack controller starting...")

	err = machine.I2C1.Configure(machine.I2CConfig{
		SDA: machine.GP2,
		SCL: machine.GP3,
	})
	if err != nil {
		log.Println("error configuring I2C:", err.Error())
	}
	loc := timesource.LoadLocation(timesource.DefaultTimezone)
	rtc := timesource.NewRTC(machine.I2C1, loc)

	err = d.Home(context.Background())
	if err != nil {
		log.Println("error:", err.Error())
	}

	if !rtc.Valid() {
		log.Println("RTC time unavailable. Continue in manual/test mode.")
	}

	// manual entries are shown until the next RTC reading
	manual := timesource.NewManual(loc)
	mapper := clock.NewMapper(cfg.Geometry, cfg.Hour.TravelMM, cfg.Minute.TravelMM)
	c := clock.New(d, timesource.First{manual, rtc}, mapper, clock.Config{Logger: log})

	// the console polls the clock while waiting for input, so the racks follow the RTC and
	// commands are handled on the same goroutine
	console := commands.NewConsole(d, c, manual, machine.Serial, out)
	console.UseRTC(rtc)
	commands.Run(console)
}

// crlfWriter writes "\r\n" line endings for serial terminals
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	buf := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' {
			buf = append(buf, '\r')
		}
		buf = append(buf, b)
	}

	_, err := c.w.Write(buf)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
