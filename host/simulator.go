package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/calvinmclean/rackclock"
	"github.com/calvinmclean/rackclock/clock"
	"github.com/calvinmclean/rackclock/commands"
	"github.com/calvinmclean/rackclock/device"
	"github.com/calvinmclean/rackclock/sim"
	"github.com/calvinmclean/rackclock/timesource"
)

// Simulator runs the firmware's bench console against simulated racks. It is used in place of a
// serial port so the host can be tried without hardware
type Simulator struct {
	hw *sim.Hardware

	toFirmware   *io.PipeWriter
	fromFirmware *io.PipeReader
}

// NewSimulator starts the simulated firmware. Like the firmware without an RTC, it homes both
// racks and then waits for commands. Synced times are shown in loc
func NewSimulator(pulseWidth time.Duration, loc *time.Location) (*Simulator, error) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	log := rackclock.NewLogger(outW, nil)

	hw := sim.NewHardware(device.DefaultGeometry, device.DefaultTravelMM)
	dev, err := device.New(hw.Config(pulseWidth, nil, log))
	if err != nil {
		return nil, fmt.Errorf("error creating simulated device: %w", err)
	}

	manual := timesource.NewManual(loc)
	clk := clock.New(dev, manual, clock.NewMapper(device.DefaultGeometry, 0, 0), clock.Config{Logger: log})

	s := &Simulator{
		hw:           hw,
		toFirmware:   inW,
		fromFirmware: outR,
	}

	go func() {
		defer outW.Close()

		log.Println("Stepper clock rack controller starting...")
		err := dev.Home(context.Background())
		if err != nil {
			log.Println("error:", err.Error())
		}
		log.Println("RTC time unavailable. Continue in manual/test mode.")

		commands.Run(commands.NewConsole(dev, clk, manual, bufio.NewReader(inR), outW))
	}()

	return s, nil
}

// Hardware is the simulated hardware
func (s *Simulator) Hardware() *sim.Hardware {
	return s.hw
}

func (s *Simulator) Read(p []byte) (int, error) {
	return s.fromFirmware.Read(p)
}

func (s *Simulator) Write(p []byte) (int, error) {
	return s.toFirmware.Write(p)
}

// Close ends the input to the firmware. The output is closed once it has processed everything
// written before Close
func (s *Simulator) Close() error {
	return s.toFirmware.Close()
}
