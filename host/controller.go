// Package host controls the clock firmware from a computer over USB serial
package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/calvinmclean/rackclock/timesource"
	"github.com/jonboulle/clockwork"

	"go.bug.st/serial"
)

const helpText = `Commands:
  set H M | H:M        set the displayed time
  sync                 set the time and RTC from this computer
  home                 home both racks
  jog hour|minute N    move a rack by N steps
  debug                print the rack positions
  verbose              enable verbose output
  enable | disable     enable or release the motors
  raw CMD              send a line of firmware commands as-is
`

// Controller sends console commands to the firmware and copies its output
type Controller struct {
	cfg    parsedConfig
	port   io.ReadWriteCloser
	system *timesource.System
	clock  clockwork.Clock

	writeMtx sync.Mutex
	wg       sync.WaitGroup
}

// New opens the serial port, or starts the simulator when SerialPort is SerialPortNone
func New(cfg Config) (*Controller, error) {
	p, err := cfg.parse()
	if err != nil {
		return nil, err
	}

	port, err := openPort(&p)
	if err != nil {
		return nil, err
	}

	return newController(p, port, clockwork.NewRealClock()), nil
}

func newController(cfg parsedConfig, port io.ReadWriteCloser, clock clockwork.Clock) *Controller {
	return &Controller{
		cfg:    cfg,
		port:   port,
		system: timesource.NewSystem(clock, cfg.location),
		clock:  clock,
	}
}

func openPort(cfg *parsedConfig) (io.ReadWriteCloser, error) {
	if cfg.serialPort == SerialPortNone {
		return NewSimulator(cfg.simPulseWidth, cfg.location)
	}

	if cfg.serialPort == "" {
		ports, err := GetSerialPorts()
		if err != nil {
			return nil, err
		}
		cfg.serialPort = ports[0]
	}

	port, err := serial.Open(cfg.serialPort, &serial.Mode{BaudRate: cfg.baudRate})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %q: %w", cfg.serialPort, err)
	}
	return port, nil
}

// Run copies firmware output to out and sends each line of in to the firmware until in is
// exhausted or the context is done
func (c *Controller) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_, _ = io.Copy(out, c.port)
	}()

	if c.cfg.followInterval > 0 {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.follow(ctx, out)
		}()
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			c.handleLine(line, out)
		}
	}
}

func (c *Controller) handleLine(line string, out io.Writer) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return
	case "help":
		fmt.Fprint(out, helpText)
		return
	case "sync":
		err := c.Sync()
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		return
	}

	cmd, err := Translate(line)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}

	err = c.Send(cmd)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
}

// Send writes raw firmware commands
func (c *Controller) Send(cmd string) error {
	c.writeMtx.Lock()
	defer c.writeMtx.Unlock()

	_, err := io.WriteString(c.port, cmd)
	if err != nil {
		return fmt.Errorf("error writing to firmware: %w", err)
	}
	return nil
}

// Sync sets the firmware, and its RTC, to the current time of this computer
func (c *Controller) Sync() error {
	t, err := c.system.Time()
	if err != nil {
		return fmt.Errorf("error reading system time: %w", err)
	}
	return c.Send(SyncCommand(t))
}

// follow keeps the firmware in sync with the host time
func (c *Controller) follow(ctx context.Context, out io.Writer) {
	ticker := c.clock.NewTicker(c.cfg.followInterval)
	defer ticker.Stop()

	for {
		err := c.Sync()
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}
	}
}

// Close closes the port and waits for the firmware output to be copied
func (c *Controller) Close() error {
	err := c.port.Close()
	c.wg.Wait()
	if err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("error closing port: %w", err)
	}
	return nil
}
