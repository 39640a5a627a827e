package commands

import (
	"errors"
	"io"

	"github.com/calvinmclean/rackclock"
)

type Command struct {
	Flag      byte
	InputSize uint
	// Line commands take everything up to the end of the line instead of InputSize bytes
	Line        bool
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to control a device
type Controller interface {
	SetTime(string) error
	SyncTime(string) error
	Home() error
	Jog(rackclock.Axis, int32) error
	Enable()
	Disable()
	Debug()
	Verbose()

	// I/O
	ReadByte() (byte, error)
	io.Writer
}

var (
	SetTimeCommand = &Command{
		Flag: 'T',
		Line: true,
		Run: func(c Controller, input []byte) error {
			return c.SetTime(string(input))
		},
		Description: "Set the displayed time. Input: hour and minute like '7 45' or '07:45', then enter.",
	}
	SyncTimeCommand = &Command{
		Flag: 'U',
		Line: true,
		Run: func(c Controller, input []byte) error {
			return c.SyncTime(string(input))
		},
		Description: "Set the time from a computer. Input: Unix seconds, then enter. Sets the RTC when there is one.",
	}
	HomeCommand = &Command{
		Flag:      'Z',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			return c.Home()
		},
		Description: "Home both racks and return to the last time.",
	}
	StepCommand = &Command{
		Flag:      's',
		InputSize: 3,
		Run: func(c Controller, b []byte) error {
			axis := rackclock.ParseAxis(b[0])
			if axis == rackclock.AxisUnknown {
				return errors.New("invalid axis: " + string(b[0]))
			}

			s := int32(1)
			if b[1] == '-' {
				s = -1
			} else if b[1] != '+' {
				return errors.New("invalid input: " + string(b))
			}

			v := b2i(b[2])
			if v == 0 {
				return errors.New("invalid input: " + string(b))
			}

			return c.Jog(axis, int32(v)*s)
		},
		Description: "Move a rack by steps. Input: 'H' or 'M', then '+' or '-', then step count (1-9).",
	}
	DebugCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Debug()
			return nil
		},
		Description: "Print the current state.",
	}
	VerboseCommand = &Command{
		Flag:      'V',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Verbose()
			return nil
		},
		Description: "Enable verbose output.",
	}
	EnableCommand = &Command{
		Flag:      'E',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Enable()
			return nil
		},
		Description: "Enable the stepper drivers.",
	}
	DisableCommand = &Command{
		Flag:      'X',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Disable()
			return nil
		},
		Description: "Disable the stepper drivers. Home again after moving the racks by hand.",
	}
	HelpCommand = &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(c Controller, b []byte) error {
			_, err := io.WriteString(c, "Available Commands:\n")
			if err != nil {
				return err
			}
			for _, cmd := range commands {
				_, err = io.WriteString(c, string(cmd.Flag)+": "+cmd.Description+"\n")
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
)

func b2i(b byte) uint {
	v := uint(b - '0')
	if v < 1 || v > 9 {
		return 0
	}
	return v
}

var commands = []*Command{
	SetTimeCommand,
	SyncTimeCommand,
	HomeCommand,
	StepCommand,
	DebugCommand,
	VerboseCommand,
	EnableCommand,
	DisableCommand,
}

// Run reads and runs commands until the input returns io.EOF. Whitespace between commands is
// ignored and so are unknown flags
func Run(c Controller) {
	cmdMap := map[byte]*Command{
		HelpCommand.Flag: HelpCommand,
	}

	for _, cmd := range commands {
		cmdMap[cmd.Flag] = cmd
	}

	for {
		cmdIn, err := c.ReadByte()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			continue
		}

		cmd, ok := cmdMap[cmdIn]
		if !ok {
			continue
		}

		var in []byte
		if cmd.Line {
			in, err = readLine(c)
		} else {
			in, err = readN(c, cmd.InputSize)
		}
		if err != nil {
			return
		}

		err = cmd.Run(c, in)
		if err != nil {
			_, _ = io.WriteString(c, "error: "+err.Error()+"\n")
		}
	}
}

// readN reads exactly n bytes, retrying while no input is available
func readN(c Controller, n uint) ([]byte, error) {
	in := make([]byte, n)
	for i := 0; i < int(n); {
		b, err := c.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		if err != nil {
			continue
		}

		in[i] = b
		i++
	}
	return in, nil
}

// readLine reads until '\r' or '\n'
func readLine(c Controller) ([]byte, error) {
	var in []byte
	for {
		b, err := c.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		if err != nil {
			continue
		}

		if b == '\r' || b == '\n' {
			return in, nil
		}
		in = append(in, b)
	}
}
