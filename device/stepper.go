package device

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

const defaultPulseWidth = 10 * time.Millisecond

// Stepper drives a step/dir stepper driver like the A4988 or TMC2209 in standalone mode
type Stepper struct {
	stepPin    Pin
	dirPin     Pin
	invertDir  bool
	pulseWidth time.Duration
	clock      clockwork.Clock
}

func NewStepper(cfg StepperConfig, clock clockwork.Clock) (*Stepper, error) {
	if cfg.StepPin == nil || cfg.DirPin == nil {
		return nil, errors.New("step and dir pins are required")
	}

	if cfg.PulseWidth == 0 {
		cfg.PulseWidth = defaultPulseWidth
	}
	if cfg.PulseWidth < 0 {
		return nil, errors.New("invalid PulseWidth")
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Stepper{
		stepPin:    cfg.StepPin,
		dirPin:     cfg.DirPin,
		invertDir:  cfg.InvertDir,
		pulseWidth: cfg.PulseWidth,
		clock:      clock,
	}
	s.stepPin.Set(false)

	return s, nil
}

// SetDirection sets the dir line for moving away from home (increasing) or towards it
func (s *Stepper) SetDirection(increasing bool) {
	s.dirPin.Set(increasing != s.invertDir)
}

// Pulse emits one step: high for pulseWidth, then low for pulseWidth
func (s *Stepper) Pulse() {
	s.stepPin.Set(true)
	s.clock.Sleep(s.pulseWidth)
	s.stepPin.Set(false)
	s.clock.Sleep(s.pulseWidth)
}

// PulseWidth is the active (and inactive) time of each step pulse
func (s *Stepper) PulseWidth() time.Duration {
	return s.pulseWidth
}
