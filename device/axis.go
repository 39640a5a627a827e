package device

import (
	"errors"
	"strconv"

	"github.com/calvinmclean/rackclock"
	"github.com/jonboulle/clockwork"
)

// ErrNotHomed is returned when moving an axis that has not completed homing
var ErrNotHomed = errors.New("axis is not homed")

// AxisError adds the axis name to an error
type AxisError struct {
	Axis rackclock.Axis
	Err  error
}

func (e *AxisError) Error() string {
	return e.Axis.String() + " axis: " + e.Err.Error()
}

func (e *AxisError) Unwrap() error {
	return e.Err
}

// Axis tracks the absolute position of one rack. Position is counted in steps from the home
// switch and always stays within 0 and MaxSteps
type Axis struct {
	name     rackclock.Axis
	stepper  *Stepper
	home     HomeConfig
	clock    clockwork.Clock
	log      *rackclock.Logger
	maxSteps int32
	position int32
	state    HomingState
}

func newAxis(name rackclock.Axis, cfg AxisConfig, g Geometry, clock clockwork.Clock, log *rackclock.Logger) (*Axis, error) {
	if cfg.TravelMM == 0 {
		cfg.TravelMM = DefaultTravelMM
	}
	if cfg.TravelMM < 0 {
		return nil, &AxisError{name, errors.New("invalid TravelMM")}
	}

	if cfg.Home.Pin == nil {
		return nil, &AxisError{name, errors.New("home pin is required")}
	}

	stepper, err := NewStepper(cfg.Stepper, clock)
	if err != nil {
		return nil, &AxisError{name, errors.New("error creating stepper: " + err.Error())}
	}

	a := &Axis{
		name:     name,
		stepper:  stepper,
		home:     cfg.Home,
		clock:    clock,
		log:      log,
		maxSteps: g.MMToSteps(cfg.TravelMM),
		state:    HomingStateUnhomed,
	}

	if a.home.Timeout == 0 {
		a.home.Timeout = a.defaultHomingTimeout()
	}

	return a, nil
}

// Name is the clock field displayed by this axis
func (a *Axis) Name() rackclock.Axis {
	return a.name
}

// Position is the current absolute step count from home
func (a *Axis) Position() int32 {
	return a.position
}

// MaxSteps is the step count of the full rack travel
func (a *Axis) MaxSteps() int32 {
	return a.maxSteps
}

// State is the homing state. Only a Homed axis can move
func (a *Axis) State() HomingState {
	return a.state
}

// MoveTo moves the rack to the absolute step target and returns after the last pulse.
// Targets outside of the travel are clamped to the nearest end instead of driving past it
func (a *Axis) MoveTo(target int32) error {
	if a.state != HomingStateHomed {
		return &AxisError{a.name, ErrNotHomed}
	}

	clamped := min(max(target, 0), a.maxSteps)
	if clamped != target {
		a.log.Debug(a.name.String(), "target", itoa(target), "clamped to", itoa(clamped))
	}

	if clamped == a.position {
		return nil
	}

	a.log.Debug("Move", a.name.String(), itoa(a.position), "->", itoa(clamped))

	inc := int32(1)
	if clamped < a.position {
		inc = -1
	}
	a.stepper.SetDirection(inc > 0)

	for a.position != clamped {
		a.stepper.Pulse()
		a.position += inc
	}

	return nil
}

// Jog moves relative to the current position, within the travel
func (a *Axis) Jog(delta int32) error {
	return a.MoveTo(a.position + delta)
}

func itoa(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
