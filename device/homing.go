package device

import (
	"context"
	"errors"
	"time"

	"github.com/calvinmclean/rackclock"
	"github.com/jonboulle/clockwork"
)

// ErrHomingTimeout matches any HomingTimeoutError
var ErrHomingTimeout = errors.New("home switch not triggered")

// HomingTimeoutError is returned when the seek is cancelled or times out before the switch
// triggers. The axis is left Unhomed
type HomingTimeoutError struct {
	Axis  rackclock.Axis
	Steps int32
	Err   error
}

func (e *HomingTimeoutError) Error() string {
	return e.Axis.String() + " axis: " + ErrHomingTimeout.Error() + " after " + itoa(e.Steps) + " steps: " + e.Err.Error()
}

func (e *HomingTimeoutError) Unwrap() []error {
	return []error{ErrHomingTimeout, e.Err}
}

// HomingState is where an Axis is in the homing procedure
type HomingState int

const (
	HomingStateUnhomed HomingState = iota
	HomingStateSeeking
	HomingStateHomed
)

func (s HomingState) String() string {
	switch s {
	case HomingStateSeeking:
		return "Seeking"
	case HomingStateHomed:
		return "Homed"
	default:
		fallthrough
	case HomingStateUnhomed:
		return "Unhomed"
	}
}

// Home steps towards the home switch until it triggers and then defines that spot as position 0.
// The switch is checked before every pulse, so an axis already resting on it homes without moving
func (a *Axis) Home(ctx context.Context) error {
	ctx, cancel := clockwork.WithTimeout(ctx, a.clock, a.home.Timeout)
	defer cancel()

	a.state = HomingStateSeeking
	a.log.Println("Homing", a.name.String())

	a.stepper.SetDirection(false)

	var steps int32
	for !a.homeTriggered() {
		if err := ctx.Err(); err != nil {
			a.state = HomingStateUnhomed
			return &HomingTimeoutError{Axis: a.name, Steps: steps, Err: err}
		}

		a.stepper.Pulse()
		steps++
	}

	a.position = 0
	a.state = HomingStateHomed
	a.log.Println("Homing complete", a.name.String())

	return nil
}

func (a *Axis) homeTriggered() bool {
	return a.home.Pin.Get() == a.home.TriggerHigh
}

// defaultHomingTimeout allows crossing the full travel twice, plus a second for slow switches
func (a *Axis) defaultHomingTimeout() time.Duration {
	perStep := 2 * a.stepper.PulseWidth()
	return time.Duration(2*a.maxSteps)*perStep + time.Second
}
