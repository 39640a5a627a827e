package device

import (
	"context"
	"errors"

	"github.com/calvinmclean/rackclock"
	"github.com/jonboulle/clockwork"
)

// Device controls both racks of the clock and the enable line shared by their drivers
type Device struct {
	enablePin Pin
	hour      *Axis
	minute    *Axis

	log *rackclock.Logger
}

// New initializes both axes from the config. The drivers are enabled and both dir lines are
// set towards home. The axes are Unhomed until Home is called
func New(cfg Config) (*Device, error) {
	if cfg.EnablePin == nil {
		return nil, errors.New("enable pin is required")
	}

	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	g := cfg.Geometry.withDefaults()
	if g.StepsPerRevolution < 0 || g.PitchDiameterMM < 0 {
		return nil, errors.New("geometry must be positive")
	}

	hour, err := newAxis(rackclock.AxisHour, cfg.Hour, g, cfg.Clock, cfg.Logger)
	if err != nil {
		return nil, err
	}

	minute, err := newAxis(rackclock.AxisMinute, cfg.Minute, g, cfg.Clock, cfg.Logger)
	if err != nil {
		return nil, err
	}

	d := &Device{
		enablePin: cfg.EnablePin,
		hour:      hour,
		minute:    minute,
		log:       cfg.Logger,
	}

	d.Enable()
	d.hour.stepper.SetDirection(false)
	d.minute.stepper.SetDirection(false)

	return d, nil
}

// Home homes the hour axis and then the minute axis. It stops at the first failure
func (d *Device) Home(ctx context.Context) error {
	for _, a := range []*Axis{d.hour, d.minute} {
		err := a.Home(ctx)
		if err != nil {
			return err
		}
	}

	d.log.Start()
	return nil
}

// Axis returns the tracker for the axis, or nil if it is unknown
func (d *Device) Axis(a rackclock.Axis) *Axis {
	switch a {
	case rackclock.AxisHour:
		return d.hour
	case rackclock.AxisMinute:
		return d.minute
	default:
		return nil
	}
}

// MoveTo moves one axis to an absolute step position
func (d *Device) MoveTo(a rackclock.Axis, steps int32) error {
	axis := d.Axis(a)
	if axis == nil {
		return errors.New("unknown axis: " + a.String())
	}
	return axis.MoveTo(steps)
}

// Jog moves one axis by a number of steps relative to where it is
func (d *Device) Jog(a rackclock.Axis, delta int32) error {
	axis := d.Axis(a)
	if axis == nil {
		return errors.New("unknown axis: " + a.String())
	}
	return axis.Jog(delta)
}

// Enable powers the drivers. The enable line is active-low
func (d *Device) Enable() {
	d.enablePin.Set(false)
	d.log.Debug("Drivers enabled")
}

// Disable releases the motors so the racks can be moved by hand. Positions are not tracked while
// disabled, so both axes become Unhomed and refuse to move until they are homed again
func (d *Device) Disable() {
	d.enablePin.Set(true)
	d.hour.state = HomingStateUnhomed
	d.minute.state = HomingStateUnhomed
	d.log.Debug("Drivers disabled")
}

// Homed reports if both axes are homed and can move
func (d *Device) Homed() bool {
	return d.hour.state == HomingStateHomed && d.minute.state == HomingStateHomed
}

// Enabled reports if the drivers are powered
func (d *Device) Enabled() bool {
	return !d.enablePin.Get()
}

// Debug prints the position and homing state of both axes
func (d *Device) Debug() {
	d.log.Println(axisStr(d.hour), axisStr(d.minute))
}

// Verbose enables per-move status output
func (d *Device) Verbose() {
	d.log.Verbose()
	d.log.Println("Set Verbose Mode")
}

func axisStr(a *Axis) string {
	return a.name.String() + "=" + itoa(a.position) + "/" + itoa(a.maxSteps) + "(" + a.state.String() + ")"
}
