package sim

import (
	"time"

	"github.com/calvinmclean/rackclock"
	"github.com/calvinmclean/rackclock/device"
	"github.com/jonboulle/clockwork"
)

// Hardware is a complete simulated clock: the shared enable line and both racks, wired the same
// way as the firmware. The hour rack moves away from home on a LOW dir line and the minute rack
// on a HIGH one
type Hardware struct {
	Enable *Line
	Hour   *Rack
	Minute *Rack

	geometry device.Geometry
	travelMM float64
}

// NewHardware creates racks with travelMM of usable length. Both start at the far end so homing
// has to cross the full travel
func NewHardware(g device.Geometry, travelMM float64) *Hardware {
	if travelMM == 0 {
		travelMM = device.DefaultTravelMM
	}
	travel := g.MMToSteps(travelMM)

	h := &Hardware{
		Enable:   &Line{},
		Hour:     NewRack(travel, travel, true),
		Minute:   NewRack(travel, travel, false),
		geometry: g,
		travelMM: travelMM,
	}
	// drivers start disabled until the device pulls enable low
	h.Enable.Set(true)
	h.Hour.enable = h.Enable
	h.Minute.enable = h.Enable

	return h
}

// Config returns a device.Config using the simulated pins
func (h *Hardware) Config(pulseWidth time.Duration, clock clockwork.Clock, log *rackclock.Logger) device.Config {
	axis := func(r *Rack) device.AxisConfig {
		return device.AxisConfig{
			Stepper: device.StepperConfig{
				StepPin:    r.StepPin(),
				DirPin:     r.DirPin(),
				InvertDir:  r.invertDir,
				PulseWidth: pulseWidth,
			},
			Home: device.HomeConfig{
				Pin: r.HomePin(),
			},
			TravelMM: h.travelMM,
		}
	}

	return device.Config{
		EnablePin: h.Enable,
		Geometry:  h.geometry,
		Hour:      axis(h.Hour),
		Minute:    axis(h.Minute),
		Clock:     clock,
		Logger:    log,
	}
}

// Rack returns the rack for the axis, or nil if it is unknown
func (h *Hardware) Rack(a rackclock.Axis) *Rack {
	switch a {
	case rackclock.AxisHour:
		return h.Hour
	case rackclock.AxisMinute:
		return h.Minute
	default:
		return nil
	}
}
