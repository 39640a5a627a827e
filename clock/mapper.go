package clock

import (
	"github.com/calvinmclean/rackclock"
	"github.com/calvinmclean/rackclock/device"
)

// Mapper converts a time of day to absolute step targets. Each value is placed proportionally
// along its rack, so 12h is at the middle of the hour rack and 30m at the middle of the minute rack
type Mapper struct {
	Geometry       device.Geometry
	HourTravelMM   float64
	MinuteTravelMM float64
}

// NewMapper creates a Mapper. Zero travel lengths use device.DefaultTravelMM
func NewMapper(g device.Geometry, hourTravelMM, minuteTravelMM float64) Mapper {
	if hourTravelMM == 0 {
		hourTravelMM = device.DefaultTravelMM
	}
	if minuteTravelMM == 0 {
		minuteTravelMM = device.DefaultTravelMM
	}
	return Mapper{
		Geometry:       g,
		HourTravelMM:   hourTravelMM,
		MinuteTravelMM: minuteTravelMM,
	}
}

// HourTarget is the step position for an hour in 0-23
func (m Mapper) HourTarget(h int) int32 {
	return m.Geometry.MMToSteps(float64(h) / 24 * m.HourTravelMM)
}

// MinuteTarget is the step position for a minute in 0-59
func (m Mapper) MinuteTarget(minute int) int32 {
	return m.Geometry.MMToSteps(float64(minute) / 60 * m.MinuteTravelMM)
}

// Target dispatches to HourTarget or MinuteTarget. Unknown axes are always 0
func (m Mapper) Target(a rackclock.Axis, v int) int32 {
	switch a {
	case rackclock.AxisHour:
		return m.HourTarget(v)
	case rackclock.AxisMinute:
		return m.MinuteTarget(v)
	default:
		return 0
	}
}
