package device

import "math"

const (
	defaultStepsPerRevolution = 200
	// 16 tooth pinion, module 2
	defaultPitchDiameterMM = 32.0

	// DefaultTravelMM is the usable length of each rack
	DefaultTravelMM = 120.0
)

// DefaultGeometry is a 200 step motor driving a 32mm pitch diameter pinion, about 1.99 steps/mm
var DefaultGeometry = Geometry{
	StepsPerRevolution: defaultStepsPerRevolution,
	PitchDiameterMM:    defaultPitchDiameterMM,
}

// Geometry describes the motor and pinion driving a rack. Zero values use DefaultGeometry
type Geometry struct {
	StepsPerRevolution int
	PitchDiameterMM    float64
}

func (g Geometry) withDefaults() Geometry {
	if g.StepsPerRevolution == 0 {
		g.StepsPerRevolution = defaultStepsPerRevolution
	}
	if g.PitchDiameterMM == 0 {
		g.PitchDiameterMM = defaultPitchDiameterMM
	}
	return g
}

// StepsPerMM is the number of full steps that move the rack one millimeter
func (g Geometry) StepsPerMM() float64 {
	g = g.withDefaults()
	return float64(g.StepsPerRevolution) / (math.Pi * g.PitchDiameterMM)
}

// MMToSteps converts a rack distance to the nearest whole step count. Rounding instead of
// truncating keeps repeated conversions of the same length from drifting
func (g Geometry) MMToSteps(mm float64) int32 {
	g = g.withDefaults()
	return int32(math.Round(mm * float64(g.StepsPerRevolution) / (math.Pi * g.PitchDiameterMM)))
}
