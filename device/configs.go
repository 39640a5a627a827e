package device

import (
	"time"

	"github.com/calvinmclean/rackclock"
	"github.com/jonboulle/clockwork"
)

// Pin is a single digital line. machine.Pin satisfies it on the firmware
type Pin interface {
	Set(high bool)
	Get() bool
}

// StepperConfig has the step/dir lines of one stepper driver
type StepperConfig struct {
	StepPin Pin
	DirPin  Pin
	// InvertDir is set when a LOW dir line moves the rack away from home.
	// The two racks are mirrored so they use opposite values
	InvertDir bool
	// PulseWidth is how long the step line is held high, and then low, for one step
	PulseWidth time.Duration
}

// HomeConfig has the limit switch used to find position zero
type HomeConfig struct {
	Pin Pin
	// TriggerHigh is set for switches that read high when engaged. The default is a
	// pulled-up input that reads low when the switch closes
	TriggerHigh bool
	// Timeout stops a seek that never reaches the switch. Defaults to enough time
	// to cross the full travel twice
	Timeout time.Duration
}

// AxisConfig has everything for one rack
type AxisConfig struct {
	Stepper  StepperConfig
	Home     HomeConfig
	TravelMM float64
}

// Config has the device-level values for both racks
type Config struct {
	// EnablePin is shared by both drivers and is active-low
	EnablePin Pin
	Geometry  Geometry
	Hour      AxisConfig
	Minute    AxisConfig

	Clock  clockwork.Clock
	Logger *rackclock.Logger
}
