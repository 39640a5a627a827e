package device_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calvinmclean/rackclock"
	"github.com/calvinmclean/rackclock/device"
	"github.com/calvinmclean/rackclock/sim"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pulseWidth = time.Nanosecond

func newDevice(t *testing.T) (*device.Device, *sim.Hardware) {
	t.Helper()
	hw := sim.NewHardware(device.DefaultGeometry, device.DefaultTravelMM)
	d, err := device.New(hw.Config(pulseWidth, nil, nil))
	require.NoError(t, err)
	return d, hw
}

func newHomedDevice(t *testing.T) (*device.Device, *sim.Hardware) {
	t.Helper()
	d, hw := newDevice(t)
	require.NoError(t, d.Home(context.Background()))
	hw.Hour.ResetCounters()
	hw.Minute.ResetCounters()
	return d, hw
}

func TestNew(t *testing.T) {
	d, hw := newDevice(t)

	assert.False(t, hw.Enable.Get(), "drivers enabled")
	assert.True(t, d.Enabled())
	assert.True(t, hw.Hour.DirPin().Get(), "hour dir towards home")
	assert.False(t, hw.Minute.DirPin().Get(), "minute dir towards home")

	for _, a := range []rackclock.Axis{rackclock.AxisHour, rackclock.AxisMinute} {
		assert.Equal(t, device.HomingStateUnhomed, d.Axis(a).State())
		assert.Equal(t, int32(239), d.Axis(a).MaxSteps())
		assert.Equal(t, hw.Rack(a).Travel(), d.Axis(a).MaxSteps())
		assert.Equal(t, a, d.Axis(a).Name())
	}
	assert.Nil(t, d.Axis(rackclock.AxisUnknown))
}

func TestNewInvalidConfig(t *testing.T) {
	hw := sim.NewHardware(device.DefaultGeometry, device.DefaultTravelMM)

	tests := []struct {
		name   string
		modify func(*device.Config)
	}{
		{"MissingEnable", func(c *device.Config) { c.EnablePin = nil }},
		{"MissingStep", func(c *device.Config) { c.Hour.Stepper.StepPin = nil }},
		{"MissingDir", func(c *device.Config) { c.Minute.Stepper.DirPin = nil }},
		{"MissingHome", func(c *device.Config) { c.Minute.Home.Pin = nil }},
		{"NegativeTravel", func(c *device.Config) { c.Hour.TravelMM = -1 }},
		{"NegativePulseWidth", func(c *device.Config) { c.Hour.Stepper.PulseWidth = -1 }},
		{"NegativeStepsPerRevolution", func(c *device.Config) { c.Geometry.StepsPerRevolution = -200 }},
		{"NegativePitchDiameter", func(c *device.Config) { c.Geometry.PitchDiameterMM = -32 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := hw.Config(pulseWidth, nil, nil)
			tt.modify(&cfg)
			_, err := device.New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestHome(t *testing.T) {
	t.Run("FromFarEnd", func(t *testing.T) {
		d, hw := newDevice(t)
		require.NoError(t, d.Home(context.Background()))

		for _, a := range []rackclock.Axis{rackclock.AxisHour, rackclock.AxisMinute} {
			assert.Equal(t, device.HomingStateHomed, d.Axis(a).State())
			assert.Equal(t, int32(0), d.Axis(a).Position())
			assert.Equal(t, int32(0), hw.Rack(a).Position())
			assert.Equal(t, 239, hw.Rack(a).Pulses())
		}
	})

	t.Run("FromArbitraryPosition", func(t *testing.T) {
		d, hw := newDevice(t)
		hw.Hour.SetPosition(17)
		hw.Minute.SetPosition(101)

		require.NoError(t, d.Home(context.Background()))
		assert.Equal(t, 17, hw.Hour.Pulses())
		assert.Equal(t, 101, hw.Minute.Pulses())
		assert.Equal(t, int32(0), d.Axis(rackclock.AxisHour).Position())
		assert.Equal(t, int32(0), d.Axis(rackclock.AxisMinute).Position())
	})

	t.Run("AlreadyHome", func(t *testing.T) {
		d, hw := newDevice(t)
		hw.Hour.SetPosition(0)
		hw.Minute.SetPosition(0)

		require.NoError(t, d.Home(context.Background()))
		assert.Equal(t, 0, hw.Hour.Pulses())
		assert.Equal(t, 0, hw.Minute.Pulses())
	})

	t.Run("RehomeResetsPosition", func(t *testing.T) {
		d, hw := newHomedDevice(t)
		require.NoError(t, d.MoveTo(rackclock.AxisMinute, 100))

		// rack slips while the drivers are off
		d.Disable()
		hw.Minute.SetPosition(150)
		d.Enable()

		require.NoError(t, d.Home(context.Background()))
		assert.Equal(t, int32(0), d.Axis(rackclock.AxisMinute).Position())
		assert.Equal(t, int32(0), hw.Minute.Position())
	})

	t.Run("LogsProgress", func(t *testing.T) {
		var buf bytes.Buffer
		hw := sim.NewHardware(device.DefaultGeometry, device.DefaultTravelMM)
		d, err := device.New(hw.Config(pulseWidth, nil, rackclock.NewLogger(&buf, clockwork.NewFakeClock())))
		require.NoError(t, err)

		require.NoError(t, d.Home(context.Background()))
		assert.Equal(t, `[-] Homing Hour
[-] Homing complete Hour
[-] Homing Minute
[-] Homing complete Minute
`, buf.String())
	})
}

func TestHomeTimeout(t *testing.T) {
	hw := sim.NewHardware(device.DefaultGeometry, device.DefaultTravelMM)
	cfg := hw.Config(time.Millisecond, nil, nil)
	// broken switch never closes
	cfg.Hour.Home.Pin = &sim.Line{}
	cfg.Hour.Home.TriggerHigh = true
	cfg.Hour.Home.Timeout = 20 * time.Millisecond

	d, err := device.New(cfg)
	require.NoError(t, err)

	err = d.Home(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, device.ErrHomingTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var timeoutErr *device.HomingTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, rackclock.AxisHour, timeoutErr.Axis)
	assert.Positive(t, timeoutErr.Steps)

	hour := d.Axis(rackclock.AxisHour)
	assert.Equal(t, device.HomingStateUnhomed, hour.State())
	assert.ErrorIs(t, hour.MoveTo(10), device.ErrNotHomed)

	// minute homing is not attempted after the hour failure
	assert.Equal(t, device.HomingStateUnhomed, d.Axis(rackclock.AxisMinute).State())
	assert.Equal(t, 0, hw.Minute.Pulses())
}

func TestHomeCancelled(t *testing.T) {
	d, hw := newDevice(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Home(ctx)
	assert.ErrorIs(t, err, device.ErrHomingTimeout)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, hw.Hour.Pulses())
}

func TestMoveTo(t *testing.T) {
	t.Run("NotHomed", func(t *testing.T) {
		d, hw := newDevice(t)

		err := d.MoveTo(rackclock.AxisHour, 10)
		assert.ErrorIs(t, err, device.ErrNotHomed)

		var axisErr *device.AxisError
		require.ErrorAs(t, err, &axisErr)
		assert.Equal(t, rackclock.AxisHour, axisErr.Axis)
		assert.Equal(t, 0, hw.Hour.Pulses())
	})

	t.Run("UnknownAxis", func(t *testing.T) {
		d, _ := newHomedDevice(t)
		assert.Error(t, d.MoveTo(rackclock.AxisUnknown, 10))
		assert.Error(t, d.Jog(rackclock.AxisUnknown, 1))
	})

	t.Run("Forward", func(t *testing.T) {
		d, hw := newHomedDevice(t)
		hw.Minute.EnableTrace()

		require.NoError(t, d.MoveTo(rackclock.AxisMinute, 119))
		assert.Equal(t, int32(119), d.Axis(rackclock.AxisMinute).Position())
		assert.Equal(t, int32(119), hw.Minute.Position())
		assert.Equal(t, 119, hw.Minute.Pulses())
		assert.Equal(t, 1, hw.Minute.DirChanges())
		assertMonotonic(t, hw.Minute.Trace(), 1)

		// hour rack untouched
		assert.Equal(t, 0, hw.Hour.Pulses())
	})

	t.Run("Backward", func(t *testing.T) {
		d, hw := newHomedDevice(t)
		require.NoError(t, d.MoveTo(rackclock.AxisHour, 200))
		hw.Hour.ResetCounters()
		hw.Hour.EnableTrace()

		require.NoError(t, d.MoveTo(rackclock.AxisHour, 50))
		assert.Equal(t, int32(50), hw.Hour.Position())
		assert.Equal(t, 150, hw.Hour.Pulses())
		assertMonotonic(t, hw.Hour.Trace(), -1)
	})

	t.Run("Idempotent", func(t *testing.T) {
		d, hw := newHomedDevice(t)
		require.NoError(t, d.MoveTo(rackclock.AxisHour, 80))
		hw.Hour.ResetCounters()

		require.NoError(t, d.MoveTo(rackclock.AxisHour, 80))
		assert.Equal(t, 0, hw.Hour.Pulses())
		assert.Equal(t, 0, hw.Hour.DirChanges())
	})

	t.Run("Clamped", func(t *testing.T) {
		d, hw := newHomedDevice(t)

		require.NoError(t, d.MoveTo(rackclock.AxisHour, 1000))
		assert.Equal(t, int32(239), d.Axis(rackclock.AxisHour).Position())
		assert.Equal(t, int32(239), hw.Hour.Position())

		require.NoError(t, d.MoveTo(rackclock.AxisHour, -5))
		assert.Equal(t, int32(0), d.Axis(rackclock.AxisHour).Position())
		assert.Equal(t, int32(0), hw.Hour.Position())
	})

	t.Run("ClampedLogsWhenVerbose", func(t *testing.T) {
		var buf bytes.Buffer
		hw := sim.NewHardware(device.DefaultGeometry, device.DefaultTravelMM)
		d, err := device.New(hw.Config(pulseWidth, nil, rackclock.NewLogger(&buf, clockwork.NewFakeClock())))
		require.NoError(t, err)
		require.NoError(t, d.Home(context.Background()))
		d.Verbose()
		buf.Reset()

		require.NoError(t, d.MoveTo(rackclock.AxisMinute, 300))
		assert.Contains(t, buf.String(), "Minute target 300 clamped to 239")
	})
}

func TestJog(t *testing.T) {
	d, hw := newHomedDevice(t)

	require.NoError(t, d.Jog(rackclock.AxisMinute, 5))
	require.NoError(t, d.Jog(rackclock.AxisMinute, -2))
	assert.Equal(t, int32(3), d.Axis(rackclock.AxisMinute).Position())
	assert.Equal(t, int32(3), hw.Minute.Position())

	require.NoError(t, d.Jog(rackclock.AxisMinute, -9))
	assert.Equal(t, int32(0), hw.Minute.Position())
}

func TestDisable(t *testing.T) {
	d, hw := newHomedDevice(t)

	require.NoError(t, d.MoveTo(rackclock.AxisMinute, 40))
	assert.True(t, d.Homed())

	d.Disable()
	assert.True(t, hw.Enable.Get())
	assert.False(t, d.Enabled())
	assert.False(t, d.Homed())

	// the racks can be moved by hand now, so nothing moves until they are homed again
	for _, a := range []rackclock.Axis{rackclock.AxisHour, rackclock.AxisMinute} {
		assert.Equal(t, device.HomingStateUnhomed, d.Axis(a).State())
		err := d.MoveTo(a, 70)
		assert.ErrorIs(t, err, device.ErrNotHomed)
	}
	assert.Equal(t, int32(0), d.Axis(rackclock.AxisHour).Position())
	assert.Equal(t, int32(0), hw.Hour.Position())

	d.Enable()
	assert.False(t, hw.Enable.Get())
	assert.ErrorIs(t, d.MoveTo(rackclock.AxisHour, 70), device.ErrNotHomed)

	require.NoError(t, d.Home(context.Background()))
	require.NoError(t, d.MoveTo(rackclock.AxisHour, 70))
	assert.Equal(t, int32(70), hw.Hour.Position())
}

func TestDebug(t *testing.T) {
	var buf bytes.Buffer
	hw := sim.NewHardware(device.DefaultGeometry, device.DefaultTravelMM)
	d, err := device.New(hw.Config(pulseWidth, nil, rackclock.NewLogger(&buf, clockwork.NewFakeClock())))
	require.NoError(t, err)

	d.Debug()
	assert.Equal(t, "[-] Hour=0/239(Unhomed) Minute=0/239(Unhomed)\n", buf.String())

	require.NoError(t, d.Home(context.Background()))
	require.NoError(t, d.MoveTo(rackclock.AxisMinute, 42))
	buf.Reset()

	d.Debug()
	assert.Equal(t, "[0s] Hour=0/239(Homed) Minute=42/239(Homed)\n", buf.String())
}

func TestHomingStateString(t *testing.T) {
	assert.Equal(t, "Unhomed", device.HomingStateUnhomed.String())
	assert.Equal(t, "Seeking", device.HomingStateSeeking.String())
	assert.Equal(t, "Homed", device.HomingStateHomed.String())
	assert.Equal(t, "Unhomed", device.HomingState(42).String())
}

func TestAxisErrorMessage(t *testing.T) {
	err := &device.AxisError{Axis: rackclock.AxisMinute, Err: device.ErrNotHomed}
	assert.Equal(t, "Minute axis: axis is not homed", err.Error())
	assert.True(t, errors.Is(err, device.ErrNotHomed))
}

func assertMonotonic(t *testing.T, positions []int32, sign int32) {
	t.Helper()
	for i := 1; i < len(positions); i++ {
		assert.Equal(t, sign, positions[i]-positions[i-1], "step %d", i)
	}
}
