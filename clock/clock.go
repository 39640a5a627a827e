// Package clock keeps the racks showing the current time
package clock

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/calvinmclean/rackclock"
	"github.com/jonboulle/clockwork"
)

const (
	defaultInterval = time.Second

	// unset is the last value before the first reading is committed
	unset = -1
)

// Mover moves an axis to an absolute step position and returns after the move is complete.
// device.Device implements it
type Mover interface {
	MoveTo(rackclock.Axis, int32) error
}

// TimeSource produces the current time of day. It returns rackclock.ErrTimeSourceUnavailable
// when there is no reading for this cycle
type TimeSource interface {
	Now() (rackclock.Reading, error)
}

// Config has the optional settings for a Clock
type Config struct {
	// Interval is how often the time source is polled. Defaults to 1s
	Interval time.Duration
	Clock    clockwork.Clock
	Logger   *rackclock.Logger
}

// Clock polls a TimeSource and moves both racks to the time it reports. When a field is smaller
// than the last committed value, its rack is first returned to zero so it only ever travels
// forward within a lap
type Clock struct {
	mover  Mover
	source TimeSource
	mapper Mapper

	interval time.Duration
	clock    clockwork.Clock
	log      *rackclock.Logger

	lastHour   int
	lastMinute int
	lastCycle  time.Time
}

// New creates a Clock. The racks must already be homed before it is used
func New(mover Mover, source TimeSource, mapper Mapper, cfg Config) *Clock {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &Clock{
		mover:      mover,
		source:     source,
		mapper:     mapper,
		interval:   cfg.Interval,
		clock:      cfg.Clock,
		log:        cfg.Logger,
		lastHour:   unset,
		lastMinute: unset,
	}
}

// Update runs a single cycle: read the time source and apply the reading
func (c *Clock) Update() error {
	r, err := c.source.Now()
	if err != nil {
		return err
	}
	return c.Apply(r)
}

// Apply moves the racks to show the reading. The last values are only updated after every move
// succeeded, so a failed cycle is retried in full
func (c *Clock) Apply(r rackclock.Reading) error {
	if !r.Valid() {
		return rackclock.ErrInvalidReading
	}

	if c.lastHour != unset && r.Hour < c.lastHour {
		c.log.Debug("Hour wrap", strconv.Itoa(c.lastHour), "->", strconv.Itoa(r.Hour))
		err := c.mover.MoveTo(rackclock.AxisHour, 0)
		if err != nil {
			return err
		}
	}

	if c.lastMinute != unset && r.Minute < c.lastMinute {
		c.log.Debug("Minute wrap", strconv.Itoa(c.lastMinute), "->", strconv.Itoa(r.Minute))
		err := c.mover.MoveTo(rackclock.AxisMinute, 0)
		if err != nil {
			return err
		}
	}

	err := c.mover.MoveTo(rackclock.AxisHour, c.mapper.HourTarget(r.Hour))
	if err != nil {
		return err
	}

	err = c.mover.MoveTo(rackclock.AxisMinute, c.mapper.MinuteTarget(r.Minute))
	if err != nil {
		return err
	}

	if r.Hour != c.lastHour || r.Minute != c.lastMinute {
		c.log.Println("Set to", r.String())
	}

	c.lastHour = r.Hour
	c.lastMinute = r.Minute

	return nil
}

// Run applies the current time immediately and then once every interval until the context is
// done. Failed cycles are logged and retried on the next tick
func (c *Clock) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.cycle()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
		}
	}
}

// Poll runs a cycle when at least one interval has passed since the last one. It does not wait,
// so it can share a goroutine with something else, like the serial console on the firmware
func (c *Clock) Poll() {
	if !c.lastCycle.IsZero() && c.clock.Since(c.lastCycle) < c.interval {
		return
	}
	c.cycle()
}

func (c *Clock) cycle() {
	c.lastCycle = c.clock.Now()

	err := c.Update()
	switch {
	case err == nil:
	case errors.Is(err, rackclock.ErrTimeSourceUnavailable):
		c.log.Debug(err.Error())
	default:
		c.log.Println("error:", err.Error())
	}
}

// Reset forgets the last committed reading. It is used after homing, when the racks are back
// at zero and the next reading must not be treated as a wrap
func (c *Clock) Reset() {
	c.lastHour = unset
	c.lastMinute = unset
}

// Last returns the last committed reading. ok is false before the first one
func (c *Clock) Last() (r rackclock.Reading, ok bool) {
	if c.lastHour == unset || c.lastMinute == unset {
		return rackclock.Reading{}, false
	}
	return rackclock.Reading{Hour: c.lastHour, Minute: c.lastMinute}, true
}
