package timesource

import (
	"time"

	"github.com/calvinmclean/rackclock"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

// RTC reads a battery backed DS3231. The chip keeps UTC
type RTC struct {
	dev ds3231.Device
	loc *time.Location
}

// NewRTC uses a DS3231 on an already configured I2C bus. A nil location is DefaultTimezone
func NewRTC(bus drivers.I2C, loc *time.Location) *RTC {
	if loc == nil {
		loc = LoadLocation(DefaultTimezone)
	}

	dev := ds3231.New(bus)
	dev.Configure()

	return &RTC{dev, loc}
}

// Valid is false when the oscillator stopped, like after the battery was removed, or the time was
// never set
func (r *RTC) Valid() bool {
	_, err := r.Time()
	return err == nil
}

// Time is the current local time
func (r *RTC) Time() (time.Time, error) {
	if !r.dev.IsTimeValid() {
		return time.Time{}, unavailable("RTC oscillator stopped")
	}

	t, err := r.dev.ReadTime()
	if err != nil {
		return time.Time{}, unavailable("error reading RTC: " + err.Error())
	}

	if !synced(t) {
		return time.Time{}, unavailable("RTC time not set: " + t.Format(time.RFC3339))
	}

	return t.In(r.loc), nil
}

func (r *RTC) Now() (rackclock.Reading, error) {
	t, err := r.Time()
	if err != nil {
		return rackclock.Reading{}, err
	}
	return reading(t, r.loc), nil
}

// Set writes the time to the RTC and clears the oscillator stopped flag
func (r *RTC) Set(t time.Time) error {
	return r.dev.SetTime(t.UTC())
}
