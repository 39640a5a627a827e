package timesource

import (
	"time"

	"github.com/calvinmclean/rackclock"
	"github.com/jonboulle/clockwork"
)

// System reads the host clock, which the OS keeps in sync with NTP
type System struct {
	clock clockwork.Clock
	loc   *time.Location
}

// NewSystem creates a System source. A nil clock is the real clock and a nil location is
// DefaultTimezone
func NewSystem(clock clockwork.Clock, loc *time.Location) *System {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = LoadLocation(DefaultTimezone)
	}
	return &System{clock, loc}
}

// Time is the current local time
func (s *System) Time() (time.Time, error) {
	t := s.clock.Now()
	if !synced(t) {
		return time.Time{}, unavailable("clock not synced: " + t.UTC().Format(time.RFC3339))
	}
	return t.In(s.loc), nil
}

func (s *System) Now() (rackclock.Reading, error) {
	t, err := s.Time()
	if err != nil {
		return rackclock.Reading{}, err
	}
	return reading(t, s.loc), nil
}
