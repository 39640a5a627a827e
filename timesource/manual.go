package timesource

import (
	"sync"
	"time"

	"github.com/calvinmclean/rackclock"
)

// Manual holds a time entered by hand. Each entry is returned by Now once, and Now is
// unavailable until the next entry arrives
type Manual struct {
	loc *time.Location

	mu      sync.Mutex
	pending rackclock.Reading
	ok      bool
}

// NewManual creates a Manual source. loc is used by SetTime and a nil location is DefaultTimezone
func NewManual(loc *time.Location) *Manual {
	if loc == nil {
		loc = LoadLocation(DefaultTimezone)
	}
	return &Manual{loc: loc}
}

// Set stores a reading for the next Now call. Invalid readings are ignored
func (m *Manual) Set(r rackclock.Reading) bool {
	if !r.Valid() {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = r
	m.ok = true

	return true
}

// SetLine parses entries like "7 45" or "07:45". Malformed lines are ignored
func (m *Manual) SetLine(line string) bool {
	r, ok := rackclock.ParseReading(line)
	if !ok {
		return false
	}
	return m.Set(r)
}

// SetTime stores the local time of day of t
func (m *Manual) SetTime(t time.Time) bool {
	return m.Set(reading(t, m.loc))
}

func (m *Manual) Now() (rackclock.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ok {
		return rackclock.Reading{}, unavailable("no new manual entry")
	}

	m.ok = false
	return m.pending, nil
}
