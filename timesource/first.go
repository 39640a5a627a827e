package timesource

import (
	"errors"

	"github.com/calvinmclean/rackclock"
)

// Source is anything that reports the time of day, like clock.TimeSource
type Source interface {
	Now() (rackclock.Reading, error)
}

// First reads from each source in order and returns the first reading. A source that is
// unavailable is skipped. Other errors are returned right away
type First []Source

func (f First) Now() (rackclock.Reading, error) {
	err := unavailable("no time source")
	for _, s := range f {
		var r rackclock.Reading
		r, err = s.Now()
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, rackclock.ErrTimeSourceUnavailable) {
			return rackclock.Reading{}, err
		}
	}
	return rackclock.Reading{}, err
}
