package rackclock

import (
	"errors"
	"strconv"
)

var (
	// ErrTimeSourceUnavailable is returned by a time source that has no usable reading for this cycle
	ErrTimeSourceUnavailable = errors.New("time source unavailable")
	// ErrInvalidReading is returned when a Reading is outside of 0-23/0-59
	ErrInvalidReading = errors.New("invalid reading")
)

// Axis is one of the two racks on the clock
type Axis int

const (
	AxisUnknown Axis = iota
	AxisHour
	AxisMinute
)

func (a Axis) String() string {
	switch a {
	case AxisHour:
		return "Hour"
	case AxisMinute:
		return "Minute"
	default:
		fallthrough
	case AxisUnknown:
		return "Unknown"
	}
}

// Span is the number of values the Axis displays before it wraps back to zero
func (a Axis) Span() int {
	switch a {
	case AxisHour:
		return 24
	case AxisMinute:
		return 60
	default:
		return 0
	}
}

// ParseAxis reads the single-character axis name used by the serial commands
func ParseAxis(b byte) Axis {
	switch b {
	case 'H', 'h':
		return AxisHour
	case 'M', 'm':
		return AxisMinute
	default:
		return AxisUnknown
	}
}

// Reading is a single time of day as displayed by the clock
type Reading struct {
	Hour   int
	Minute int
}

// Valid is true when both fields are inside the range of their Axis
func (r Reading) Valid() bool {
	return r.Hour >= 0 && r.Hour < AxisHour.Span() &&
		r.Minute >= 0 && r.Minute < AxisMinute.Span()
}

// Get returns the field displayed by the Axis
func (r Reading) Get(a Axis) int {
	switch a {
	case AxisHour:
		return r.Hour
	case AxisMinute:
		return r.Minute
	default:
		return 0
	}
}

func (r Reading) String() string {
	return pad2(r.Hour) + ":" + pad2(r.Minute)
}

func pad2(v int) string {
	s := strconv.Itoa(v)
	if v >= 0 && v < 10 {
		return "0" + s
	}
	return s
}

// ParseReading parses free-form manual time entry like "7 45", "07:45" or "T 7h45".
// The first two runs of digits are the hour and minute and everything else is a separator.
// ok is false if there are fewer than two numbers or either one is out of range.
func ParseReading(s string) (r Reading, ok bool) {
	var fields [2]int
	found := 0
	for i := 0; i < len(s) && found < len(fields); {
		if !isDigit(s[i]) {
			i++
			continue
		}

		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}

		v, err := strconv.Atoi(s[start:i])
		if err != nil {
			return Reading{}, false
		}
		fields[found] = v
		found++
	}

	if found < len(fields) {
		return Reading{}, false
	}

	r = Reading{Hour: fields[0], Minute: fields[1]}
	if !r.Valid() {
		return Reading{}, false
	}
	return r, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
