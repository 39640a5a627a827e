package host

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/calvinmclean/rackclock"

	"github.com/google/shlex"
)

var (
	errEmpty   = errors.New("empty input")
	errUnknown = errors.New("unknown command")
)

// maxJogPerCommand is the largest step count a single firmware jog command can carry
const maxJogPerCommand = 9

// Translate converts a console line like "set 7 45" or "jog minute -12" to firmware commands
func Translate(line string) (string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return "", fmt.Errorf("error parsing input: %w", err)
	}
	if len(args) == 0 {
		return "", errEmpty
	}

	switch strings.ToLower(args[0]) {
	case "set":
		return setTime(strings.Join(args[1:], " "))
	case "home":
		return "Z", nil
	case "jog":
		return jog(args[1:])
	case "debug":
		return "D", nil
	case "verbose":
		return "V", nil
	case "enable":
		return "E", nil
	case "disable":
		return "X", nil
	case "raw":
		// line commands like T and U end at the newline
		return strings.Join(args[1:], " ") + "\n", nil
	}

	// bare times like "7:45"
	if args[0] != "" && args[0][0] >= '0' && args[0][0] <= '9' {
		return setTime(line)
	}

	return "", fmt.Errorf("%w: %q", errUnknown, args[0])
}

// TimeCommand is the firmware command that sets the displayed time
func TimeCommand(r rackclock.Reading) string {
	return "T " + r.String() + "\n"
}

// SyncCommand is the firmware command that sets the time, and the RTC when there is one, from an
// absolute time
func SyncCommand(t time.Time) string {
	return "U " + strconv.FormatInt(t.Unix(), 10) + "\n"
}

func setTime(s string) (string, error) {
	r, ok := rackclock.ParseReading(s)
	if !ok {
		return "", fmt.Errorf("invalid time %q: expected hour 0-23 and minute 0-59", s)
	}
	return TimeCommand(r), nil
}

func jog(args []string) (string, error) {
	if len(args) != 2 {
		return "", errors.New("usage: jog hour|minute STEPS")
	}

	axis := rackclock.AxisUnknown
	if args[0] != "" {
		axis = rackclock.ParseAxis(args[0][0])
	}
	if axis == rackclock.AxisUnknown {
		return "", fmt.Errorf("invalid axis %q", args[0])
	}

	n, err := strconv.Atoi(args[1])
	if err != nil || n == 0 {
		return "", fmt.Errorf("invalid step count %q", args[1])
	}

	sign := byte('+')
	if n < 0 {
		sign = '-'
		n = -n
	}

	var sb strings.Builder
	for n > 0 {
		s := min(n, maxJogPerCommand)
		sb.WriteByte('s')
		sb.WriteByte(axis.String()[0])
		sb.WriteByte(sign)
		sb.WriteString(strconv.Itoa(s))
		n -= s
	}
	return sb.String(), nil
}
