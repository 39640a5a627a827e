package host

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/calvinmclean/rackclock/timesource"

	"go.bug.st/serial/enumerator"
)

// SerialPortNone runs the firmware in-process on simulated hardware instead of opening a port
const SerialPortNone = "None"

const (
	defaultBaudRate      = "115200"
	defaultSimPulseWidth = time.Millisecond
)

var ErrNoUSBSerial = errors.New("no USB serial ports found")

// Config is read from the environment or from the config window. Values are kept as text so
// they can be bound to form fields
type Config struct {
	// SerialPort is the firmware's USB serial port. When empty, the first USB port is used
	SerialPort string
	BaudRate   string
	// FollowInterval, when set, pushes the host time to the firmware on this interval
	FollowInterval string
	Timezone       string

	// SimPulseWidth is the step pulse width of the simulated racks
	SimPulseWidth time.Duration
}

// ConfigFromEnv reads SERIAL_PORT, BAUD_RATE, FOLLOW_INTERVAL and TIMEZONE
func ConfigFromEnv() Config {
	return Config{
		SerialPort:     os.Getenv("SERIAL_PORT"),
		BaudRate:       envWithFallback("BAUD_RATE", defaultBaudRate),
		FollowInterval: os.Getenv("FOLLOW_INTERVAL"),
		Timezone:       envWithFallback("TIMEZONE", timesource.DefaultTimezone),
	}
}

func envWithFallback(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	return v
}

type parsedConfig struct {
	serialPort     string
	baudRate       int
	followInterval time.Duration
	location       *time.Location
	simPulseWidth  time.Duration
}

func (c Config) parse() (parsedConfig, error) {
	p := parsedConfig{
		serialPort:    c.SerialPort,
		simPulseWidth: c.SimPulseWidth,
	}

	var err error
	if c.BaudRate == "" {
		c.BaudRate = defaultBaudRate
	}
	p.baudRate, err = strconv.Atoi(c.BaudRate)
	if err != nil || p.baudRate <= 0 {
		return parsedConfig{}, fmt.Errorf("invalid baud rate %q", c.BaudRate)
	}

	if c.FollowInterval != "" {
		p.followInterval, err = time.ParseDuration(c.FollowInterval)
		if err != nil {
			return parsedConfig{}, fmt.Errorf("invalid follow interval: %w", err)
		}
		if p.followInterval < 0 {
			return parsedConfig{}, fmt.Errorf("invalid follow interval %q", c.FollowInterval)
		}
	}

	if c.Timezone == "" {
		c.Timezone = timesource.DefaultTimezone
	}
	p.location, err = time.LoadLocation(c.Timezone)
	if err != nil {
		return parsedConfig{}, fmt.Errorf("invalid timezone: %w", err)
	}

	if p.simPulseWidth == 0 {
		p.simPulseWidth = defaultSimPulseWidth
	}

	return p, nil
}

// GetSerialPorts lists the names of USB serial ports
func GetSerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var names []string
	for _, port := range ports {
		if port.IsUSB {
			names = append(names, port.Name)
		}
	}

	if len(names) == 0 {
		return nil, ErrNoUSBSerial
	}

	return names, nil
}
