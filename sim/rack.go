// Package sim simulates the clock hardware: two racks driven by step/dir drivers with a
// home switch at position zero and a hard stop at the end of the travel
package sim

import "sync"

// PinFunc adapts a pair of functions to a digital line
type PinFunc struct {
	SetFunc func(high bool)
	GetFunc func() bool
}

func (p PinFunc) Set(high bool) {
	if p.SetFunc != nil {
		p.SetFunc(high)
	}
}

func (p PinFunc) Get() bool {
	if p.GetFunc == nil {
		return false
	}
	return p.GetFunc()
}

// Line is a plain digital line that reads back what was last written
type Line struct {
	mu   sync.Mutex
	high bool
}

func (l *Line) Set(high bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.high = high
}

func (l *Line) Get() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.high
}

// Rack is one rack and its stepper. Every rising edge of the step line moves the rack one step
// in the direction of the dir line. The rack cannot move below zero, where it closes the home
// switch, or past its travel
type Rack struct {
	mu sync.Mutex

	position  int32
	travel    int32
	invertDir bool
	enable    Pin

	dir  bool
	step bool

	pulses     int
	dirChanges int

	trace     bool
	positions []int32
}

// Pin is a digital line like device.Pin
type Pin interface {
	Set(high bool)
	Get() bool
}

// NewRack creates a rack resting at start. invertDir is set when a LOW dir line moves the rack
// away from home
func NewRack(travel, start int32, invertDir bool) *Rack {
	r := &Rack{
		travel:    travel,
		invertDir: invertDir,
	}
	r.position = r.limit(start)
	return r
}

// StepPin is the driver's step input
func (r *Rack) StepPin() PinFunc {
	return PinFunc{SetFunc: r.setStep, GetFunc: r.getStep}
}

// DirPin is the driver's dir input
func (r *Rack) DirPin() PinFunc {
	return PinFunc{SetFunc: r.setDir, GetFunc: r.getDir}
}

// HomePin is a pulled-up input that reads low while the rack is at the home switch
func (r *Rack) HomePin() PinFunc {
	return PinFunc{GetFunc: func() bool {
		return r.Position() > 0
	}}
}

// Position is the physical position of the rack in steps from the home switch
func (r *Rack) Position() int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.position
}

// SetPosition moves the rack by hand, like when the motors are disabled
func (r *Rack) SetPosition(p int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.position = r.limit(p)
}

// Travel is the last reachable position
func (r *Rack) Travel() int32 {
	return r.travel
}

// Pulses is the number of rising edges seen on the step line, including ones against a stop
func (r *Rack) Pulses() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pulses
}

// DirChanges counts writes to the dir line that changed its level
func (r *Rack) DirChanges() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dirChanges
}

// ResetCounters clears Pulses, DirChanges and the trace
func (r *Rack) ResetCounters() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pulses = 0
	r.dirChanges = 0
	r.positions = nil
}

// EnableTrace records the position after every pulse
func (r *Rack) EnableTrace() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trace = true
}

// Trace returns the positions recorded since EnableTrace or ResetCounters
func (r *Rack) Trace() []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int32(nil), r.positions...)
}

func (r *Rack) setStep(high bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rising := high && !r.step
	r.step = high
	if !rising {
		return
	}

	r.pulses++
	// enable is active-low
	if r.enable != nil && r.enable.Get() {
		return
	}

	if r.dir != r.invertDir {
		r.position = r.limit(r.position + 1)
	} else {
		r.position = r.limit(r.position - 1)
	}

	if r.trace {
		r.positions = append(r.positions, r.position)
	}
}

func (r *Rack) getStep() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.step
}

func (r *Rack) setDir(high bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if high != r.dir {
		r.dirChanges++
	}
	r.dir = high
}

func (r *Rack) getDir() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dir
}

func (r *Rack) limit(p int32) int32 {
	return min(max(p, 0), r.travel)
}
