package emu

import "sync/atomic"

// Event is a milestone notification published by the core.
type Event int

// Events.
const (
	// ShellReached fires once, the first time the PC reaches the shell
	// entry point after a reset.
	ShellReached Event = iota
)

func (e Event) String() string {
	switch e {
	case ShellReached:
		return "ShellReached"
	}
	return "Unknown"
}

// ShellEntry is the address whose first fetch signals ShellReached.
const ShellEntry = 0x80030000

// EventBus receives milestone notifications.
type EventBus interface {
	Signal(e Event)
}

// EventFunc adapts a function to EventBus.
type EventFunc func(e Event)

// Signal calls f(e).
func (f EventFunc) Signal(e Event) { f(e) }

// System tells the run loop whether to keep going. It is polled once per
// instruction.
type System interface {
	Running() bool
}

// StopFlag is a System that can be stopped from any goroutine.
type StopFlag struct {
	stopped atomic.Bool
}

// NewStopFlag returns a flag in the running state.
func NewStopFlag() *StopFlag {
	return &StopFlag{}
}

// Running reports whether Stop has not been called since the last Start.
func (f *StopFlag) Running() bool { return !f.stopped.Load() }

// Stop requests the run loop to return after the current instruction.
func (f *StopFlag) Stop() { f.stopped.Store(true) }

// Start re-arms the flag.
func (f *StopFlag) Start() { f.stopped.Store(false) }

// Budget is a System that stops after a fixed number of polls, or earlier
// when its StopFlag is tripped.
type Budget struct {
	StopFlag
	remaining uint64
}

// NewBudget returns a System that allows n instructions.
func NewBudget(n uint64) *Budget {
	return &Budget{remaining: n}
}

// Running consumes one unit of the budget.
func (b *Budget) Running() bool {
	if !b.StopFlag.Running() || b.remaining == 0 {
		return false
	}
	b.remaining--
	return true
}

// Remaining returns the unused budget.
func (b *Budget) Remaining() uint64 { return b.remaining }

// Reset grants n more instructions and re-arms the flag.
func (b *Budget) Reset(n uint64) {
	b.remaining = n
	b.Start()
}

// InterruptController exposes the hardware interrupt line of the CPU.
type InterruptController interface {
	Pending() bool
}

// Counters are the root counters advanced from the branch test.
type Counters interface {
	NextDeadline() uint64
	Update(cycle uint64)
}

// GeometryTracker observes memory and COP2 traffic for precision geometry
// tracking. It is only consulted when the PGXP mode is non-zero.
type GeometryTracker interface {
	Load(code, value, addr uint32)
	Store(code, value, addr uint32)
	CopMove(code, value uint32)
}
