package emu

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/r3ksim/timing/latency"
)

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithMemory sets the guest address space.
func WithMemory(mem Memory) Option {
	return func(c *Core) {
		c.mem = mem
	}
}

// WithSystem sets the run/stop flag polled once per instruction.
func WithSystem(s System) Option {
	return func(c *Core) {
		c.system = s
	}
}

// WithEventBus sets the milestone notification sink.
func WithEventBus(bus EventBus) Option {
	return func(c *Core) {
		c.events = bus
	}
}

// WithInterruptController sets the source of the hardware interrupt line.
func WithInterruptController(irq InterruptController) Option {
	return func(c *Core) {
		c.irq = irq
	}
}

// WithCounters sets the root counters advanced from the branch test.
func WithCounters(counters Counters) Option {
	return func(c *Core) {
		c.counters = counters
	}
}

// WithGTE sets the geometry coprocessor.
func WithGTE(gte GTE) Option {
	return func(c *Core) {
		c.gte = gte
	}
}

// WithGeometryTracker sets the observer used when the PGXP mode is non-zero.
func WithGeometryTracker(t GeometryTracker) Option {
	return func(c *Core) {
		c.tracker = t
	}
}

// WithPGXPMode sets the initial geometry precision mode.
func WithPGXPMode(mode uint32) Option {
	return func(c *Core) {
		c.pgxpMode = mode
	}
}

// WithTTY sets the writer receiving intercepted console output.
func WithTTY(w io.Writer) Option {
	return func(c *Core) {
		c.tty = w
	}
}

// WithSymbols sets the symbol table used in traces.
func WithSymbols(s *Symbols) Option {
	return func(c *Core) {
		c.symbols = s
	}
}

// WithKernelLog enables logging of firmware kernel calls.
func WithKernelLog(on bool) Option {
	return func(c *Core) {
		c.kernelLog = on
	}
}

// WithRAMMask sets the mask mapping an address to its RAM offset.
func WithRAMMask(mask uint32) Option {
	return func(c *Core) {
		c.ramMask = mask
	}
}

// WithLatencyTable sets the cycle accounting model.
func WithLatencyTable(t *latency.Table) Option {
	return func(c *Core) {
		c.latency = t
	}
}

// WithLogger sets the logger entry the core logs through.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Core) {
		c.logger = l
	}
}
