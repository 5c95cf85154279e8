package emu

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/r3ksim/icache"
	"github.com/sarchlab/r3ksim/insts"
	"github.com/sarchlab/r3ksim/timing/latency"
)

// Reset values.
const (
	ResetVector = 0xbfc00000
	ResetStatus = 0x10900000
	ResetPRid   = 0x00000002
)

// DefaultRAMMask maps an address to its offset in 2 MiB of RAM.
const DefaultRAMMask = 0x001fffff

// StepFunc executes one fetched instruction on the core.
type StepFunc func(c *Core, code uint32)

// Stats holds execution statistics.
type Stats struct {
	Instructions uint64
	Exceptions   uint64
	Interrupts   uint64
	Calls        uint64
	CacheHits    uint64
	CacheMisses  uint64
}

// Core is the architectural model of one R3000A: registers, instruction
// cache, hazard slots and interrupt table. Backends drive it one
// instruction at a time through Step.
type Core struct {
	Regs Registers

	delayed         [2]DelayedLoad
	currentDelayed  uint
	inDelaySlot     bool
	nextIsDelaySlot bool
	currentPC       uint32
	inISR           bool
	shellStarted    bool

	mem      Memory
	cache    *icache.Cache
	system   System
	events   EventBus
	irq      InterruptController
	counters Counters
	gte      GTE
	tracker  GeometryTracker
	pgxpMode uint32

	tty       io.Writer
	symbols   *Symbols
	kernelLog bool
	ramMask   uint32

	latency     *latency.Table
	logger      *logrus.Entry
	decoder     *insts.Decoder
	intHandlers [NumInterrupts]InterruptHandler

	stats Stats
}

// NewCore creates a core in its power-on state.
func NewCore(opts ...Option) *Core {
	c := &Core{
		ramMask: DefaultRAMMask,
		decoder: insts.NewDecoder(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.mem == nil {
		c.mem = NewBus(RAMSize2M)
	}
	if c.irq == nil {
		if irq, ok := c.mem.(InterruptController); ok {
			c.irq = irq
		}
	}
	if c.system == nil {
		c.system = NewStopFlag()
	}
	if c.gte == nil {
		c.gte = &RegisterGTE{}
	}
	if c.latency == nil {
		c.latency = latency.NewTable()
	}
	if c.logger == nil {
		c.logger = logrus.NewEntry(logrus.StandardLogger())
	}
	c.logger = c.logger.WithField("component", "cpu")

	c.cache = icache.New(instrReader{mem: c.mem})
	c.Reset()

	return c
}

// Memory returns the guest address space.
func (c *Core) Memory() Memory {
	return c.mem
}

// System returns the run flag polled by the run loop.
func (c *Core) System() System {
	return c.system
}

// SetSystem replaces the run flag.
func (c *Core) SetSystem(s System) {
	c.system = s
}

// Cache returns the instruction cache.
func (c *Core) Cache() *icache.Cache {
	return c.cache
}

// Logger returns the logger entry of the core.
func (c *Core) Logger() *logrus.Entry {
	return c.logger
}

// Symbols returns the symbol table, possibly nil.
func (c *Core) Symbols() *Symbols {
	return c.symbols
}

// CurrentPC returns the address of the instruction being executed.
func (c *Core) CurrentPC() uint32 {
	return c.currentPC
}

// Stats returns execution statistics.
func (c *Core) Stats() Stats {
	s := c.stats
	cs := c.cache.Stats()
	s.CacheHits = cs.Hits
	s.CacheMisses = cs.Misses
	return s
}

// Reset puts the core in its power-on state: PC at the boot vector,
// interrupts masked, cache and hazard slots empty and no interrupt armed.
func (c *Core) Reset() {
	c.Regs = Registers{}
	c.Regs.PC = ResetVector
	c.Regs.CP0[CP0Status] = ResetStatus
	c.Regs.CP0[CP0PRid] = ResetPRid

	c.cache.InvalidateAll()
	c.resetDelayed()
	c.currentPC = 0
	c.inISR = false
	c.shellStarted = false
}

// SetPGXPMode changes the geometry precision mode.
func (c *Core) SetPGXPMode(mode uint32) {
	c.pgxpMode = mode
}

// PGXPMode returns the geometry precision mode.
func (c *Core) PGXPMode() uint32 {
	return c.pgxpMode
}

// HasToRun reports whether the run loop should execute another
// instruction. It signals ShellReached the first time the PC reaches the
// shell entry point.
func (c *Core) HasToRun() bool {
	if !c.shellStarted && c.Regs.PC == ShellEntry {
		c.shellStarted = true
		if c.events != nil {
			c.events.Signal(ShellReached)
		}
	}
	return c.system.Running()
}

// Fetch reads the instruction word at pc through the instruction cache.
func (c *Core) Fetch(pc uint32) uint32 {
	return c.cache.Fetch(pc)
}

// Step executes the instruction at PC with exec, then commits the hazard
// slot of the previous instruction and, after a delay slot, runs the
// branch test.
func (c *Core) Step(exec StepFunc) {
	c.inDelaySlot = c.nextIsDelaySlot
	c.nextIsDelaySlot = false

	pc := c.Regs.PC
	c.currentPC = pc
	c.Regs.PC = pc + 4

	if pc&3 != 0 {
		c.Regs.Cycle += c.latency.Bias()
		c.RaiseAddressError(ExcLoadAddressError, pc)
	} else {
		code := c.Fetch(pc)
		c.Regs.Code = code
		c.Regs.Cycle += c.latency.Cycles(code)

		if c.tty != nil || c.kernelLog {
			c.interceptKernel(pc)
		}
		if c.logger.Logger.IsLevelEnabled(logrus.TraceLevel) {
			c.trace(pc, code)
		}

		exec(c, code)
	}

	c.flushDelayed()
	c.stats.Instructions++

	if c.inDelaySlot {
		c.BranchTest()
	}
}

func (c *Core) trace(pc, code uint32) {
	fields := logrus.Fields{
		"pc":    fmt.Sprintf("%08x", pc),
		"code":  fmt.Sprintf("%08x", code),
		"cycle": c.Regs.Cycle,
	}
	if sym, ok := c.symbols.Containing(pc); ok {
		fields["sym"] = fmt.Sprintf("%s+%#x", sym.Name, pc-sym.Addr)
	}
	c.logger.WithFields(fields).Trace(c.decoder.Decode(code).String())
}

// Clear invalidates cached instructions in [addr, addr+size).
func (c *Core) Clear(addr, size uint32) {
	c.cache.InvalidateRange(addr, size)
}

// MarkBranch records that the next instruction executes in a delay slot.
func (c *Core) MarkBranch() {
	c.nextIsDelaySlot = true
}

// Snapshot returns the register file and interrupt table as a fixed-size
// little-endian blob.
func (c *Core) Snapshot() []byte {
	var buf bytes.Buffer
	buf.Grow(SnapshotSize)
	if _, err := c.Regs.WriteTo(&buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Restore loads a blob produced by Snapshot. The instruction cache and the
// hazard slots are cleared.
func (c *Core) Restore(blob []byte) error {
	if len(blob) != SnapshotSize {
		return fmt.Errorf("snapshot is %d bytes, want %d", len(blob), SnapshotSize)
	}
	if _, err := c.Regs.ReadFrom(bytes.NewReader(blob)); err != nil {
		return fmt.Errorf("failed to restore core: %w", err)
	}
	c.cache.InvalidateAll()
	c.resetDelayed()
	c.inISR = false
	return nil
}
