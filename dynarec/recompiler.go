// Package dynarec provides the block-translating execution engine.
//
// Guest code is translated one basic block at a time into a sequence of
// pre-decoded handlers cached by PC. Each translated instruction still
// goes through Core.Step, so the hazard slots, the instruction cache and
// the branch test behave exactly as in the interpreter. When the word
// fetched at run time no longer matches the translation, the instruction
// is interpreted and the block is dropped.
package dynarec

import (
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
)

// Stats holds translation statistics.
type Stats struct {
	BlocksTranslated  uint64
	BlocksInvalidated uint64
	OpsTranslated     uint64
	ArenaFlushes      uint64
	Mismatches        uint64
}

// Option configures a Recompiler.
type Option func(*Recompiler)

// WithArenaSize sets the size in bytes of the translation arena.
func WithArenaSize(size int) Option {
	return func(r *Recompiler) {
		r.arenaSize = size
	}
}

// WithMaxBlockLen bounds the number of instructions per block.
func WithMaxBlockLen(n int) Option {
	return func(r *Recompiler) {
		r.maxBlockLen = n
	}
}

// Recompiler is the translating execution engine.
type Recompiler struct {
	core    *emu.Core
	decoder *insts.Decoder
	logger  *logrus.Entry

	arenaSize   int
	maxBlockLen int

	arena  *arena
	blocks *blockCache

	current *op
	stale   bool
	exec    emu.StepFunc

	stats Stats
}

var _ emu.Engine = (*Recompiler)(nil)

// New creates a recompiler driving core. Init must succeed before Execute.
func New(core *emu.Core, opts ...Option) *Recompiler {
	r := &Recompiler{
		core:        core,
		decoder:     insts.NewDecoder(),
		logger:      core.Logger().WithField("engine", "recompiler"),
		arenaSize:   DefaultArenaSize,
		maxBlockLen: DefaultMaxBlockLen,
		blocks:      newBlockCache(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxBlockLen < 1 {
		r.maxBlockLen = 1
	}
	r.exec = r.execCurrent
	return r
}

// Implemented reports whether the host can run translated code.
func (r *Recompiler) Implemented() bool {
	if !arenaSupported {
		return false
	}
	return runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64"
}

// Init maps the translation arena.
func (r *Recompiler) Init() bool {
	if !r.Implemented() {
		return false
	}
	if r.arena != nil {
		return true
	}

	a, err := newArena(r.arenaSize)
	if err != nil {
		r.logger.WithError(err).Warn("recompiler init failed")
		return false
	}
	r.arena = a
	r.logger.WithField("arena", r.arenaSize).Debug("recompiler ready")
	return true
}

// Execute runs instructions until the system stops.
func (r *Recompiler) Execute() {
	if r.arena == nil {
		panic("dynarec: Execute before a successful Init")
	}

	c := r.core
	for c.HasToRun() {
		pc := c.Regs.PC
		if pc&3 != 0 {
			c.Step(emu.Interpret)
			continue
		}
		if !r.run(r.lookup(pc)) {
			return
		}
	}
}

// run executes b from its first instruction, which the caller has already
// been cleared to run. It returns false when the system stopped mid-block.
func (r *Recompiler) run(b *block) bool {
	c := r.core
	running := true

	for i := range b.ops {
		o := &b.ops[i]
		if i > 0 {
			if c.Regs.PC != o.pc {
				break
			}
			if !c.HasToRun() {
				running = false
				break
			}
		}

		r.current = o
		c.Step(r.exec)
		if r.stale {
			break
		}
	}

	r.current = nil
	if r.stale {
		r.stale = false
		r.stats.Mismatches++
		if r.blocks.remove(b) {
			r.stats.BlocksInvalidated++
		}
	}
	return running
}

// execCurrent runs the current translated instruction, or interprets the
// fetched word when it differs from what was translated.
func (r *Recompiler) execCurrent(c *emu.Core, code uint32) {
	o := r.current
	if code != o.code {
		r.stale = true
		emu.Interpret(c, code)
		return
	}
	o.exec(c, code)
}

func (r *Recompiler) lookup(pc uint32) *block {
	if b := r.blocks.get(pc); b != nil {
		return b
	}

	b := r.translate(pc)
	words := make([]uint32, len(b.ops))
	for i := range b.ops {
		words[i] = b.ops[i].code
	}
	if !r.arena.record(pc, words) {
		r.flush()
		r.stats.ArenaFlushes++
		r.logger.Debug("translation arena full, flushed")
		r.arena.record(pc, words)
	}

	r.blocks.put(b)
	r.stats.BlocksTranslated++
	r.stats.OpsTranslated += uint64(len(b.ops))
	r.logger.WithFields(logrus.Fields{
		"pc":  pc,
		"ops": len(b.ops),
	}).Trace("block translated")
	return b
}

// flush drops every translation.
func (r *Recompiler) flush() {
	r.stats.BlocksInvalidated += uint64(r.blocks.len())
	r.blocks.clear()
	if r.arena != nil {
		r.arena.reset()
	}
}

// Clear drops translations and cache lines covering [addr, addr+size).
func (r *Recompiler) Clear(addr, size uint32) {
	r.core.Clear(addr, size)
	r.stats.BlocksInvalidated += uint64(r.blocks.removeRange(addr, size))
}

// Shutdown unmaps the arena and drops every translation.
func (r *Recompiler) Shutdown() {
	r.flush()
	if r.arena == nil {
		return
	}
	if err := r.arena.release(); err != nil {
		r.logger.WithError(err).Warn("failed to release translation arena")
	}
	r.arena = nil
}

// Reset puts the core in its power-on state and drops every translation.
func (r *Recompiler) Reset() {
	r.core.Reset()
	r.flush()
}

// SetPGXPMode changes the geometry precision mode. Translations depend on
// it, so they are dropped.
func (r *Recompiler) SetPGXPMode(mode uint32) {
	if mode != r.core.PGXPMode() {
		r.flush()
	}
	r.core.SetPGXPMode(mode)
}

// Name returns "recompiler".
func (r *Recompiler) Name() string {
	return "recompiler"
}

// IsDynarec is true.
func (r *Recompiler) IsDynarec() bool {
	return true
}

// Buffer returns the used part of the translation arena. See ParseArena.
func (r *Recompiler) Buffer() []byte {
	if r.arena == nil {
		return nil
	}
	return r.arena.used()
}

// Core returns the driven core.
func (r *Recompiler) Core() *emu.Core {
	return r.core
}

// Stats returns translation statistics.
func (r *Recompiler) Stats() Stats {
	return r.stats
}

// Blocks returns the number of live translations.
func (r *Recompiler) Blocks() int {
	return r.blocks.len()
}
