package dynarec

import (
	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
)

// DefaultMaxBlockLen bounds the number of instructions in one block.
const DefaultMaxBlockLen = 64

const (
	functSLL  = 0x00
	functADDU = 0x21
	functOR   = 0x25
)

// translate builds the block starting at pc. Guest words are read with the
// debug read type so translation has no side effects on devices or the
// instruction cache.
func (r *Recompiler) translate(pc uint32) *block {
	mem := r.core.Memory()
	pgxp := r.core.PGXPMode() != 0

	b := &block{start: pc}
	delaySlot := false
	for addr := pc; len(b.ops) < r.maxBlockLen || delaySlot; addr += 4 {
		code := mem.Read32(addr, emu.ReadDebug)
		b.ops = append(b.ops, op{
			pc:   addr,
			code: code,
			exec: specialize(code, addr, pgxp),
		})

		if delaySlot {
			break
		}
		inst := r.decoder.Decode(code)
		if inst.IsBranch() {
			delaySlot = true
			continue
		}
		if inst.EndsBlock() {
			break
		}
		if physPage(addr+4) != physPage(pc) {
			break
		}
	}

	return b
}

// specialize returns a handler for code with its operands resolved. The
// common ALU, memory and branch forms get a dedicated closure; everything
// else goes through the interpreter's dispatch table.
func specialize(code, pc uint32, pgxp bool) emu.StepFunc {
	w := insts.Word(code)
	rs, rt, rd := w.Rs(), w.Rt(), w.Rd()

	switch w.Opcode() {
	case insts.PrimarySpecial:
		switch w.Funct() {
		case functSLL:
			sa := w.Sa()
			return func(c *emu.Core, _ uint32) {
				c.WriteGPR(rd, c.Regs.GPR.R[rt]<<sa)
			}
		case functADDU:
			return func(c *emu.Core, _ uint32) {
				c.WriteGPR(rd, c.Regs.GPR.R[rs]+c.Regs.GPR.R[rt])
			}
		case functOR:
			return func(c *emu.Core, _ uint32) {
				c.WriteGPR(rd, c.Regs.GPR.R[rs]|c.Regs.GPR.R[rt])
			}
		}

	case insts.PrimaryLUI:
		v := w.Imm() << 16
		return func(c *emu.Core, _ uint32) {
			c.WriteGPR(rt, v)
		}

	case insts.PrimaryADDIU:
		imm := w.ImmSE()
		return func(c *emu.Core, _ uint32) {
			c.WriteGPR(rt, c.Regs.GPR.R[rs]+imm)
		}

	case insts.PrimaryORI:
		imm := w.Imm()
		return func(c *emu.Core, _ uint32) {
			c.WriteGPR(rt, c.Regs.GPR.R[rs]|imm)
		}

	case insts.PrimaryANDI:
		imm := w.Imm()
		return func(c *emu.Core, _ uint32) {
			c.WriteGPR(rt, c.Regs.GPR.R[rs]&imm)
		}

	case insts.PrimaryBEQ:
		target := w.BranchTarget(pc + 4)
		return func(c *emu.Core, _ uint32) {
			if c.Regs.GPR.R[rs] == c.Regs.GPR.R[rt] {
				c.DelayedPCLoad(target, false)
			}
			c.MarkBranch()
		}

	case insts.PrimaryBNE:
		target := w.BranchTarget(pc + 4)
		return func(c *emu.Core, _ uint32) {
			if c.Regs.GPR.R[rs] != c.Regs.GPR.R[rt] {
				c.DelayedPCLoad(target, false)
			}
			c.MarkBranch()
		}

	// The geometry tracker observes memory traffic through the generic
	// handlers, so loads and stores are only specialized with it off.
	case insts.PrimaryLW:
		if pgxp {
			break
		}
		imm := w.ImmSE()
		return func(c *emu.Core, _ uint32) {
			addr := c.Regs.GPR.R[rs] + imm
			if addr&3 != 0 {
				c.RaiseAddressError(emu.ExcLoadAddressError, addr)
				return
			}
			c.DelayedLoad(rt, c.Memory().Read32(addr, emu.ReadData), 0)
		}

	case insts.PrimarySW:
		if pgxp {
			break
		}
		imm := w.ImmSE()
		return func(c *emu.Core, _ uint32) {
			addr := c.Regs.GPR.R[rs] + imm
			if addr&3 != 0 {
				c.RaiseAddressError(emu.ExcStoreAddressError, addr)
				return
			}
			if c.Regs.CP0[emu.CP0Status]&emu.StatusIsC != 0 {
				c.Cache().InvalidateLine(addr)
				return
			}
			c.Memory().Write32(addr, c.Regs.GPR.R[rt])
		}
	}

	return emu.Handler(code)
}
