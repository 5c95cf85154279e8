package emu

import "github.com/sarchlab/r3ksim/insts"

// setReg writes the result of a non-load instruction. It wins over a load
// to the same register that would commit at the end of this instruction.
func (c *Core) setReg(reg, value uint32) {
	if reg == RegZero {
		return
	}
	c.CancelDelayedLoad(reg)
	c.Regs.GPR.R[reg] = value
}

// WriteGPR writes an instruction result to reg with the same hazard rules
// as the built-in handlers.
func (c *Core) WriteGPR(reg, value uint32) {
	c.setReg(reg, value)
}

func (c *Core) reg(r uint32) uint32 {
	return c.Regs.GPR.R[r]
}

func opSLL(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), c.reg(w.Rt())<<w.Sa())
}

func opSRL(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), c.reg(w.Rt())>>w.Sa())
}

func opSRA(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), uint32(int32(c.reg(w.Rt()))>>w.Sa()))
}

func opSLLV(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), c.reg(w.Rt())<<(c.reg(w.Rs())&31))
}

func opSRLV(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), c.reg(w.Rt())>>(c.reg(w.Rs())&31))
}

func opSRAV(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), uint32(int32(c.reg(w.Rt()))>>(c.reg(w.Rs())&31)))
}

func opSYSCALL(c *Core, _ uint32) {
	c.Raise(ExcSyscall)
}

func opBREAK(c *Core, _ uint32) {
	c.Raise(ExcBreak)
}

func opMFHI(c *Core, code uint32) {
	c.setReg(insts.Word(code).Rd(), c.Regs.GPR.HI())
}

func opMTHI(c *Core, code uint32) {
	c.Regs.GPR.R[RegHI] = c.reg(insts.Word(code).Rs())
}

func opMFLO(c *Core, code uint32) {
	c.setReg(insts.Word(code).Rd(), c.Regs.GPR.LO())
}

func opMTLO(c *Core, code uint32) {
	c.Regs.GPR.R[RegLO] = c.reg(insts.Word(code).Rs())
}

func opMULT(c *Core, code uint32) {
	w := insts.Word(code)
	p := uint64(int64(int32(c.reg(w.Rs()))) * int64(int32(c.reg(w.Rt()))))
	c.Regs.GPR.SetHILO(uint32(p>>32), uint32(p))
}

func opMULTU(c *Core, code uint32) {
	w := insts.Word(code)
	p := uint64(c.reg(w.Rs())) * uint64(c.reg(w.Rt()))
	c.Regs.GPR.SetHILO(uint32(p>>32), uint32(p))
}

func opDIV(c *Core, code uint32) {
	w := insts.Word(code)
	n := int32(c.reg(w.Rs()))
	d := int32(c.reg(w.Rt()))

	switch {
	case d == 0:
		lo := uint32(1)
		if n >= 0 {
			lo = 0xffffffff
		}
		c.Regs.GPR.SetHILO(uint32(n), lo)
	case n == -0x80000000 && d == -1:
		c.Regs.GPR.SetHILO(0, 0x80000000)
	default:
		c.Regs.GPR.SetHILO(uint32(n%d), uint32(n/d))
	}
}

func opDIVU(c *Core, code uint32) {
	w := insts.Word(code)
	n := c.reg(w.Rs())
	d := c.reg(w.Rt())

	if d == 0 {
		c.Regs.GPR.SetHILO(n, 0xffffffff)
		return
	}
	c.Regs.GPR.SetHILO(n%d, n/d)
}

func opADD(c *Core, code uint32) {
	w := insts.Word(code)
	a, b := c.reg(w.Rs()), c.reg(w.Rt())
	r := a + b
	if (a^r)&(b^r)&0x80000000 != 0 {
		c.Raise(ExcArithmeticOverflow)
		return
	}
	c.setReg(w.Rd(), r)
}

func opADDU(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), c.reg(w.Rs())+c.reg(w.Rt()))
}

func opSUB(c *Core, code uint32) {
	w := insts.Word(code)
	a, b := c.reg(w.Rs()), c.reg(w.Rt())
	r := a - b
	if (a^b)&(a^r)&0x80000000 != 0 {
		c.Raise(ExcArithmeticOverflow)
		return
	}
	c.setReg(w.Rd(), r)
}

func opSUBU(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), c.reg(w.Rs())-c.reg(w.Rt()))
}

func opAND(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), c.reg(w.Rs())&c.reg(w.Rt()))
}

func opOR(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), c.reg(w.Rs())|c.reg(w.Rt()))
}

func opXOR(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), c.reg(w.Rs())^c.reg(w.Rt()))
}

func opNOR(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), ^(c.reg(w.Rs()) | c.reg(w.Rt())))
}

func opSLT(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), boolToWord(int32(c.reg(w.Rs())) < int32(c.reg(w.Rt()))))
}

func opSLTU(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rd(), boolToWord(c.reg(w.Rs()) < c.reg(w.Rt())))
}

func opADDI(c *Core, code uint32) {
	w := insts.Word(code)
	a, b := c.reg(w.Rs()), w.ImmSE()
	r := a + b
	if (a^r)&(b^r)&0x80000000 != 0 {
		c.Raise(ExcArithmeticOverflow)
		return
	}
	c.setReg(w.Rt(), r)
}

func opADDIU(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rt(), c.reg(w.Rs())+w.ImmSE())
}

func opSLTI(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rt(), boolToWord(int32(c.reg(w.Rs())) < int32(w.ImmSE())))
}

func opSLTIU(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rt(), boolToWord(c.reg(w.Rs()) < w.ImmSE()))
}

func opANDI(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rt(), c.reg(w.Rs())&w.Imm())
}

func opORI(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rt(), c.reg(w.Rs())|w.Imm())
}

func opXORI(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rt(), c.reg(w.Rs())^w.Imm())
}

func opLUI(c *Core, code uint32) {
	w := insts.Word(code)
	c.setReg(w.Rt(), w.Imm()<<16)
}

func opReserved(c *Core, _ uint32) {
	c.Raise(ExcReservedInstruction)
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
