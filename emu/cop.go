package emu

import "github.com/sarchlab/r3ksim/insts"

// COP0 rs field values.
const (
	cop0MF = 0x00
	cop0MT = 0x04
	cop0CO = 0x10

	cop0FunctRFE = 0x10
)

// COP2 rs field values.
const (
	cop2MF = 0x00
	cop2CF = 0x02
	cop2MT = 0x04
	cop2CT = 0x06
)

func opCOP0(c *Core, code uint32) {
	w := insts.Word(code)
	switch rs := w.Rs(); {
	case rs == cop0MF:
		c.DelayedLoad(w.Rt(), c.Regs.CP0[w.Rd()], 0)
	case rs == cop0MT:
		c.writeCP0(w.Rd(), c.reg(w.Rt()))
	case rs&cop0CO != 0 && w.Funct() == cop0FunctRFE:
		c.returnFromException()
	default:
		c.Raise(ExcReservedInstruction)
	}
}

// writeCP0 handles MTC0. Only the software interrupt bits of Cause are
// writable; Status and Cause writes may unmask a pending software
// interrupt.
func (c *Core) writeCP0(reg, value uint32) {
	cp0 := &c.Regs.CP0
	switch reg {
	case CP0Cause:
		cp0[CP0Cause] = cp0[CP0Cause]&^causeSWMask | value&causeSWMask
		c.testSoftwareInterrupt()
	case CP0Status:
		cp0[CP0Status] = value
		c.testSoftwareInterrupt()
	case CP0PRid:
	default:
		cp0[reg] = value
	}
}

func (c *Core) cop2Usable() bool {
	if c.Regs.CP0[CP0Status]&StatusCU2 != 0 {
		return true
	}
	c.RaiseCoprocessorUnusable(2)
	return false
}

func opCOP2(c *Core, code uint32) {
	if !c.cop2Usable() {
		return
	}

	w := insts.Word(code)
	if code&(1<<25) != 0 {
		c.gte.Command(&c.Regs, code)
		return
	}

	switch w.Rs() {
	case cop2MF:
		v := c.gte.ReadData(&c.Regs, w.Rd())
		c.trackCopMove(code, v)
		c.DelayedLoad(w.Rt(), v, 0)
	case cop2CF:
		v := c.gte.ReadControl(&c.Regs, w.Rd())
		c.trackCopMove(code, v)
		c.DelayedLoad(w.Rt(), v, 0)
	case cop2MT:
		v := c.reg(w.Rt())
		c.trackCopMove(code, v)
		c.gte.WriteData(&c.Regs, w.Rd(), v)
	case cop2CT:
		v := c.reg(w.Rt())
		c.trackCopMove(code, v)
		c.gte.WriteControl(&c.Regs, w.Rd(), v)
	default:
		c.Raise(ExcReservedInstruction)
	}
}

func (c *Core) trackCopMove(code, value uint32) {
	if c.pgxpMode != 0 && c.tracker != nil {
		c.tracker.CopMove(code, value)
	}
}

func opLWC2(c *Core, code uint32) {
	if !c.cop2Usable() {
		return
	}
	addr := c.effectiveAddress(code)
	if addr&3 != 0 {
		c.RaiseAddressError(ExcLoadAddressError, addr)
		return
	}
	v := c.mem.Read32(addr, ReadData)
	if c.pgxpMode != 0 && c.tracker != nil {
		c.tracker.Load(code, v, addr)
	}
	c.gte.WriteData(&c.Regs, insts.Word(code).Rt(), v)
}

func opSWC2(c *Core, code uint32) {
	if !c.cop2Usable() {
		return
	}
	addr := c.effectiveAddress(code)
	if addr&3 != 0 {
		c.RaiseAddressError(ExcStoreAddressError, addr)
		return
	}
	v := c.gte.ReadData(&c.Regs, insts.Word(code).Rt())
	c.trackStore(code, addr, v)
	if c.cacheIsolated() {
		c.isolatedStore(addr)
		return
	}
	c.mem.Write32(addr, v)
}

// opCopUnusable covers COP1, COP3 and their load/store forms, which have
// no coprocessor behind them.
func opCopUnusable(c *Core, code uint32) {
	c.RaiseCoprocessorUnusable((code >> 26) & 3)
}
