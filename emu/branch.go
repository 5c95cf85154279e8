package emu

import "github.com/sarchlab/r3ksim/insts"

// branch queues a transfer to target after the delay slot.
func (c *Core) branch(target uint32, link bool) {
	c.DelayedPCLoad(target, link)
	c.MarkBranch()
}

// notTaken still puts the following instruction in a delay slot.
func (c *Core) notTaken() {
	c.MarkBranch()
}

// linkAddress is the return address of a call: the instruction after the
// delay slot.
func (c *Core) linkAddress() uint32 {
	return c.Regs.PC + 4
}

func opJ(c *Core, code uint32) {
	c.branch(insts.Word(code).JumpTarget(c.Regs.PC), false)
}

func opJAL(c *Core, code uint32) {
	c.setReg(RegRA, c.linkAddress())
	c.branch(insts.Word(code).JumpTarget(c.Regs.PC), true)
}

func opJR(c *Core, code uint32) {
	c.branch(c.reg(insts.Word(code).Rs()), false)
}

func opJALR(c *Core, code uint32) {
	w := insts.Word(code)
	target := c.reg(w.Rs())
	c.setReg(w.Rd(), c.linkAddress())
	c.branch(target, true)
}

func (c *Core) condBranch(code uint32, taken bool) {
	if taken {
		c.branch(insts.Word(code).BranchTarget(c.Regs.PC), false)
		return
	}
	c.notTaken()
}

func opBEQ(c *Core, code uint32) {
	w := insts.Word(code)
	c.condBranch(code, c.reg(w.Rs()) == c.reg(w.Rt()))
}

func opBNE(c *Core, code uint32) {
	w := insts.Word(code)
	c.condBranch(code, c.reg(w.Rs()) != c.reg(w.Rt()))
}

func opBLEZ(c *Core, code uint32) {
	c.condBranch(code, int32(c.reg(insts.Word(code).Rs())) <= 0)
}

func opBGTZ(c *Core, code uint32) {
	c.condBranch(code, int32(c.reg(insts.Word(code).Rs())) > 0)
}

// opRegImm covers BLTZ, BGEZ, BLTZAL and BGEZAL. Only bit 0 and bits 4:1
// of rt are decoded, so the undocumented encodings alias onto these four.
// The link register is written whether or not the branch is taken.
func opRegImm(c *Core, code uint32) {
	w := insts.Word(code)
	rt := w.Rt()
	s := int32(c.reg(w.Rs()))

	taken := s < 0
	if rt&1 != 0 {
		taken = s >= 0
	}

	link := rt&0x1e == 0x10
	if link {
		c.setReg(RegRA, c.linkAddress())
	}

	if taken {
		c.branch(w.BranchTarget(c.Regs.PC), link)
		return
	}
	c.notTaken()
}
