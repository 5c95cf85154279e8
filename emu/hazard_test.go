package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
)

var _ = Describe("Hazards", func() {
	var (
		c   *emu.Core
		bus *emu.Bus
	)

	BeforeEach(func() {
		c, bus = newMachine()
		c.Regs.GPR.R[insts.T1] = 0x80020000
		load(bus, 0x80020000, 0xdeadbeef, 0x44332211, 0x88776655)
	})

	Describe("load delay", func() {
		It("should show the old value to the next instruction only", func() {
			c.Regs.GPR.R[insts.T0] = 1
			load(bus, progBase,
				insts.LW(insts.T0, insts.T1, 0),
				insts.ADDU(insts.T2, insts.T0, insts.R0),
				insts.ADDU(insts.T3, insts.T0, insts.R0),
			)

			step(c, 1)
			Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(1)))
			Expect(c.PendingLoad().Active).To(BeTrue())

			step(c, 2)
			Expect(c.Regs.GPR.R[insts.T2]).To(Equal(uint32(1)))
			Expect(c.Regs.GPR.R[insts.T3]).To(Equal(uint32(0xdeadbeef)))
			Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(0xdeadbeef)))
		})

		It("should let an ALU write in the delay slot win", func() {
			load(bus, progBase,
				insts.LW(insts.T0, insts.T1, 0),
				insts.ADDIU(insts.T0, insts.R0, 7),
				insts.NOP(),
			)

			step(c, 3)
			Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(7)))
		})

		It("should commit back-to-back loads in order", func() {
			load(bus, progBase,
				insts.LW(insts.T0, insts.T1, 0),
				insts.LW(insts.T0, insts.T1, 4),
				insts.ADDU(insts.T2, insts.T0, insts.R0),
				insts.NOP(),
			)

			step(c, 4)
			Expect(c.Regs.GPR.R[insts.T2]).To(Equal(uint32(0xdeadbeef)))
			Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(0x44332211)))
		})

		It("should merge an LWR/LWL pair into an unaligned word", func() {
			c.Regs.GPR.R[insts.T0] = 0xaaaaaaaa
			load(bus, progBase,
				insts.LWR(insts.T0, insts.T1, 5),
				insts.LWL(insts.T0, insts.T1, 8),
				insts.NOP(),
			)

			step(c, 3)
			Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(0x55443322)))
		})

		It("should sign- and zero-extend sub-word loads", func() {
			load(bus, progBase,
				insts.LB(insts.T2, insts.T1, 3),
				insts.LBU(insts.T3, insts.T1, 3),
				insts.LH(insts.T4, insts.T1, 2),
				insts.LHU(insts.T5, insts.T1, 2),
				insts.NOP(),
			)

			step(c, 5)
			Expect(c.Regs.GPR.R[insts.T2]).To(Equal(uint32(0xffffffde)))
			Expect(c.Regs.GPR.R[insts.T3]).To(Equal(uint32(0xde)))
			Expect(c.Regs.GPR.R[insts.T4]).To(Equal(uint32(0xffffdead)))
			Expect(c.Regs.GPR.R[insts.T5]).To(Equal(uint32(0xdead)))
		})

		It("should panic on a load to an out-of-range register", func() {
			Expect(func() { c.DelayedLoad(32, 1, 0) }).To(Panic())
		})
	})

	Describe("branch delay", func() {
		It("should execute the delay slot before the target", func() {
			load(bus, progBase,
				insts.BEQ(insts.R0, insts.R0, 2),
				insts.ADDIU(insts.T0, insts.R0, 1),
				insts.ADDIU(insts.T2, insts.R0, 1),
				insts.ADDIU(insts.T3, insts.R0, 1),
			)

			step(c, 1)
			Expect(c.Regs.PC).To(Equal(uint32(progBase + 4)))

			var inSlot bool
			c.Step(func(c *emu.Core, code uint32) {
				inSlot = c.InDelaySlot()
				emu.Interpret(c, code)
			})
			Expect(inSlot).To(BeTrue())
			Expect(c.Regs.PC).To(Equal(uint32(progBase + 12)))

			step(c, 1)
			Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(1)))
			Expect(c.Regs.GPR.R[insts.T2]).To(BeZero())
			Expect(c.Regs.GPR.R[insts.T3]).To(Equal(uint32(1)))
		})

		It("should still mark the delay slot of a branch not taken", func() {
			load(bus, progBase,
				insts.BNE(insts.R0, insts.R0, 8),
				insts.NOP(),
			)

			step(c, 1)
			var inSlot bool
			c.Step(func(c *emu.Core, code uint32) {
				inSlot = c.InDelaySlot()
			})
			Expect(inSlot).To(BeTrue())
			Expect(c.Regs.PC).To(Equal(uint32(progBase + 8)))
		})

		It("should link JAL past the delay slot", func() {
			load(bus, progBase,
				insts.JAL(progBase+0x100),
				insts.NOP(),
			)

			step(c, 2)
			Expect(c.Regs.PC).To(Equal(uint32(progBase + 0x100)))
			Expect(c.Regs.GPR.R[insts.RA]).To(Equal(uint32(progBase + 8)))
			Expect(c.Stats().Calls).To(Equal(uint64(1)))
		})

		It("should read the JALR target before writing the link", func() {
			c.Regs.GPR.R[insts.T0] = progBase + 0x40
			load(bus, progBase,
				insts.JALR(insts.T0, insts.T0),
				insts.NOP(),
			)

			step(c, 2)
			Expect(c.Regs.PC).To(Equal(uint32(progBase + 0x40)))
			Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(progBase + 8)))
		})

		It("should link BGEZAL even when not taken", func() {
			c.Regs.GPR.R[insts.T0] = 0xffffffff
			load(bus, progBase,
				insts.BGEZAL(insts.T0, 4),
				insts.NOP(),
			)

			step(c, 2)
			Expect(c.Regs.PC).To(Equal(uint32(progBase + 8)))
			Expect(c.Regs.GPR.R[insts.RA]).To(Equal(uint32(progBase + 8)))
		})

		It("should resolve a load followed by a jump in order", func() {
			load(bus, progBase,
				insts.LW(insts.T0, insts.T1, 0),
				insts.J(progBase+0x80),
				insts.ADDU(insts.T2, insts.T0, insts.R0),
			)

			step(c, 2)
			Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(0xdeadbeef)))
			step(c, 1)
			Expect(c.Regs.GPR.R[insts.T2]).To(Equal(uint32(0xdeadbeef)))
			Expect(c.Regs.PC).To(Equal(uint32(progBase + 0x80)))
		})
	})
})
