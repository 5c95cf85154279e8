package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
)

var _ = Describe("Exceptions", func() {
	var (
		c   *emu.Core
		bus *emu.Bus
	)

	BeforeEach(func() {
		c, bus = newMachine()
		c.Regs.CP0[emu.CP0Status] = emu.StatusIEc
	})

	It("should dispatch SYSCALL to the general vector", func() {
		load(bus, progBase, insts.SYSCALL(0))

		step(c, 1)
		Expect(c.Regs.PC).To(Equal(uint32(emu.VectorGeneral)))
		Expect(c.Regs.CP0[emu.CP0EPC]).To(Equal(uint32(progBase)))
		Expect(causeCode(c)).To(Equal(emu.ExcSyscall))
		Expect(c.Regs.CP0[emu.CP0Cause] & emu.CauseBD).To(BeZero())
		Expect(c.InISR()).To(BeTrue())
		Expect(c.Stats().Exceptions).To(Equal(uint64(1)))
	})

	It("should push the KU/IE stack", func() {
		c.Regs.CP0[emu.CP0Status] = 0x0000000d
		load(bus, progBase, insts.BREAK(0))

		step(c, 1)
		Expect(causeCode(c)).To(Equal(emu.ExcBreak))
		Expect(c.Regs.CP0[emu.CP0Status] & 0x3f).To(Equal(uint32(0x34)))
	})

	It("should use the boot vector when BEV is set", func() {
		c.Regs.CP0[emu.CP0Status] |= emu.StatusBEV
		load(bus, progBase, insts.SYSCALL(0))

		step(c, 1)
		Expect(c.Regs.PC).To(Equal(uint32(emu.VectorBoot)))
	})

	It("should preserve the software interrupt bits of Cause", func() {
		c.Regs.CP0[emu.CP0Cause] = 0x0000037c
		load(bus, progBase, insts.SYSCALL(0))

		step(c, 1)
		Expect(c.Regs.CP0[emu.CP0Cause]).To(Equal(uint32(0x300 | 8<<2)))
	})

	Describe("branch delay indicator", func() {
		It("should set BD and point EPC at the branch for a delay slot fault", func() {
			load(bus, progBase,
				insts.BEQ(insts.R0, insts.R0, 8),
				insts.SYSCALL(0),
			)

			step(c, 2)
			Expect(c.Regs.CP0[emu.CP0Cause] & emu.CauseBD).NotTo(BeZero())
			Expect(c.Regs.CP0[emu.CP0EPC]).To(Equal(uint32(progBase)))
			Expect(c.Regs.PC).To(Equal(uint32(emu.VectorGeneral)))
		})

		It("should clear BD outside a delay slot", func() {
			c.Regs.CP0[emu.CP0Cause] = emu.CauseBD
			load(bus, progBase,
				insts.NOP(),
				insts.SYSCALL(0),
			)

			step(c, 2)
			Expect(c.Regs.CP0[emu.CP0Cause] & emu.CauseBD).To(BeZero())
			Expect(c.Regs.CP0[emu.CP0EPC]).To(Equal(uint32(progBase + 4)))
		})

		It("should cancel the pending branch", func() {
			load(bus, progBase,
				insts.J(progBase+0x200),
				insts.BREAK(0),
			)
			load(bus, emu.VectorGeneral, insts.NOP())

			step(c, 3)
			Expect(c.Regs.PC).To(Equal(uint32(emu.VectorGeneral + 4)))
		})
	})

	Describe("faults", func() {
		It("should not write the destination on overflow", func() {
			c.Regs.GPR.R[insts.T1] = 0x7fffffff
			c.Regs.GPR.R[insts.T0] = 0x55
			load(bus, progBase, insts.ADDI(insts.T0, insts.T1, 1))

			step(c, 1)
			Expect(causeCode(c)).To(Equal(emu.ExcArithmeticOverflow))
			Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(0x55)))
		})

		It("should trap SUB overflow but not SUBU", func() {
			c.Regs.GPR.R[insts.T1] = 0x80000000
			c.Regs.GPR.R[insts.T2] = 1
			load(bus, progBase,
				insts.SUBU(insts.T3, insts.T1, insts.T2),
				insts.SUB(insts.T0, insts.T1, insts.T2),
			)

			step(c, 1)
			Expect(c.Regs.GPR.R[insts.T3]).To(Equal(uint32(0x7fffffff)))
			step(c, 1)
			Expect(causeCode(c)).To(Equal(emu.ExcArithmeticOverflow))
			Expect(c.Regs.GPR.R[insts.T0]).To(BeZero())
		})

		It("should record BadVAddr on a misaligned load", func() {
			c.Regs.GPR.R[insts.T1] = 0x80020000
			load(bus, progBase, insts.LW(insts.T0, insts.T1, 2))

			step(c, 1)
			Expect(causeCode(c)).To(Equal(emu.ExcLoadAddressError))
			Expect(c.Regs.CP0[emu.CP0BadVAddr]).To(Equal(uint32(0x80020002)))
			Expect(c.PendingLoad().Active).To(BeFalse())
		})

		It("should raise a store address error on a misaligned store", func() {
			c.Regs.GPR.R[insts.T1] = 0x80020000
			load(bus, progBase, insts.SH(insts.T0, insts.T1, 1))

			step(c, 1)
			Expect(causeCode(c)).To(Equal(emu.ExcStoreAddressError))
			Expect(c.Regs.CP0[emu.CP0BadVAddr]).To(Equal(uint32(0x80020001)))
		})

		It("should fault on a misaligned fetch", func() {
			c.Regs.GPR.R[insts.T1] = progBase + 0x102
			load(bus, progBase,
				insts.JR(insts.T1),
				insts.NOP(),
			)

			step(c, 3)
			Expect(causeCode(c)).To(Equal(emu.ExcLoadAddressError))
			Expect(c.Regs.CP0[emu.CP0EPC]).To(Equal(uint32(progBase + 0x102)))
			Expect(c.Regs.CP0[emu.CP0BadVAddr]).To(Equal(uint32(progBase + 0x102)))
			Expect(c.Regs.PC).To(Equal(uint32(emu.VectorGeneral)))
		})

		It("should raise reserved instruction for unknown opcodes", func() {
			load(bus, progBase, 0xfc000000)

			step(c, 1)
			Expect(causeCode(c)).To(Equal(emu.ExcReservedInstruction))
		})

		It("should report the coprocessor number for COP2 without CU2", func() {
			load(bus, progBase, insts.MFC2(insts.T0, 3))

			step(c, 1)
			Expect(causeCode(c)).To(Equal(emu.ExcCoprocessorUnusable))
			Expect((c.Regs.CP0[emu.CP0Cause] >> 28) & 3).To(Equal(uint32(2)))
		})

		It("should report COP1 as unusable", func() {
			load(bus, progBase, 0x44000000)

			step(c, 1)
			Expect(causeCode(c)).To(Equal(emu.ExcCoprocessorUnusable))
			Expect((c.Regs.CP0[emu.CP0Cause] >> 28) & 3).To(Equal(uint32(1)))
		})
	})

	Describe("RFE", func() {
		It("should pop the KU/IE stack", func() {
			c.Regs.CP0[emu.CP0Status] = 0x3c
			load(bus, progBase, insts.RFE())

			step(c, 1)
			Expect(c.Regs.CP0[emu.CP0Status]).To(Equal(uint32(0x3f)))
			Expect(c.InISR()).To(BeFalse())
		})

		It("should round-trip through a handler", func() {
			load(bus, progBase,
				insts.SYSCALL(0),
				insts.ADDIU(insts.T0, insts.R0, 9),
			)
			load(bus, emu.VectorGeneral,
				insts.MFC0(insts.K0, emu.CP0EPC),
				insts.NOP(),
				insts.ADDIU(insts.K0, insts.K0, 4),
				insts.JR(insts.K0),
				insts.RFE(),
			)

			step(c, 6)
			Expect(c.Regs.PC).To(Equal(uint32(progBase + 4)))
			Expect(c.Regs.CP0[emu.CP0Status] & 0x3f).To(Equal(uint32(emu.StatusIEc)))

			step(c, 1)
			Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(9)))
		})
	})

	Describe("software interrupts", func() {
		It("should fire when MTC0 raises an enabled software bit", func() {
			c.Regs.CP0[emu.CP0Status] = emu.StatusIEc | 0x100
			c.Regs.GPR.R[insts.T0] = 0x100
			load(bus, progBase, insts.MTC0(insts.T0, emu.CP0Cause))

			step(c, 1)
			Expect(c.Regs.PC).To(Equal(uint32(emu.VectorGeneral)))
			Expect(causeCode(c)).To(Equal(emu.ExcInterrupt))
			Expect(c.Regs.CP0[emu.CP0EPC]).To(Equal(uint32(progBase + 4)))
			Expect(c.Stats().Interrupts).To(Equal(uint64(1)))
		})

		It("should resume at a pending branch target", func() {
			c.Regs.CP0[emu.CP0Status] = emu.StatusIEc | 0x200
			c.Regs.GPR.R[insts.T0] = 0x200
			load(bus, progBase,
				insts.J(progBase+0x300),
				insts.MTC0(insts.T0, emu.CP0Cause),
			)

			step(c, 2)
			Expect(c.Regs.CP0[emu.CP0EPC]).To(Equal(uint32(progBase + 0x300)))
			Expect(c.Regs.PC).To(Equal(uint32(emu.VectorGeneral)))
		})

		It("should stay pending while interrupts are disabled", func() {
			c.Regs.CP0[emu.CP0Status] = 0x100
			c.Regs.GPR.R[insts.T0] = 0x100
			load(bus, progBase, insts.MTC0(insts.T0, emu.CP0Cause))

			step(c, 1)
			Expect(c.Regs.PC).To(Equal(uint32(progBase + 4)))
			Expect(c.Regs.CP0[emu.CP0Cause] & 0x300).To(Equal(uint32(0x100)))
		})
	})

	It("should name exception codes", func() {
		Expect(emu.ExcSyscall.String()).To(Equal("Syscall"))
		Expect(emu.Exception(3).String()).To(Equal("Unknown"))
	})
})
