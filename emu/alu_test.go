package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
)

var _ = Describe("ALU", func() {
	var (
		c   *emu.Core
		bus *emu.Bus
	)

	BeforeEach(func() {
		c, bus = newMachine()
	})

	run := func(code uint32, rs, rt uint32) {
		c.Regs.PC = progBase
		c.Regs.GPR.R[insts.T1] = rs
		c.Regs.GPR.R[insts.T2] = rt
		load(bus, progBase, code)
		c.Clear(progBase, 4)
		step(c, 1)
	}

	hilo := func() (uint32, uint32) {
		return c.Regs.GPR.HI(), c.Regs.GPR.LO()
	}

	DescribeTable("DIV",
		func(n, d, hi, lo uint32) {
			run(insts.DIV(insts.T1, insts.T2), n, d)
			gotHI, gotLO := hilo()
			Expect(gotHI).To(Equal(hi))
			Expect(gotLO).To(Equal(lo))
		},
		Entry("positive", uint32(7), uint32(2), uint32(1), uint32(3)),
		Entry("negative dividend", uint32(0xfffffff9), uint32(2), uint32(0xffffffff), uint32(0xfffffffd)),
		Entry("divide zero by zero", uint32(0), uint32(0), uint32(0), uint32(0xffffffff)),
		Entry("negative by zero", uint32(0xfffffffb), uint32(0), uint32(0xfffffffb), uint32(1)),
		Entry("overflow", uint32(0x80000000), uint32(0xffffffff), uint32(0), uint32(0x80000000)),
	)

	DescribeTable("DIVU",
		func(n, d, hi, lo uint32) {
			run(insts.DIVU(insts.T1, insts.T2), n, d)
			gotHI, gotLO := hilo()
			Expect(gotHI).To(Equal(hi))
			Expect(gotLO).To(Equal(lo))
		},
		Entry("regular", uint32(0xfffffff9), uint32(2), uint32(1), uint32(0x7ffffffc)),
		Entry("by zero", uint32(1234), uint32(0), uint32(1234), uint32(0xffffffff)),
	)

	It("should produce the signed and unsigned 64-bit products", func() {
		run(insts.MULT(insts.T1, insts.T2), 0xffffffff, 5)
		hi, lo := hilo()
		Expect(hi).To(Equal(uint32(0xffffffff)))
		Expect(lo).To(Equal(uint32(0xfffffffb)))

		run(insts.MULTU(insts.T1, insts.T2), 0xffffffff, 5)
		hi, lo = hilo()
		Expect(hi).To(Equal(uint32(4)))
		Expect(lo).To(Equal(uint32(0xfffffffb)))
	})

	It("should move HI and LO immediately", func() {
		c.Regs.GPR.SetHILO(0x11, 0x22)
		load(bus, progBase, insts.MFHI(insts.T0), insts.MFLO(insts.T3))
		step(c, 2)
		Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(0x11)))
		Expect(c.Regs.GPR.R[insts.T3]).To(Equal(uint32(0x22)))
	})

	DescribeTable("three-register operations",
		func(code, rs, rt, want uint32) {
			run(code, rs, rt)
			Expect(c.Regs.GPR.R[insts.T0]).To(Equal(want))
		},
		Entry("ADDU wraps", insts.ADDU(insts.T0, insts.T1, insts.T2), uint32(0xffffffff), uint32(2), uint32(1)),
		Entry("AND", insts.AND(insts.T0, insts.T1, insts.T2), uint32(0xf0f0), uint32(0xff00), uint32(0xf000)),
		Entry("NOR", insts.NOR(insts.T0, insts.T1, insts.T2), uint32(0xf0f0f0f0), uint32(0x0f0f0000), uint32(0x00000f0f)),
		Entry("SLT signed", insts.SLT(insts.T0, insts.T1, insts.T2), uint32(0xffffffff), uint32(1), uint32(1)),
		Entry("SLTU unsigned", insts.SLTU(insts.T0, insts.T1, insts.T2), uint32(0xffffffff), uint32(1), uint32(0)),
		Entry("SRAV masks the amount", insts.SRAV(insts.T0, insts.T2, insts.T1), uint32(0x24), uint32(0x80000000), uint32(0xf8000000)),
		Entry("SLLV", insts.SLLV(insts.T0, insts.T2, insts.T1), uint32(4), uint32(0x0000000f), uint32(0xf0)),
	)

	It("should shift right arithmetically", func() {
		run(insts.SRA(insts.T0, insts.T2, 4), 0, 0x80000000)
		Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(0xf8000000)))

		run(insts.SRL(insts.T0, insts.T2, 4), 0, 0x80000000)
		Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(0x08000000)))
	})

	It("should sign-extend the SLTIU immediate and compare unsigned", func() {
		run(insts.SLTIU(insts.T0, insts.T1, -1), 0xfffffffe, 0)
		Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(1)))

		run(insts.SLTI(insts.T0, insts.T1, -1), 0xfffffffe, 0)
		Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(1)))

		run(insts.SLTIU(insts.T0, insts.T1, 1), 0xfffffffe, 0)
		Expect(c.Regs.GPR.R[insts.T0]).To(BeZero())
	})

	It("should zero-extend logical immediates", func() {
		run(insts.ORI(insts.T0, insts.T1, 0x8000), 0x10000, 0)
		Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(0x18000)))

		run(insts.XORI(insts.T0, insts.T1, 0xffff), 0xffffffff, 0)
		Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(0xffff0000)))
	})

	It("should build a constant with LUI and ORI", func() {
		load(bus, progBase,
			insts.LUI(insts.T0, 0x1234),
			insts.ORI(insts.T0, insts.T0, 0x5678),
		)
		step(c, 2)
		Expect(c.Regs.GPR.R[insts.T0]).To(Equal(uint32(0x12345678)))
	})
})
