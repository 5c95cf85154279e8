package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
	})

	It("should discard writes to register 0", func() {
		regFile.WriteReg(emu.RegZero, 0xdeadbeef)
		Expect(regFile.ReadReg(emu.RegZero)).To(BeZero())
	})

	It("should read back every other register", func() {
		for r := uint32(1); r < emu.NumGPR; r++ {
			regFile.WriteReg(r, r*0x01010101)
			Expect(regFile.ReadReg(r)).To(Equal(r * 0x01010101))
		}
	})

	It("should keep HI and LO past the architectural registers", func() {
		regFile.SetHILO(1, 2)
		Expect(regFile.HI()).To(Equal(uint32(1)))
		Expect(regFile.LO()).To(Equal(uint32(2)))
		Expect(regFile.R[emu.RegHI]).To(Equal(uint32(1)))
		Expect(regFile.R[emu.RegLO]).To(Equal(uint32(2)))
	})

	It("should panic on an out-of-range index", func() {
		Expect(func() { regFile.WriteReg(emu.NumGPR, 1) }).To(Panic())
	})

	Describe("width helpers", func() {
		It("should extract and sign-extend bytes and halves", func() {
			v := uint32(0x80ff7f01)
			Expect(emu.Byte(v, 0)).To(Equal(uint8(0x01)))
			Expect(emu.Byte(v, 3)).To(Equal(uint8(0x80)))
			Expect(emu.SignedByte(v, 3)).To(Equal(uint32(0xffffff80)))
			Expect(emu.SignedByte(v, 1)).To(Equal(uint32(0x7f)))
			Expect(emu.Half(v, 1)).To(Equal(uint16(0x80ff)))
			Expect(emu.SignedHalf(v, 1)).To(Equal(uint32(0xffff80ff)))
			Expect(emu.SignedHalf(v, 0)).To(Equal(uint32(0x7f01)))
		})

		It("should replace bytes and halves", func() {
			Expect(emu.SetByte(0x11223344, 2, 0xaa)).To(Equal(uint32(0x11aa3344)))
			Expect(emu.SetHalf(0x11223344, 0, 0xbeef)).To(Equal(uint32(0x1122beef)))
		})
	})

	Describe("zero register in execution", func() {
		It("should stay zero after ALU writes and loads", func() {
			c, bus := newMachine()
			load(bus, progBase,
				insts.ADDIU(insts.R0, insts.R0, 5),
				insts.LUI(insts.R0, 0x1234),
				insts.LW(insts.R0, insts.SP, 0),
				insts.NOP(),
				insts.NOP(),
			)
			c.Regs.GPR.R[insts.SP] = 0x80020000
			load(bus, 0x80020000, 0xffffffff)

			for i := 0; i < 5; i++ {
				step(c, 1)
				Expect(c.Regs.GPR.ReadReg(emu.RegZero)).To(BeZero())
			}
		})
	})
})
