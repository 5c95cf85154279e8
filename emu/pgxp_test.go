package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
)

type access struct {
	kind        string
	code, value uint32
	addr        uint32
}

type recordingTracker struct {
	accesses []access
}

func (t *recordingTracker) Load(code, value, addr uint32) {
	t.accesses = append(t.accesses, access{"load", code, value, addr})
}

func (t *recordingTracker) Store(code, value, addr uint32) {
	t.accesses = append(t.accesses, access{"store", code, value, addr})
}

func (t *recordingTracker) CopMove(code, value uint32) {
	t.accesses = append(t.accesses, access{"cop", code, value, 0})
}

var _ = Describe("Geometry tracking", func() {
	var (
		c       *emu.Core
		bus     *emu.Bus
		tracker *recordingTracker
		program []uint32
	)

	BeforeEach(func() {
		tracker = &recordingTracker{}
		c, bus = newMachine(emu.WithGeometryTracker(tracker))
		c.Regs.CP0[emu.CP0Status] |= emu.StatusCU2
		c.Regs.GPR.R[insts.T1] = 0x80020000
		c.Regs.GPR.R[insts.T2] = 0x1234
		load(bus, 0x80020000, 0xcafef00d)

		program = []uint32{
			insts.LW(insts.T0, insts.T1, 0),
			insts.SW(insts.T2, insts.T1, 4),
			insts.MTC2(insts.T2, 0),
		}
		load(bus, progBase, program...)
	})

	It("should stay quiet while the mode is zero", func() {
		step(c, 3)
		Expect(tracker.accesses).To(BeEmpty())
	})

	It("should report loads, stores and COP2 moves when enabled", func() {
		c.SetPGXPMode(1)
		step(c, 3)

		Expect(tracker.accesses).To(Equal([]access{
			{"load", program[0], 0xcafef00d, 0x80020000},
			{"store", program[1], 0x1234, 0x80020004},
			{"cop", program[2], 0x1234, 0},
		}))
		Expect(c.PGXPMode()).To(Equal(uint32(1)))
	})

	It("should start in the mode given as an option", func() {
		c, _ = newMachine(emu.WithGeometryTracker(tracker), emu.WithPGXPMode(2))
		Expect(c.PGXPMode()).To(Equal(uint32(2)))
	})
})
