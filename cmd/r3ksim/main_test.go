package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
)

const entry = 0x80010000

func writePSEXE(dir string, words ...uint32) string {
	text := insts.Bytes(words...)
	raw := make([]byte, 0x800+len(text))
	copy(raw, "PS-X EXE")
	binary.LittleEndian.PutUint32(raw[0x10:], entry)
	binary.LittleEndian.PutUint32(raw[0x18:], entry)
	binary.LittleEndian.PutUint32(raw[0x1c:], uint32(len(text)))
	copy(raw[0x800:], text)

	path := filepath.Join(dir, "prog.exe")
	Expect(os.WriteFile(path, raw, 0644)).To(Succeed())
	return path
}

var _ = Describe("r3ksim", func() {
	var (
		dir            string
		stdout, stderr *bytes.Buffer
		program        string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		program = writePSEXE(dir,
			insts.LUI(insts.T0, 0x1234),
			insts.ORI(insts.T0, insts.T0, 0x5678),
			insts.BEQ(insts.R0, insts.R0, -1),
			insts.NOP(),
		)
	})

	DescribeTable("should run a program on",
		func(name string) {
			code := run([]string{"-backend", name, "-budget", "10", "-dump", program}, stdout, stderr)
			Expect(code).To(Equal(0), stderr.String())
			Expect(stdout.String()).To(ContainSubstring("t0=12345678"))
			Expect(stdout.String()).To(ContainSubstring("pc=80010008"))
			Expect(stderr.String()).To(ContainSubstring("instructions=10"))
		},
		Entry("the interpreter", "interpreter"),
		Entry("the recompiler", "recompiler"),
	)

	It("should write a register snapshot", func() {
		snap := filepath.Join(dir, "regs.bin")
		Expect(run([]string{"-budget", "2", "-snapshot", snap, program}, stdout, stderr)).To(Equal(0))

		blob, err := os.ReadFile(snap)
		Expect(err).NotTo(HaveOccurred())
		Expect(blob).To(HaveLen(emu.SnapshotSize))

		core := emu.NewCore()
		Expect(core.Restore(blob)).To(Succeed())
		Expect(core.Regs.GPR.R[insts.T0]).To(Equal(uint32(0x12345678)))
		Expect(core.Regs.PC).To(Equal(uint32(0x80010008)))
	})

	It("should copy console output to stdout", func() {
		program = writePSEXE(dir,
			insts.ADDIU(insts.T1, insts.R0, 0x3c),
			insts.ADDIU(insts.A0, insts.R0, 'X'),
			insts.J(0xa0),
			insts.NOP(),
		)

		Expect(run([]string{"-budget", "6", program}, stdout, stderr)).To(Equal(0))
		Expect(stdout.String()).To(Equal("X"))
	})

	It("should stay silent with -tty=false", func() {
		program = writePSEXE(dir,
			insts.ADDIU(insts.T1, insts.R0, 0x3c),
			insts.ADDIU(insts.A0, insts.R0, 'X'),
			insts.J(0xa0),
			insts.NOP(),
		)

		Expect(run([]string{"-tty=false", "-budget", "6", program}, stdout, stderr)).To(Equal(0))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("should log kernel calls with -kernel-log", func() {
		program = writePSEXE(dir,
			insts.ADDIU(insts.T1, insts.R0, 0x3c),
			insts.ADDIU(insts.A0, insts.R0, 'X'),
			insts.J(0xa0),
			insts.NOP(),
		)

		Expect(run([]string{"-tty=false", "-kernel-log", "-budget", "6", program}, stdout, stderr)).To(Equal(0))
		Expect(stdout.String()).To(BeEmpty())
		Expect(stderr.String()).To(ContainSubstring("A0(3c:putchar)"))
	})

	It("should apply a timing configuration", func() {
		config := filepath.Join(dir, "timing.json")
		Expect(os.WriteFile(config, []byte(`{"cycle_bias": 3}`), 0644)).To(Succeed())

		Expect(run([]string{"-config", config, "-budget", "4", program}, stdout, stderr)).To(Equal(0))
		Expect(stderr.String()).To(ContainSubstring("cycles=12"))
	})

	Context("with bad input", func() {
		It("should require something to run", func() {
			Expect(run(nil, stdout, stderr)).To(Equal(2))
			Expect(stderr.String()).To(ContainSubstring("nothing to run"))
		})

		It("should reject an unknown backend", func() {
			Expect(run([]string{"-backend", "jit", program}, stdout, stderr)).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("unknown backend"))
		})

		It("should reject a BIOS of the wrong size", func() {
			bios := filepath.Join(dir, "bios.bin")
			Expect(os.WriteFile(bios, make([]byte, 1024), 0644)).To(Succeed())

			Expect(run([]string{"-bios", bios, program}, stdout, stderr)).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("invalid BIOS size"))
		})

		It("should report a missing program", func() {
			Expect(run([]string{filepath.Join(dir, "missing.exe")}, stdout, stderr)).To(Equal(1))
			Expect(stderr.String()).To(ContainSubstring("failed to open executable"))
		})
	})

	Context("with a BIOS", func() {
		It("should side-load the program at the shell entry", func() {
			bios := make([]byte, emu.BIOSSize)
			copy(bios, insts.Bytes(
				insts.LUI(insts.T9, emu.ShellEntry>>16),
				insts.JR(insts.T9),
				insts.NOP(),
			))
			biosPath := filepath.Join(dir, "bios.bin")
			Expect(os.WriteFile(biosPath, bios, 0644)).To(Succeed())

			code := run([]string{"-bios", biosPath, "-budget", "20", "-dump", program}, stdout, stderr)
			Expect(code).To(Equal(0), stderr.String())
			Expect(stderr.String()).To(ContainSubstring("side-loading"))
			Expect(stdout.String()).To(ContainSubstring("t0=12345678"))
			Expect(stdout.String()).To(ContainSubstring("t9=80030000"))
		})
	})
})
