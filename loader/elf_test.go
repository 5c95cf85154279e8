package loader_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
	"github.com/sarchlab/r3ksim/loader"
)

// elfSymbol is a symbol written by buildMIPSELF.
type elfSymbol struct {
	name  string
	value uint32
	info  byte
}

const (
	sttObject = 1
	sttFunc   = 2
	stbGlobal = 1 << 4
)

// elfSegment is a PT_LOAD entry written by buildMIPSELF.
type elfSegment struct {
	addr    uint32
	data    []byte
	memSize uint32
	flags   uint32
}

// buildMIPSELF writes a little-endian ELF32 executable with the given
// segments and, when syms is not empty, a .text/.strtab/.symtab section set.
func buildMIPSELF(path string, machine uint16, entry uint32, segs []elfSegment, syms []elfSymbol) {
	const (
		ehSize = 52
		phSize = 32
		shSize = 40
	)

	le := binary.LittleEndian
	var body bytes.Buffer

	dataOff := ehSize + phSize*len(segs)
	offsets := make([]int, len(segs))
	for i, s := range segs {
		offsets[i] = dataOff + body.Len()
		body.Write(s.data)
		for body.Len()%4 != 0 {
			body.WriteByte(0)
		}
	}

	var shoff, shnum, shstrndx int
	var sections bytes.Buffer
	if len(syms) > 0 {
		strtab := []byte{0}
		symtab := make([]byte, 16)
		for _, s := range syms {
			sym := make([]byte, 16)
			le.PutUint32(sym[0:], uint32(len(strtab)))
			le.PutUint32(sym[4:], s.value)
			sym[12] = s.info
			le.PutUint16(sym[14:], 1)
			symtab = append(symtab, sym...)
			strtab = append(strtab, append([]byte(s.name), 0)...)
		}
		shstrtab := []byte("\x00.text\x00.strtab\x00.symtab\x00.shstrtab\x00")

		strtabOff := dataOff + body.Len()
		body.Write(strtab)
		for body.Len()%4 != 0 {
			body.WriteByte(0)
		}
		symtabOff := dataOff + body.Len()
		body.Write(symtab)
		shstrtabOff := dataOff + body.Len()
		body.Write(shstrtab)
		for body.Len()%4 != 0 {
			body.WriteByte(0)
		}
		shoff = dataOff + body.Len()

		section := func(name, typ, flags, addr, off, size, link, entsize uint32) {
			sh := make([]byte, shSize)
			le.PutUint32(sh[0:], name)
			le.PutUint32(sh[4:], typ)
			le.PutUint32(sh[8:], flags)
			le.PutUint32(sh[12:], addr)
			le.PutUint32(sh[16:], off)
			le.PutUint32(sh[20:], size)
			le.PutUint32(sh[24:], link)
			le.PutUint32(sh[32:], 4)
			le.PutUint32(sh[36:], entsize)
			sections.Write(sh)
		}
		section(0, 0, 0, 0, 0, 0, 0, 0)
		section(1, 1, 6, segs[0].addr, uint32(offsets[0]), uint32(len(segs[0].data)), 0, 0)
		section(7, 3, 0, 0, uint32(strtabOff), uint32(len(strtab)), 0, 0)
		section(15, 2, 0, 0, uint32(symtabOff), uint32(len(symtab)), 2, 16)
		section(23, 3, 0, 0, uint32(shstrtabOff), uint32(len(shstrtab)), 0, 0)
		shnum = 5
		shstrndx = 4
	}

	eh := make([]byte, ehSize)
	copy(eh, []byte{0x7f, 'E', 'L', 'F', 1, 1, 1})
	le.PutUint16(eh[16:], 2)
	le.PutUint16(eh[18:], machine)
	le.PutUint32(eh[20:], 1)
	le.PutUint32(eh[24:], entry)
	le.PutUint32(eh[28:], ehSize)
	le.PutUint32(eh[32:], uint32(shoff))
	le.PutUint16(eh[40:], ehSize)
	le.PutUint16(eh[42:], phSize)
	le.PutUint16(eh[44:], uint16(len(segs)))
	le.PutUint16(eh[46:], shSize)
	le.PutUint16(eh[48:], uint16(shnum))
	le.PutUint16(eh[50:], uint16(shstrndx))

	var out bytes.Buffer
	out.Write(eh)
	for i, s := range segs {
		ph := make([]byte, phSize)
		le.PutUint32(ph[0:], 1)
		le.PutUint32(ph[4:], uint32(offsets[i]))
		le.PutUint32(ph[8:], s.addr)
		le.PutUint32(ph[12:], s.addr)
		le.PutUint32(ph[16:], uint32(len(s.data)))
		le.PutUint32(ph[20:], s.memSize)
		le.PutUint32(ph[24:], s.flags)
		le.PutUint32(ph[28:], 0x1000)
		out.Write(ph)
	}
	out.Write(body.Bytes())
	out.Write(sections.Bytes())

	Expect(os.WriteFile(path, out.Bytes(), 0644)).To(Succeed())
}

const emMIPS = 8

var _ = Describe("ELF Loader", func() {
	var (
		tempDir string
		code    []byte
	)

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
		code = insts.Bytes(
			insts.ADDIU(insts.V0, insts.R0, 42),
			insts.JR(insts.RA),
			insts.NOP(),
		)
	})

	Context("with a valid MIPS ELF binary", func() {
		var elfPath string

		BeforeEach(func() {
			elfPath = filepath.Join(tempDir, "test.elf")
			buildMIPSELF(elfPath, emMIPS, 0x80010008,
				[]elfSegment{{addr: 0x80010000, data: code, memSize: uint32(len(code)), flags: 0x5}},
				[]elfSymbol{
					{name: "main", value: 0x80010000, info: stbGlobal | sttFunc},
					{name: "counter", value: 0x80010100, info: stbGlobal | sttObject},
					{name: "_gp", value: 0x80018000, info: stbGlobal},
				})
		})

		It("should extract the entry point", func() {
			prog, err := loader.LoadELF(elfPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Entry).To(Equal(uint32(0x80010008)))
		})

		It("should load segment contents and permissions", func() {
			prog, err := loader.LoadELF(elfPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(HaveLen(1))

			seg := prog.Segments[0]
			Expect(seg.Addr).To(Equal(uint32(0x80010000)))
			Expect(seg.Data).To(Equal(code))
			Expect(seg.Flags & loader.SegmentFlagExecute).NotTo(BeZero())
			Expect(seg.Flags & loader.SegmentFlagRead).NotTo(BeZero())
			Expect(seg.Flags & loader.SegmentFlagWrite).To(BeZero())
		})

		It("should read symbols and the global pointer", func() {
			prog, err := loader.LoadELF(elfPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.GP).To(Equal(uint32(0x80018000)))
			Expect(prog.Symbols).To(ConsistOf(
				emu.Symbol{Addr: 0x80010000, Name: "main"},
				emu.Symbol{Addr: 0x80010100, Name: "counter"},
			))

			sym, ok := prog.SymbolTable().Containing(0x80010004)
			Expect(ok).To(BeTrue())
			Expect(sym.Name).To(Equal("main"))
		})

		It("should be detected by Load", func() {
			prog, err := loader.Load(elfPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Entry).To(Equal(uint32(0x80010008)))
		})

		It("should load into RAM and point the core at the entry", func() {
			prog, err := loader.Load(elfPath)
			Expect(err).NotTo(HaveOccurred())

			bus := emu.NewBus(emu.RAMSize2M)
			core := emu.NewCore(emu.WithMemory(bus))
			Expect(prog.LoadInto(bus)).To(Succeed())
			prog.Apply(core)

			Expect(core.Regs.PC).To(Equal(uint32(0x80010008)))
			Expect(core.Regs.GPR.R[insts.GP]).To(Equal(uint32(0x80018000)))
			Expect(core.Regs.GPR.R[insts.SP]).To(BeZero())
			Expect(bus.Read32(0x80010000, emu.ReadData)).
				To(Equal(insts.ADDIU(insts.V0, insts.R0, 42)))
		})
	})

	It("should load a stripped binary", func() {
		elfPath := filepath.Join(tempDir, "stripped.elf")
		buildMIPSELF(elfPath, emMIPS, 0x80010000,
			[]elfSegment{{addr: 0x80010000, data: code, memSize: uint32(len(code)), flags: 0x5}}, nil)

		prog, err := loader.LoadELF(elfPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Symbols).To(BeEmpty())
		Expect(prog.GP).To(BeZero())
	})

	It("should zero-fill BSS past the file data", func() {
		elfPath := filepath.Join(tempDir, "bss.elf")
		buildMIPSELF(elfPath, emMIPS, 0x80010000, []elfSegment{
			{addr: 0x80010000, data: code, memSize: uint32(len(code)), flags: 0x5},
			{addr: 0x80020000, data: []byte{1, 2, 3, 4}, memSize: 0x100, flags: 0x6},
		}, nil)

		prog, err := loader.LoadELF(elfPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Segments).To(HaveLen(2))
		Expect(prog.Segments[1].MemSize).To(Equal(uint32(0x100)))
		Expect(prog.Segments[1].Flags & loader.SegmentFlagWrite).NotTo(BeZero())

		bus := emu.NewBus(emu.RAMSize2M)
		Expect(bus.LoadRAM(0x80020004, []byte{0xff, 0xff})).To(Succeed())
		Expect(prog.LoadInto(bus)).To(Succeed())
		Expect(bus.Read32(0x80020000, emu.ReadData)).To(Equal(uint32(0x04030201)))
		Expect(bus.Read16(0x80020004, emu.ReadData)).To(BeZero())
	})

	It("should report segments that do not fit in RAM", func() {
		prog := &loader.Program{Segments: []loader.Segment{{Addr: 0x1fc00000, Data: []byte{1}}}}
		Expect(prog.LoadInto(emu.NewBus(emu.RAMSize2M))).To(MatchError(ContainSubstring("failed to load segment")))
	})

	Context("with an invalid file", func() {
		It("should return error for non-existent file", func() {
			_, err := loader.LoadELF("/nonexistent/path/to/file.elf")
			Expect(err).To(MatchError(ContainSubstring("failed to open")))
		})

		It("should reject a non-MIPS ELF", func() {
			elfPath := filepath.Join(tempDir, "arm.elf")
			buildMIPSELF(elfPath, 40, 0, []elfSegment{{addr: 0x8000, data: code, memSize: uint32(len(code)), flags: 5}}, nil)

			_, err := loader.LoadELF(elfPath)
			Expect(err).To(MatchError(ContainSubstring("not a MIPS ELF")))
		})

		It("should reject unknown formats in Load", func() {
			path := filepath.Join(tempDir, "junk.bin")
			Expect(os.WriteFile(path, []byte("not an executable"), 0644)).To(Succeed())

			_, err := loader.Load(path)
			Expect(err).To(MatchError(ContainSubstring("unrecognized executable format")))
		})

		It("should return error for empty file", func() {
			path := filepath.Join(tempDir, "empty.elf")
			Expect(os.WriteFile(path, nil, 0644)).To(Succeed())

			_, err := loader.Load(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
