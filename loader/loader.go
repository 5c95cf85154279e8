// Package loader reads guest executables: PS-X EXE images and little-endian
// MIPS ELF32 binaries.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment is a block of guest memory to initialize.
type Segment struct {
	// Addr is the guest address of the first byte.
	Addr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory. Bytes past len(Data) are zeroed.
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program is a parsed executable ready to be copied into guest RAM.
type Program struct {
	// Entry is the initial PC.
	Entry uint32
	// GP is the initial global pointer, 0 when the image does not set one.
	GP uint32
	// SP is the initial stack pointer, 0 when the image does not set one.
	SP uint32
	// Segments contains every block of memory to initialize.
	Segments []Segment
	// Symbols lists the named addresses found in the image.
	Symbols []emu.Symbol
}

// RAM is the destination of LoadInto.
type RAM interface {
	LoadRAM(addr uint32, data []byte) error
}

// Load reads the executable at path, detecting its format from the first
// bytes.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open executable: %w", err)
	}
	defer func() { _ = f.Close() }()

	magic := make([]byte, len(psexeMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("failed to read executable header: %w", err)
	}

	switch {
	case bytes.Equal(magic, []byte(psexeMagic)):
		return LoadPSEXE(path)
	case bytes.HasPrefix(magic, []byte("\x7fELF")):
		return LoadELF(path)
	}
	return nil, fmt.Errorf("%s: unrecognized executable format", path)
}

// LoadInto copies every segment into ram, zero-filling the part of a
// segment not backed by file data.
func (p *Program) LoadInto(ram RAM) error {
	for _, seg := range p.Segments {
		data := seg.Data
		if seg.MemSize > uint32(len(data)) {
			data = make([]byte, seg.MemSize)
			copy(data, seg.Data)
		}
		if err := ram.LoadRAM(seg.Addr, data); err != nil {
			return fmt.Errorf("failed to load segment at 0x%08x: %w", seg.Addr, err)
		}
	}
	return nil
}

// Apply points the core at the program: PC at the entry, and GP and SP
// (and FP) when the image defines them.
func (p *Program) Apply(c *emu.Core) {
	c.Regs.PC = p.Entry
	if p.GP != 0 {
		c.Regs.GPR.WriteReg(insts.GP, p.GP)
	}
	if p.SP != 0 {
		c.Regs.GPR.WriteReg(insts.SP, p.SP)
		c.Regs.GPR.WriteReg(insts.FP, p.SP)
	}
}

// SymbolTable returns the program's symbols as a lookup table.
func (p *Program) SymbolTable() *emu.Symbols {
	syms := emu.NewSymbols()
	for _, s := range p.Symbols {
		syms.Add(s.Addr, s.Name)
	}
	return syms
}
