package loader

import (
	"encoding/binary"
	"fmt"
	"os"
)

// PS-X EXE layout: a 2 KiB header followed by the text image.
const (
	psexeMagic      = "PS-X EXE"
	psexeHeaderSize = 0x800

	psexePC0   = 0x10
	psexeGP0   = 0x14
	psexeTAddr = 0x18
	psexeTSize = 0x1c
	psexeBAddr = 0x28
	psexeBSize = 0x2c
	psexeSAddr = 0x30
	psexeSSize = 0x34
)

// LoadPSEXE parses a PS-X EXE image. The text is loaded at its link
// address, the BSS range becomes a zero-filled segment and the stack
// pointer is set to the top of the stack range when one is given.
func LoadPSEXE(path string) (*Program, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PS-X EXE: %w", err)
	}
	return ParsePSEXE(raw)
}

// ParsePSEXE parses a PS-X EXE image held in memory.
func ParsePSEXE(raw []byte) (*Program, error) {
	if len(raw) < psexeHeaderSize {
		return nil, fmt.Errorf("PS-X EXE too short: %d bytes", len(raw))
	}
	if string(raw[:len(psexeMagic)]) != psexeMagic {
		return nil, fmt.Errorf("missing PS-X EXE magic")
	}

	word := func(off int) uint32 {
		return binary.LittleEndian.Uint32(raw[off:])
	}

	tAddr, tSize := word(psexeTAddr), word(psexeTSize)
	text := raw[psexeHeaderSize:]
	if uint32(len(text)) < tSize {
		return nil, fmt.Errorf("PS-X EXE text wants %d bytes, file has %d", tSize, len(text))
	}

	prog := &Program{
		Entry: word(psexePC0),
		GP:    word(psexeGP0),
		Segments: []Segment{{
			Addr:    tAddr,
			Data:    text[:tSize],
			MemSize: tSize,
			Flags:   SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		}},
	}

	if bSize := word(psexeBSize); bSize != 0 {
		prog.Segments = append(prog.Segments, Segment{
			Addr:    word(psexeBAddr),
			MemSize: bSize,
			Flags:   SegmentFlagRead | SegmentFlagWrite,
		})
	}

	if sAddr := word(psexeSAddr); sAddr != 0 {
		prog.SP = sAddr + word(psexeSSize)
	}

	return prog, nil
}
