package dynarec

import (
	"encoding/binary"
	"fmt"
)

// DefaultArenaSize is the size of the translation arena.
const DefaultArenaSize = 4 << 20

// arenaHeader is the size of a record header: start PC and word count.
const arenaHeader = 8

// arena is the translation buffer. Every translated block appends a record
// of its start PC, its length and the guest words it was built from.
type arena struct {
	mem []byte
	off int
}

func newArena(size int) (*arena, error) {
	mem, err := mapArena(size)
	if err != nil {
		return nil, fmt.Errorf("failed to map %d byte translation arena: %w", size, err)
	}
	return &arena{mem: mem}, nil
}

// record appends a block. It returns false when the arena is full.
func (a *arena) record(pc uint32, words []uint32) bool {
	need := arenaHeader + 4*len(words)
	if a.off+need > len(a.mem) {
		return false
	}

	buf := a.mem[a.off : a.off+need]
	binary.LittleEndian.PutUint32(buf[0:], pc)
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(words)))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[arenaHeader+4*i:], w)
	}
	a.off += need
	return true
}

func (a *arena) reset() {
	a.off = 0
}

func (a *arena) used() []byte {
	return a.mem[:a.off]
}

func (a *arena) release() error {
	if a.mem == nil {
		return nil
	}
	err := unmapArena(a.mem)
	a.mem = nil
	a.off = 0
	return err
}

// ArenaRecord is one translation as stored in the arena.
type ArenaRecord struct {
	PC    uint32
	Words []uint32
}

// ParseArena decodes the contents returned by Recompiler.Buffer.
func ParseArena(buf []byte) ([]ArenaRecord, error) {
	var records []ArenaRecord
	for len(buf) > 0 {
		if len(buf) < arenaHeader {
			return nil, fmt.Errorf("truncated arena record header (%d bytes)", len(buf))
		}
		pc := binary.LittleEndian.Uint32(buf[0:])
		n := int(binary.LittleEndian.Uint32(buf[4:]))
		buf = buf[arenaHeader:]
		if len(buf) < 4*n {
			return nil, fmt.Errorf("arena record at %08x wants %d words, %d bytes left", pc, n, len(buf))
		}

		words := make([]uint32, n)
		for i := range words {
			words[i] = binary.LittleEndian.Uint32(buf[4*i:])
		}
		buf = buf[4*n:]
		records = append(records, ArenaRecord{PC: pc, Words: words})
	}
	return records, nil
}
