package emu

// ReadType tags a memory read with its purpose. Memory-mapped devices may
// react differently to instruction fetches and debugger peeks.
type ReadType uint8

// Read purposes.
const (
	ReadData ReadType = iota
	ReadInstr
	ReadDebug
)

func (t ReadType) String() string {
	switch t {
	case ReadData:
		return "data"
	case ReadInstr:
		return "instr"
	case ReadDebug:
		return "debug"
	}
	return "unknown"
}

// Memory is the guest address space as seen by the core. Reads and writes
// may have side effects; the core never issues speculative or duplicate
// accesses.
type Memory interface {
	Read8(addr uint32, t ReadType) uint8
	Read16(addr uint32, t ReadType) uint16
	Read32(addr uint32, t ReadType) uint32
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
}

// instrReader adapts Memory to the instruction cache backing.
type instrReader struct {
	mem Memory
}

func (r instrReader) ReadInstr(addr uint32) uint32 {
	return r.mem.Read32(addr, ReadInstr)
}

// ReadString reads a NUL-terminated string with debug reads, stopping after
// max bytes.
func ReadString(mem Memory, addr uint32, max int) string {
	buf := make([]byte, 0, 32)
	for i := 0; i < max; i++ {
		b := mem.Read8(addr+uint32(i), ReadDebug)
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return string(buf)
}
