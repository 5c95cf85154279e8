package emu

import (
	"encoding/binary"
	"fmt"
)

// RAM sizes of the two console models.
const (
	RAMSize2M = 2 << 20
	RAMSize8M = 8 << 20
)

// Physical memory map.
const (
	BIOSSize       = 512 << 10
	ScratchpadSize = 1 << 10
	ioSize         = 8 << 10

	ramWindow       = 0x00800000
	expansion1Base  = 0x1f000000
	expansion1Size  = 0x00800000
	scratchpadBase  = 0x1f800000
	ioBase          = 0x1f801000
	biosBase        = 0x1fc00000
	irqStatusAddr   = 0x1f801070
	irqMaskAddr     = 0x1f801074
	physicalAddress = 0x1fffffff
)

// addrRange is a region of the physical map.
type addrRange struct {
	start  uint32
	length uint32
}

func (r addrRange) contains(addr uint32) bool {
	return addr >= r.start && addr-r.start < r.length
}

var (
	ramRange        = addrRange{0, ramWindow}
	expansion1Range = addrRange{expansion1Base, expansion1Size}
	scratchpadRange = addrRange{scratchpadBase, ScratchpadSize}
	ioRange         = addrRange{ioBase, ioSize}
	biosRange       = addrRange{biosBase, BIOSSize}
)

// Bus is a minimal console memory map: mirrored RAM, BIOS ROM, scratchpad,
// the interrupt controller and an inert I/O register file. It implements
// Memory and InterruptController.
type Bus struct {
	ram        []byte
	bios       [BIOSSize]byte
	scratchpad [ScratchpadSize]byte
	io         [ioSize]byte

	irqStatus uint32
	irqMask   uint32
}

// NewBus creates a bus with ramSize bytes of RAM (RAMSize2M or RAMSize8M).
func NewBus(ramSize int) *Bus {
	if ramSize != RAMSize2M && ramSize != RAMSize8M {
		panic(fmt.Sprintf("emu: unsupported RAM size %d", ramSize))
	}
	return &Bus{ram: make([]byte, ramSize)}
}

// RAM returns the backing RAM.
func (b *Bus) RAM() []byte {
	return b.ram
}

// RAMMask maps an address onto its RAM offset.
func (b *Bus) RAMMask() uint32 {
	return uint32(len(b.ram) - 1)
}

// LoadBIOS copies a BIOS image into ROM.
func (b *Bus) LoadBIOS(image []byte) error {
	if len(image) != BIOSSize {
		return fmt.Errorf("invalid BIOS size %d, want %d", len(image), BIOSSize)
	}
	copy(b.bios[:], image)
	return nil
}

// LoadRAM copies data into RAM at addr, in any of the RAM mirrors.
func (b *Bus) LoadRAM(addr uint32, data []byte) error {
	off := addr & physicalAddress & b.RAMMask()
	if !ramRange.contains(addr&physicalAddress) || int(off)+len(data) > len(b.ram) {
		return fmt.Errorf("%d bytes at %08x do not fit in RAM", len(data), addr)
	}
	copy(b.ram[off:], data)
	return nil
}

// RaiseIRQ sets a line in the interrupt status register.
func (b *Bus) RaiseIRQ(line uint) {
	b.irqStatus |= 1 << line
}

// Pending reports whether an unmasked interrupt line is raised.
func (b *Bus) Pending() bool {
	return b.irqStatus&b.irqMask != 0
}

// region resolves addr to a byte slice and the offset inside it. A nil
// slice means the access is unmapped or handled as a register.
func (b *Bus) region(addr uint32) ([]byte, uint32) {
	phys := addr & physicalAddress
	switch {
	case ramRange.contains(phys):
		return b.ram, phys & b.RAMMask()
	case biosRange.contains(phys):
		return b.bios[:], phys - biosBase
	case scratchpadRange.contains(phys):
		return b.scratchpad[:], phys - scratchpadBase
	case ioRange.contains(phys):
		return b.io[:], phys - ioBase
	}
	return nil, 0
}

func (b *Bus) readIRQ(phys uint32) (uint32, bool) {
	switch phys &^ 3 {
	case irqStatusAddr:
		return b.irqStatus >> (8 * (phys & 3)), true
	case irqMaskAddr:
		return b.irqMask >> (8 * (phys & 3)), true
	}
	return 0, false
}

// writeIRQ acknowledges status bits (writing 0 clears a line) or sets the
// mask.
func (b *Bus) writeIRQ(phys, value uint32) bool {
	switch phys {
	case irqStatusAddr:
		b.irqStatus &= value
		return true
	case irqMaskAddr:
		b.irqMask = value
		return true
	}
	return false
}

func unmappedRead(phys uint32) uint32 {
	if expansion1Range.contains(phys) {
		return 0xffffffff
	}
	return 0
}

// Read8 reads a byte.
func (b *Bus) Read8(addr uint32, _ ReadType) uint8 {
	if v, ok := b.readIRQ(addr & physicalAddress); ok {
		return uint8(v)
	}
	mem, off := b.region(addr)
	if mem == nil {
		return uint8(unmappedRead(addr & physicalAddress))
	}
	return mem[off]
}

// Read16 reads a little-endian halfword.
func (b *Bus) Read16(addr uint32, _ ReadType) uint16 {
	if v, ok := b.readIRQ(addr & physicalAddress); ok {
		return uint16(v)
	}
	mem, off := b.region(addr)
	if mem == nil || int(off)+2 > len(mem) {
		return uint16(unmappedRead(addr & physicalAddress))
	}
	return binary.LittleEndian.Uint16(mem[off:])
}

// Read32 reads a little-endian word.
func (b *Bus) Read32(addr uint32, _ ReadType) uint32 {
	if v, ok := b.readIRQ(addr & physicalAddress); ok {
		return v
	}
	mem, off := b.region(addr)
	if mem == nil || int(off)+4 > len(mem) {
		return unmappedRead(addr & physicalAddress)
	}
	return binary.LittleEndian.Uint32(mem[off:])
}

// Write8 writes a byte. Writes to ROM and unmapped space are dropped.
func (b *Bus) Write8(addr uint32, value uint8) {
	if b.writeIRQ(addr&physicalAddress, uint32(value)) {
		return
	}
	mem, off := b.writable(addr)
	if mem != nil {
		mem[off] = value
	}
}

// Write16 writes a little-endian halfword.
func (b *Bus) Write16(addr uint32, value uint16) {
	if b.writeIRQ(addr&physicalAddress, uint32(value)) {
		return
	}
	mem, off := b.writable(addr)
	if mem != nil && int(off)+2 <= len(mem) {
		binary.LittleEndian.PutUint16(mem[off:], value)
	}
}

// Write32 writes a little-endian word.
func (b *Bus) Write32(addr uint32, value uint32) {
	if b.writeIRQ(addr&physicalAddress, value) {
		return
	}
	mem, off := b.writable(addr)
	if mem != nil && int(off)+4 <= len(mem) {
		binary.LittleEndian.PutUint32(mem[off:], value)
	}
}

func (b *Bus) writable(addr uint32) ([]byte, uint32) {
	if biosRange.contains(addr & physicalAddress) {
		return nil, 0
	}
	return b.region(addr)
}
