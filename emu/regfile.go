// Package emu provides functional MIPS R3000A emulation.
package emu

import "fmt"

// General purpose register indices that the core refers to by name.
// HI and LO live past the 32 architectural registers.
const (
	RegZero = 0
	RegT1   = 9
	RegRA   = 31
	RegLO   = 32
	RegHI   = 33

	NumGPR = 34
)

// Coprocessor 0 register indices.
const (
	CP0Index    = 0
	CP0BPC      = 3
	CP0BDA      = 5
	CP0JumpDest = 6
	CP0DCIC     = 7
	CP0BadVAddr = 8
	CP0BDAM     = 9
	CP0BPCM     = 11
	CP0Status   = 12
	CP0Cause    = 13
	CP0EPC      = 14
	CP0PRid     = 15
)

// Status register bits.
const (
	StatusIEc = 1 << 0  // Interrupt enable (current)
	StatusIm2 = 1 << 10 // Hardware interrupt mask, line 2
	StatusIsC = 1 << 16 // Isolate cache
	StatusBEV = 1 << 22 // Boot exception vectors
	StatusCU2 = 1 << 30 // COP2 usable
)

// RegFile represents the R3000A general purpose register file.
// R[0] is the zero register and always reads as 0. R[32] and R[33] hold
// LO and HI.
type RegFile struct {
	R [NumGPR]uint32
}

// ReadReg reads a register value. Register 0 returns 0.
func (r *RegFile) ReadReg(reg uint32) uint32 {
	return r.R[reg]
}

// WriteReg writes a value to a register. Writes to register 0 are
// discarded.
func (r *RegFile) WriteReg(reg uint32, value uint32) {
	if reg == RegZero {
		return
	}
	if reg >= NumGPR {
		panic(fmt.Sprintf("emu: register index %d out of range", reg))
	}
	r.R[reg] = value
}

// HI returns the HI multiply/divide result register.
func (r *RegFile) HI() uint32 { return r.R[RegHI] }

// LO returns the LO multiply/divide result register.
func (r *RegFile) LO() uint32 { return r.R[RegLO] }

// SetHILO writes both multiply/divide result registers.
func (r *RegFile) SetHILO(hi, lo uint32) {
	r.R[RegHI] = hi
	r.R[RegLO] = lo
}

// Byte returns byte n (0 = least significant) of v.
func Byte(v uint32, n uint) uint8 {
	return uint8(v >> (8 * n))
}

// SignedByte returns byte n of v sign-extended to 32 bits.
func SignedByte(v uint32, n uint) uint32 {
	return uint32(int32(int8(Byte(v, n))))
}

// Half returns halfword n (0 = least significant) of v.
func Half(v uint32, n uint) uint16 {
	return uint16(v >> (16 * n))
}

// SignedHalf returns halfword n of v sign-extended to 32 bits.
func SignedHalf(v uint32, n uint) uint32 {
	return uint32(int32(int16(Half(v, n))))
}

// SetByte replaces byte n of v.
func SetByte(v uint32, n uint, b uint8) uint32 {
	shift := 8 * n
	return v&^(0xff<<shift) | uint32(b)<<shift
}

// SetHalf replaces halfword n of v.
func SetHalf(v uint32, n uint, h uint16) uint32 {
	shift := 16 * n
	return v&^(0xffff<<shift) | uint32(h)<<shift
}
