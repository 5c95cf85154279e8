package emu

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Interrupt sources that can be scheduled on the core. The index is the
// bit position in Registers.Interrupt.
const (
	IntSIO = iota
	IntSIO1
	IntCDR
	IntCDRead
	IntGPUDMA
	IntMDECOutDMA
	IntSPUDMA
	IntGPUBusy
	IntMDECInDMA
	IntGPUOTCDMA
	IntCDRDMA
	IntSPUAsync
	IntCDRDBuf
	IntCDRLid
	IntCDRPlay

	NumInterrupts
)

var interruptNames = [NumInterrupts]string{
	"SIO", "SIO1", "CDR", "CDREAD", "GPUDMA", "MDECOUTDMA", "SPUDMA", "GPUBUSY",
	"MDECINDMA", "GPUOTCDMA", "CDRDMA", "SPUASYNC", "CDRDBUF", "CDRLID", "CDRPLAY",
}

// InterruptName returns the name of a schedulable interrupt source.
func InterruptName(source int) string {
	if source < 0 || source >= NumInterrupts {
		return fmt.Sprintf("INT%d", source)
	}
	return interruptNames[source]
}

// Registers is the architectural state block of the core. Its layout is
// fixed so that it can be snapshotted and restored verbatim.
type Registers struct {
	GPR  RegFile    // General purpose registers plus HI/LO
	CP0  [32]uint32 // System control coprocessor
	CP2D [32]uint32 // GTE data registers
	CP2C [32]uint32 // GTE control registers

	PC   uint32 // Address of the next instruction to fetch
	Code uint32 // Last fetched instruction word

	Cycle uint64
	// PreviousCycles is part of the snapshot layout only. The core never
	// advances it; a restored value is kept.
	PreviousCycles uint64

	Interrupt    uint32     // Armed interrupt sources, one bit per source
	IntTargets   [32]uint64 // Absolute cycle deadline per source
	LowestTarget uint64     // Never above the lowest armed deadline
}

// SnapshotSize is the size in bytes of a register snapshot.
var SnapshotSize = binary.Size(Registers{})

// WriteTo serializes the register block as little-endian.
func (r *Registers) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, r); err != nil {
		return 0, fmt.Errorf("failed to write register snapshot: %w", err)
	}
	return int64(SnapshotSize), nil
}

// ReadFrom restores the register block from a little-endian blob.
func (r *Registers) ReadFrom(rd io.Reader) (int64, error) {
	var regs Registers
	if err := binary.Read(rd, binary.LittleEndian, &regs); err != nil {
		return 0, fmt.Errorf("failed to read register snapshot: %w", err)
	}
	*r = regs
	return int64(SnapshotSize), nil
}
