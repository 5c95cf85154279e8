// Package insts provides MIPS R3000A instruction definitions and decoding.
package insts

// Op represents an R3000A operation.
type Op uint16

// R3000A operations.
const (
	OpUnknown Op = iota

	// SPECIAL
	OpSLL
	OpSRL
	OpSRA
	OpSLLV
	OpSRLV
	OpSRAV
	OpJR
	OpJALR
	OpSYSCALL
	OpBREAK
	OpMFHI
	OpMTHI
	OpMFLO
	OpMTLO
	OpMULT
	OpMULTU
	OpDIV
	OpDIVU
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU

	// REGIMM
	OpBLTZ
	OpBGEZ
	OpBLTZAL
	OpBGEZAL

	// Jumps and branches
	OpJ
	OpJAL
	OpBEQ
	OpBNE
	OpBLEZ
	OpBGTZ

	// Immediate ALU
	OpADDI
	OpADDIU
	OpSLTI
	OpSLTIU
	OpANDI
	OpORI
	OpXORI
	OpLUI

	// Coprocessor 0
	OpMFC0
	OpMTC0
	OpRFE

	// Coprocessor 2 (GTE)
	OpMFC2
	OpCFC2
	OpMTC2
	OpCTC2
	OpCOP2 // GTE command

	// Coprocessors 1 and 3 are absent on the R3000A.
	OpCOPUnusable

	// Loads and stores
	OpLB
	OpLH
	OpLWL
	OpLW
	OpLBU
	OpLHU
	OpLWR
	OpSB
	OpSH
	OpSWL
	OpSW
	OpSWR
	OpLWC2
	OpSWC2
)

// Format represents an instruction encoding class.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatRegister       // SPECIAL three-register / shift / HI-LO
	FormatRegImm         // REGIMM branches
	FormatJump           // J, JAL
	FormatBranch         // BEQ, BNE, BLEZ, BGTZ
	FormatImm            // Immediate ALU
	FormatLoad           // LB..LWR, LWC2
	FormatStore          // SB..SWR, SWC2
	FormatCop0           // MFC0, MTC0, RFE
	FormatCop2           // MFC2, CFC2, MTC2, CTC2, GTE commands
)

// Primary opcodes, bits [31:26].
const (
	PrimarySpecial = 0x00
	PrimaryRegImm  = 0x01
	PrimaryJ       = 0x02
	PrimaryJAL     = 0x03
	PrimaryBEQ     = 0x04
	PrimaryBNE     = 0x05
	PrimaryBLEZ    = 0x06
	PrimaryBGTZ    = 0x07
	PrimaryADDI    = 0x08
	PrimaryADDIU   = 0x09
	PrimarySLTI    = 0x0a
	PrimarySLTIU   = 0x0b
	PrimaryANDI    = 0x0c
	PrimaryORI     = 0x0d
	PrimaryXORI    = 0x0e
	PrimaryLUI     = 0x0f
	PrimaryCOP0    = 0x10
	PrimaryCOP1    = 0x11
	PrimaryCOP2    = 0x12
	PrimaryCOP3    = 0x13
	PrimaryLB      = 0x20
	PrimaryLH      = 0x21
	PrimaryLWL     = 0x22
	PrimaryLW      = 0x23
	PrimaryLBU     = 0x24
	PrimaryLHU     = 0x25
	PrimaryLWR     = 0x26
	PrimarySB      = 0x28
	PrimarySH      = 0x29
	PrimarySWL     = 0x2a
	PrimarySW      = 0x2b
	PrimarySWR     = 0x2e
	PrimaryLWC0    = 0x30
	PrimaryLWC1    = 0x31
	PrimaryLWC2    = 0x32
	PrimaryLWC3    = 0x33
	PrimarySWC0    = 0x38
	PrimarySWC1    = 0x39
	PrimarySWC2    = 0x3a
	PrimarySWC3    = 0x3b
)

// Word is a raw instruction word with field accessors. The execution hot
// paths use these instead of building an Instruction.
type Word uint32

// Opcode returns bits [31:26].
func (w Word) Opcode() uint32 { return uint32(w) >> 26 }

// Funct returns bits [5:0].
func (w Word) Funct() uint32 { return uint32(w) & 0x3f }

// Rs returns the register index in bits [25:21].
func (w Word) Rs() uint32 { return (uint32(w) >> 21) & 0x1f }

// Rt returns the register index in bits [20:16].
func (w Word) Rt() uint32 { return (uint32(w) >> 16) & 0x1f }

// Rd returns the register index in bits [15:11].
func (w Word) Rd() uint32 { return (uint32(w) >> 11) & 0x1f }

// Sa returns the shift amount in bits [10:6].
func (w Word) Sa() uint32 { return (uint32(w) >> 6) & 0x1f }

// Imm returns the zero-extended immediate in bits [15:0].
func (w Word) Imm() uint32 { return uint32(w) & 0xffff }

// ImmSE returns the sign-extended immediate.
func (w Word) ImmSE() uint32 { return uint32(int32(int16(uint32(w)))) }

// Target returns the 26-bit jump index.
func (w Word) Target() uint32 { return uint32(w) & 0x03ffffff }

// JumpTarget computes the J/JAL destination given the address of the
// delay slot.
func (w Word) JumpTarget(delaySlotPC uint32) uint32 {
	return (w.Target() << 2) | (delaySlotPC & 0xf0000000)
}

// BranchTarget computes the PC-relative destination given the address of
// the delay slot.
func (w Word) BranchTarget(delaySlotPC uint32) uint32 {
	return delaySlotPC + (w.ImmSE() << 2)
}

// Instruction represents a decoded R3000A instruction.
type Instruction struct {
	Word   uint32 // Raw encoding
	Op     Op     // Operation
	Format Format // Encoding class

	Rs uint8 // First source register
	Rt uint8 // Second source / immediate destination register
	Rd uint8 // Register-format destination
	Sa uint8 // Shift amount

	Imm    uint32 // Zero-extended 16-bit immediate
	ImmSE  uint32 // Sign-extended 16-bit immediate
	Target uint32 // 26-bit jump index

	// Cop is the coprocessor number for coprocessor formats and for
	// OpCOPUnusable.
	Cop uint8
}

// IsBranch reports whether the instruction has a delay slot.
func (i *Instruction) IsBranch() bool {
	switch i.Format {
	case FormatJump, FormatBranch, FormatRegImm:
		return true
	case FormatRegister:
		return i.Op == OpJR || i.Op == OpJALR
	}
	return false
}

// IsLoad reports whether the instruction reads data memory.
func (i *Instruction) IsLoad() bool {
	return i.Format == FormatLoad
}

// IsStore reports whether the instruction writes data memory.
func (i *Instruction) IsStore() bool {
	return i.Format == FormatStore
}

// EndsBlock reports whether control may leave the sequential stream after
// this instruction (after its delay slot for branches).
func (i *Instruction) EndsBlock() bool {
	switch i.Op {
	case OpSYSCALL, OpBREAK, OpRFE, OpMTC0, OpUnknown, OpCOPUnusable:
		return true
	}
	return i.IsBranch()
}

// Decoder decodes R3000A machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new R3000A instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit R3000A instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	w := Word(word)
	inst := &Instruction{
		Word:   word,
		Op:     OpUnknown,
		Format: FormatUnknown,
		Rs:     uint8(w.Rs()),
		Rt:     uint8(w.Rt()),
		Rd:     uint8(w.Rd()),
		Sa:     uint8(w.Sa()),
		Imm:    w.Imm(),
		ImmSE:  w.ImmSE(),
		Target: w.Target(),
	}

	switch op := w.Opcode(); op {
	case PrimarySpecial:
		d.decodeSpecial(w, inst)
	case PrimaryRegImm:
		d.decodeRegImm(w, inst)
	case PrimaryJ, PrimaryJAL:
		inst.Format = FormatJump
		inst.Op = OpJ
		if op == PrimaryJAL {
			inst.Op = OpJAL
		}
	case PrimaryBEQ, PrimaryBNE, PrimaryBLEZ, PrimaryBGTZ:
		inst.Format = FormatBranch
		inst.Op = [...]Op{OpBEQ, OpBNE, OpBLEZ, OpBGTZ}[op-PrimaryBEQ]
	case PrimaryADDI, PrimaryADDIU, PrimarySLTI, PrimarySLTIU,
		PrimaryANDI, PrimaryORI, PrimaryXORI, PrimaryLUI:
		inst.Format = FormatImm
		inst.Op = [...]Op{OpADDI, OpADDIU, OpSLTI, OpSLTIU, OpANDI, OpORI, OpXORI, OpLUI}[op-PrimaryADDI]
	case PrimaryCOP0:
		d.decodeCop0(w, inst)
	case PrimaryCOP2:
		d.decodeCop2(w, inst)
	case PrimaryCOP1, PrimaryCOP3:
		inst.Op = OpCOPUnusable
		inst.Cop = uint8(op & 3)
	case PrimaryLB, PrimaryLH, PrimaryLWL, PrimaryLW, PrimaryLBU, PrimaryLHU, PrimaryLWR:
		inst.Format = FormatLoad
		inst.Op = [...]Op{OpLB, OpLH, OpLWL, OpLW, OpLBU, OpLHU, OpLWR}[op-PrimaryLB]
	case PrimarySB, PrimarySH, PrimarySWL, PrimarySW:
		inst.Format = FormatStore
		inst.Op = [...]Op{OpSB, OpSH, OpSWL, OpSW}[op-PrimarySB]
	case PrimarySWR:
		inst.Format = FormatStore
		inst.Op = OpSWR
	case PrimaryLWC2:
		inst.Format = FormatLoad
		inst.Op = OpLWC2
		inst.Cop = 2
	case PrimarySWC2:
		inst.Format = FormatStore
		inst.Op = OpSWC2
		inst.Cop = 2
	case PrimaryLWC0, PrimaryLWC1, PrimaryLWC3, PrimarySWC0, PrimarySWC1, PrimarySWC3:
		inst.Op = OpCOPUnusable
		inst.Cop = uint8(op & 3)
	}

	return inst
}

var specialOps = [64]Op{
	0x00: OpSLL, 0x02: OpSRL, 0x03: OpSRA,
	0x04: OpSLLV, 0x06: OpSRLV, 0x07: OpSRAV,
	0x08: OpJR, 0x09: OpJALR,
	0x0c: OpSYSCALL, 0x0d: OpBREAK,
	0x10: OpMFHI, 0x11: OpMTHI, 0x12: OpMFLO, 0x13: OpMTLO,
	0x18: OpMULT, 0x19: OpMULTU, 0x1a: OpDIV, 0x1b: OpDIVU,
	0x20: OpADD, 0x21: OpADDU, 0x22: OpSUB, 0x23: OpSUBU,
	0x24: OpAND, 0x25: OpOR, 0x26: OpXOR, 0x27: OpNOR,
	0x2a: OpSLT, 0x2b: OpSLTU,
}

// decodeSpecial decodes opcode 0 by its funct field.
func (d *Decoder) decodeSpecial(w Word, inst *Instruction) {
	inst.Op = specialOps[w.Funct()]
	if inst.Op != OpUnknown {
		inst.Format = FormatRegister
	}
}

// decodeRegImm decodes opcode 1. The R3000A only looks at bit 16 (GEZ vs
// LTZ) and bits [20:17] == 0b1000 (link), so every rt value decodes.
func (d *Decoder) decodeRegImm(w Word, inst *Instruction) {
	inst.Format = FormatRegImm
	rt := w.Rt()
	link := rt&0x1e == 0x10
	gez := rt&1 != 0
	switch {
	case gez && link:
		inst.Op = OpBGEZAL
	case gez:
		inst.Op = OpBGEZ
	case link:
		inst.Op = OpBLTZAL
	default:
		inst.Op = OpBLTZ
	}
}

// decodeCop0 decodes the system control coprocessor instructions.
func (d *Decoder) decodeCop0(w Word, inst *Instruction) {
	inst.Cop = 0
	switch w.Rs() {
	case 0x00:
		inst.Op, inst.Format = OpMFC0, FormatCop0
	case 0x04:
		inst.Op, inst.Format = OpMTC0, FormatCop0
	case 0x10:
		if w.Funct() == 0x10 {
			inst.Op, inst.Format = OpRFE, FormatCop0
		}
	}
}

// decodeCop2 decodes the geometry coprocessor instructions.
func (d *Decoder) decodeCop2(w Word, inst *Instruction) {
	inst.Cop = 2
	if uint32(w)&(1<<25) != 0 {
		inst.Op, inst.Format = OpCOP2, FormatCop2
		return
	}
	switch w.Rs() {
	case 0x00:
		inst.Op, inst.Format = OpMFC2, FormatCop2
	case 0x02:
		inst.Op, inst.Format = OpCFC2, FormatCop2
	case 0x04:
		inst.Op, inst.Format = OpMTC2, FormatCop2
	case 0x06:
		inst.Op, inst.Format = OpCTC2, FormatCop2
	}
}
