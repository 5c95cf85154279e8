package insts

import "fmt"

// RegisterNames holds the conventional names of the general purpose
// registers.
var RegisterNames = [32]string{
	"r0", "at", "v0", "v1", "a0", "a1", "a2", "a3", // 00
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7", // 08
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7", // 10
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra", // 18
}

// RegisterIndex returns the index of a named register, or -1.
func RegisterIndex(name string) int {
	for i, n := range RegisterNames {
		if n == name {
			return i
		}
	}
	if name == "s8" {
		return 30
	}
	return -1
}

var opNames = map[Op]string{
	OpSLL: "sll", OpSRL: "srl", OpSRA: "sra", OpSLLV: "sllv", OpSRLV: "srlv", OpSRAV: "srav",
	OpJR: "jr", OpJALR: "jalr", OpSYSCALL: "syscall", OpBREAK: "break",
	OpMFHI: "mfhi", OpMTHI: "mthi", OpMFLO: "mflo", OpMTLO: "mtlo",
	OpMULT: "mult", OpMULTU: "multu", OpDIV: "div", OpDIVU: "divu",
	OpADD: "add", OpADDU: "addu", OpSUB: "sub", OpSUBU: "subu",
	OpAND: "and", OpOR: "or", OpXOR: "xor", OpNOR: "nor", OpSLT: "slt", OpSLTU: "sltu",
	OpBLTZ: "bltz", OpBGEZ: "bgez", OpBLTZAL: "bltzal", OpBGEZAL: "bgezal",
	OpJ: "j", OpJAL: "jal", OpBEQ: "beq", OpBNE: "bne", OpBLEZ: "blez", OpBGTZ: "bgtz",
	OpADDI: "addi", OpADDIU: "addiu", OpSLTI: "slti", OpSLTIU: "sltiu",
	OpANDI: "andi", OpORI: "ori", OpXORI: "xori", OpLUI: "lui",
	OpMFC0: "mfc0", OpMTC0: "mtc0", OpRFE: "rfe",
	OpMFC2: "mfc2", OpCFC2: "cfc2", OpMTC2: "mtc2", OpCTC2: "ctc2", OpCOP2: "cop2",
	OpLB: "lb", OpLH: "lh", OpLWL: "lwl", OpLW: "lw", OpLBU: "lbu", OpLHU: "lhu", OpLWR: "lwr",
	OpSB: "sb", OpSH: "sh", OpSWL: "swl", OpSW: "sw", OpSWR: "swr",
	OpLWC2: "lwc2", OpSWC2: "swc2",
}

// String returns the mnemonic of the operation.
func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	if o == OpCOPUnusable {
		return "cop?"
	}
	return "illegal"
}

// String disassembles the instruction. Branch targets are printed as
// signed word offsets since the instruction address is not known here.
func (i *Instruction) String() string {
	r := func(idx uint8) string { return RegisterNames[idx] }
	m := fmt.Sprintf("%-7s", i.Op)

	switch i.Op {
	case OpUnknown:
		return fmt.Sprintf("illegal 0x%08x", i.Word)
	case OpCOPUnusable:
		return fmt.Sprintf("cop%d    0x%08x", i.Cop, i.Word)
	case OpSLL:
		if i.Word == 0 {
			return "nop"
		}
		fallthrough
	case OpSRL, OpSRA:
		return fmt.Sprintf("%s %s, %s, %d", m, r(i.Rd), r(i.Rt), i.Sa)
	case OpSLLV, OpSRLV, OpSRAV:
		return fmt.Sprintf("%s %s, %s, %s", m, r(i.Rd), r(i.Rt), r(i.Rs))
	case OpJR, OpMTHI, OpMTLO:
		return fmt.Sprintf("%s %s", m, r(i.Rs))
	case OpJALR:
		return fmt.Sprintf("%s %s, %s", m, r(i.Rd), r(i.Rs))
	case OpSYSCALL, OpBREAK:
		return fmt.Sprintf("%s 0x%x", m, (i.Word>>6)&0xfffff)
	case OpMFHI, OpMFLO:
		return fmt.Sprintf("%s %s", m, r(i.Rd))
	case OpMULT, OpMULTU, OpDIV, OpDIVU:
		return fmt.Sprintf("%s %s, %s", m, r(i.Rs), r(i.Rt))
	case OpBLTZ, OpBGEZ, OpBLTZAL, OpBGEZAL, OpBLEZ, OpBGTZ:
		return fmt.Sprintf("%s %s, %+d", m, r(i.Rs), int32(i.ImmSE))
	case OpBEQ, OpBNE:
		return fmt.Sprintf("%s %s, %s, %+d", m, r(i.Rs), r(i.Rt), int32(i.ImmSE))
	case OpJ, OpJAL:
		return fmt.Sprintf("%s 0x%07x", m, i.Target<<2)
	case OpADDI, OpADDIU, OpSLTI, OpSLTIU:
		return fmt.Sprintf("%s %s, %s, %d", m, r(i.Rt), r(i.Rs), int32(i.ImmSE))
	case OpANDI, OpORI, OpXORI:
		return fmt.Sprintf("%s %s, %s, 0x%x", m, r(i.Rt), r(i.Rs), i.Imm)
	case OpLUI:
		return fmt.Sprintf("%s %s, 0x%x", m, r(i.Rt), i.Imm)
	case OpMFC0, OpMTC0:
		return fmt.Sprintf("%s %s, cop0r%d", m, r(i.Rt), i.Rd)
	case OpMFC2, OpMTC2:
		return fmt.Sprintf("%s %s, cop2d%d", m, r(i.Rt), i.Rd)
	case OpCFC2, OpCTC2:
		return fmt.Sprintf("%s %s, cop2c%d", m, r(i.Rt), i.Rd)
	case OpRFE:
		return "rfe"
	case OpCOP2:
		return fmt.Sprintf("%s 0x%07x", m, i.Word&0x1ffffff)
	case OpLWC2, OpSWC2:
		return fmt.Sprintf("%s cop2d%d, %d(%s)", m, i.Rt, int32(i.ImmSE), r(i.Rs))
	}

	if i.Format == FormatLoad || i.Format == FormatStore {
		return fmt.Sprintf("%s %s, %d(%s)", m, r(i.Rt), int32(i.ImmSE), r(i.Rs))
	}
	return fmt.Sprintf("%s %s, %s, %s", m, r(i.Rd), r(i.Rs), r(i.Rt))
}
