package insts

// Register indices by conventional name.
const (
	R0 = iota
	AT
	V0
	V1
	A0
	A1
	A2
	A3
	T0
	T1
	T2
	T3
	T4
	T5
	T6
	T7
	S0
	S1
	S2
	S3
	S4
	S5
	S6
	S7
	T8
	T9
	K0
	K1
	GP
	SP
	FP
	RA
)

func encR(rs, rt, rd, sa, funct uint32) uint32 {
	return (rs&0x1f)<<21 | (rt&0x1f)<<16 | (rd&0x1f)<<11 | (sa&0x1f)<<6 | funct&0x3f
}

func encI(op, rs, rt uint32, imm int32) uint32 {
	return op<<26 | (rs&0x1f)<<21 | (rt&0x1f)<<16 | uint32(imm)&0xffff
}

// NOP encodes sll r0, r0, 0.
func NOP() uint32 { return 0 }

// SLL encodes sll rd, rt, sa.
func SLL(rd, rt, sa uint32) uint32 { return encR(0, rt, rd, sa, 0x00) }

// SRL encodes srl rd, rt, sa.
func SRL(rd, rt, sa uint32) uint32 { return encR(0, rt, rd, sa, 0x02) }

// SRA encodes sra rd, rt, sa.
func SRA(rd, rt, sa uint32) uint32 { return encR(0, rt, rd, sa, 0x03) }

// SLLV encodes sllv rd, rt, rs.
func SLLV(rd, rt, rs uint32) uint32 { return encR(rs, rt, rd, 0, 0x04) }

// SRLV encodes srlv rd, rt, rs.
func SRLV(rd, rt, rs uint32) uint32 { return encR(rs, rt, rd, 0, 0x06) }

// SRAV encodes srav rd, rt, rs.
func SRAV(rd, rt, rs uint32) uint32 { return encR(rs, rt, rd, 0, 0x07) }

// JR encodes jr rs.
func JR(rs uint32) uint32 { return encR(rs, 0, 0, 0, 0x08) }

// JALR encodes jalr rd, rs.
func JALR(rd, rs uint32) uint32 { return encR(rs, 0, rd, 0, 0x09) }

// SYSCALL encodes syscall with the given code field.
func SYSCALL(code uint32) uint32 { return (code&0xfffff)<<6 | 0x0c }

// BREAK encodes break with the given code field.
func BREAK(code uint32) uint32 { return (code&0xfffff)<<6 | 0x0d }

// MFHI encodes mfhi rd.
func MFHI(rd uint32) uint32 { return encR(0, 0, rd, 0, 0x10) }

// MTHI encodes mthi rs.
func MTHI(rs uint32) uint32 { return encR(rs, 0, 0, 0, 0x11) }

// MFLO encodes mflo rd.
func MFLO(rd uint32) uint32 { return encR(0, 0, rd, 0, 0x12) }

// MTLO encodes mtlo rs.
func MTLO(rs uint32) uint32 { return encR(rs, 0, 0, 0, 0x13) }

// MULT encodes mult rs, rt.
func MULT(rs, rt uint32) uint32 { return encR(rs, rt, 0, 0, 0x18) }

// MULTU encodes multu rs, rt.
func MULTU(rs, rt uint32) uint32 { return encR(rs, rt, 0, 0, 0x19) }

// DIV encodes div rs, rt.
func DIV(rs, rt uint32) uint32 { return encR(rs, rt, 0, 0, 0x1a) }

// DIVU encodes divu rs, rt.
func DIVU(rs, rt uint32) uint32 { return encR(rs, rt, 0, 0, 0x1b) }

// ADD encodes add rd, rs, rt.
func ADD(rd, rs, rt uint32) uint32 { return encR(rs, rt, rd, 0, 0x20) }

// ADDU encodes addu rd, rs, rt.
func ADDU(rd, rs, rt uint32) uint32 { return encR(rs, rt, rd, 0, 0x21) }

// SUB encodes sub rd, rs, rt.
func SUB(rd, rs, rt uint32) uint32 { return encR(rs, rt, rd, 0, 0x22) }

// SUBU encodes subu rd, rs, rt.
func SUBU(rd, rs, rt uint32) uint32 { return encR(rs, rt, rd, 0, 0x23) }

// AND encodes and rd, rs, rt.
func AND(rd, rs, rt uint32) uint32 { return encR(rs, rt, rd, 0, 0x24) }

// OR encodes or rd, rs, rt.
func OR(rd, rs, rt uint32) uint32 { return encR(rs, rt, rd, 0, 0x25) }

// XOR encodes xor rd, rs, rt.
func XOR(rd, rs, rt uint32) uint32 { return encR(rs, rt, rd, 0, 0x26) }

// NOR encodes nor rd, rs, rt.
func NOR(rd, rs, rt uint32) uint32 { return encR(rs, rt, rd, 0, 0x27) }

// SLT encodes slt rd, rs, rt.
func SLT(rd, rs, rt uint32) uint32 { return encR(rs, rt, rd, 0, 0x2a) }

// SLTU encodes sltu rd, rs, rt.
func SLTU(rd, rs, rt uint32) uint32 { return encR(rs, rt, rd, 0, 0x2b) }

// BLTZ encodes bltz rs, offset (offset in instructions).
func BLTZ(rs uint32, off int32) uint32 { return encI(PrimaryRegImm, rs, 0x00, off) }

// BGEZ encodes bgez rs, offset.
func BGEZ(rs uint32, off int32) uint32 { return encI(PrimaryRegImm, rs, 0x01, off) }

// BLTZAL encodes bltzal rs, offset.
func BLTZAL(rs uint32, off int32) uint32 { return encI(PrimaryRegImm, rs, 0x10, off) }

// BGEZAL encodes bgezal rs, offset.
func BGEZAL(rs uint32, off int32) uint32 { return encI(PrimaryRegImm, rs, 0x11, off) }

// J encodes j target (absolute byte address within the 256MB region).
func J(target uint32) uint32 { return PrimaryJ<<26 | (target>>2)&0x03ffffff }

// JAL encodes jal target.
func JAL(target uint32) uint32 { return PrimaryJAL<<26 | (target>>2)&0x03ffffff }

// BEQ encodes beq rs, rt, offset.
func BEQ(rs, rt uint32, off int32) uint32 { return encI(PrimaryBEQ, rs, rt, off) }

// BNE encodes bne rs, rt, offset.
func BNE(rs, rt uint32, off int32) uint32 { return encI(PrimaryBNE, rs, rt, off) }

// BLEZ encodes blez rs, offset.
func BLEZ(rs uint32, off int32) uint32 { return encI(PrimaryBLEZ, rs, 0, off) }

// BGTZ encodes bgtz rs, offset.
func BGTZ(rs uint32, off int32) uint32 { return encI(PrimaryBGTZ, rs, 0, off) }

// ADDI encodes addi rt, rs, imm.
func ADDI(rt, rs uint32, imm int32) uint32 { return encI(PrimaryADDI, rs, rt, imm) }

// ADDIU encodes addiu rt, rs, imm.
func ADDIU(rt, rs uint32, imm int32) uint32 { return encI(PrimaryADDIU, rs, rt, imm) }

// SLTI encodes slti rt, rs, imm.
func SLTI(rt, rs uint32, imm int32) uint32 { return encI(PrimarySLTI, rs, rt, imm) }

// SLTIU encodes sltiu rt, rs, imm.
func SLTIU(rt, rs uint32, imm int32) uint32 { return encI(PrimarySLTIU, rs, rt, imm) }

// ANDI encodes andi rt, rs, imm.
func ANDI(rt, rs, imm uint32) uint32 { return encI(PrimaryANDI, rs, rt, int32(imm)) }

// ORI encodes ori rt, rs, imm.
func ORI(rt, rs, imm uint32) uint32 { return encI(PrimaryORI, rs, rt, int32(imm)) }

// XORI encodes xori rt, rs, imm.
func XORI(rt, rs, imm uint32) uint32 { return encI(PrimaryXORI, rs, rt, int32(imm)) }

// LUI encodes lui rt, imm.
func LUI(rt, imm uint32) uint32 { return encI(PrimaryLUI, 0, rt, int32(imm)) }

// MFC0 encodes mfc0 rt, rd.
func MFC0(rt, rd uint32) uint32 { return PrimaryCOP0<<26 | encR(0x00, rt, rd, 0, 0) }

// MTC0 encodes mtc0 rt, rd.
func MTC0(rt, rd uint32) uint32 { return PrimaryCOP0<<26 | encR(0x04, rt, rd, 0, 0) }

// RFE encodes rfe.
func RFE() uint32 { return PrimaryCOP0<<26 | encR(0x10, 0, 0, 0, 0x10) }

// MFC2 encodes mfc2 rt, rd.
func MFC2(rt, rd uint32) uint32 { return PrimaryCOP2<<26 | encR(0x00, rt, rd, 0, 0) }

// CFC2 encodes cfc2 rt, rd.
func CFC2(rt, rd uint32) uint32 { return PrimaryCOP2<<26 | encR(0x02, rt, rd, 0, 0) }

// MTC2 encodes mtc2 rt, rd.
func MTC2(rt, rd uint32) uint32 { return PrimaryCOP2<<26 | encR(0x04, rt, rd, 0, 0) }

// CTC2 encodes ctc2 rt, rd.
func CTC2(rt, rd uint32) uint32 { return PrimaryCOP2<<26 | encR(0x06, rt, rd, 0, 0) }

// COP2 encodes a GTE command.
func COP2(cmd uint32) uint32 { return PrimaryCOP2<<26 | 1<<25 | cmd&0x1ffffff }

// LB encodes lb rt, off(rs).
func LB(rt, rs uint32, off int32) uint32 { return encI(PrimaryLB, rs, rt, off) }

// LH encodes lh rt, off(rs).
func LH(rt, rs uint32, off int32) uint32 { return encI(PrimaryLH, rs, rt, off) }

// LWL encodes lwl rt, off(rs).
func LWL(rt, rs uint32, off int32) uint32 { return encI(PrimaryLWL, rs, rt, off) }

// LW encodes lw rt, off(rs).
func LW(rt, rs uint32, off int32) uint32 { return encI(PrimaryLW, rs, rt, off) }

// LBU encodes lbu rt, off(rs).
func LBU(rt, rs uint32, off int32) uint32 { return encI(PrimaryLBU, rs, rt, off) }

// LHU encodes lhu rt, off(rs).
func LHU(rt, rs uint32, off int32) uint32 { return encI(PrimaryLHU, rs, rt, off) }

// LWR encodes lwr rt, off(rs).
func LWR(rt, rs uint32, off int32) uint32 { return encI(PrimaryLWR, rs, rt, off) }

// SB encodes sb rt, off(rs).
func SB(rt, rs uint32, off int32) uint32 { return encI(PrimarySB, rs, rt, off) }

// SH encodes sh rt, off(rs).
func SH(rt, rs uint32, off int32) uint32 { return encI(PrimarySH, rs, rt, off) }

// SWL encodes swl rt, off(rs).
func SWL(rt, rs uint32, off int32) uint32 { return encI(PrimarySWL, rs, rt, off) }

// SW encodes sw rt, off(rs).
func SW(rt, rs uint32, off int32) uint32 { return encI(PrimarySW, rs, rt, off) }

// SWR encodes swr rt, off(rs).
func SWR(rt, rs uint32, off int32) uint32 { return encI(PrimarySWR, rs, rt, off) }

// LWC2 encodes lwc2 rt, off(rs).
func LWC2(rt, rs uint32, off int32) uint32 { return encI(PrimaryLWC2, rs, rt, off) }

// SWC2 encodes swc2 rt, off(rs).
func SWC2(rt, rs uint32, off int32) uint32 { return encI(PrimarySWC2, rs, rt, off) }

// Bytes serializes a program as little-endian words.
func Bytes(words ...uint32) []byte {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out
}
