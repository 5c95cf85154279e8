// Package insts provides MIPS R3000A instruction definitions and decoding.
//
// This package implements decoding of R3000A machine code into structured
// instruction representations. It supports the full integer instruction
// set of the R3000A:
//   - SPECIAL (opcode 0): shifts, JR/JALR, SYSCALL/BREAK, HI/LO moves,
//     multiply/divide and the three-register ALU operations
//   - REGIMM (opcode 1): BLTZ, BGEZ, BLTZAL, BGEZAL
//   - J/JAL, BEQ/BNE/BLEZ/BGTZ and the immediate ALU operations
//   - Loads and stores, including the unaligned LWL/LWR/SWL/SWR pairs
//   - COP0 moves and RFE, COP2 moves, loads, stores and GTE commands
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x24210001) // addiu at, at, 1
//	fmt.Println(inst) // addiu   at, at, 1
//
// The package also carries a small assembler (see encode.go) used to build
// guest programs for tests and microbenchmarks.
package insts
