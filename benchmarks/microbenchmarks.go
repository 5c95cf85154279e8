package benchmarks

import "github.com/sarchlab/r3ksim/insts"

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each one
// targets a specific part of the execution engine.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		functionCalls(),
		branchTaken(),
		loopSum(),
		divideLoop(),
		memoryCopy(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation: a loop, a
// memory-heavy kernel and branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		loopSum(),
		memoryCopy(),
		branchTaken(),
	}
}

// idle is the self-loop every benchmark ends in.
func idle() []uint32 {
	return []uint32{insts.BEQ(insts.R0, insts.R0, -1), insts.NOP()}
}

func program(body ...uint32) []uint32 {
	return append(body, idle()...)
}

// 1. Arithmetic Sequential - independent ALU operations
func arithmeticSequential() Benchmark {
	body := make([]uint32, 0, 20)
	for i := 0; i < 20; i++ {
		reg := uint32(insts.T0 + i%5)
		body = append(body, insts.ADDIU(reg, reg, 1))
	}

	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 independent ADDIU operations over 5 registers",
		Program:     program(body...),
		ResultReg:   insts.T4,
		Expected:    4,
	}
}

// 2. Dependency Chain - every instruction reads the previous result
func dependencyChain() Benchmark {
	body := make([]uint32, 0, 20)
	for i := 0; i < 20; i++ {
		body = append(body, insts.ADDIU(insts.T0, insts.T0, 1))
	}

	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent ADDIU (t0 = t0 + 1)",
		Program:     program(body...),
		ResultReg:   insts.T0,
		Expected:    20,
	}
}

// 3. Memory Sequential - stores then loads through the load delay slot
func memorySequential() Benchmark {
	body := []uint32{insts.LUI(insts.T1, 0x8002)}
	for i := int32(0); i < 10; i++ {
		body = append(body,
			insts.ADDIU(insts.T2, insts.R0, i+1),
			insts.SW(insts.T2, insts.T1, 4*i),
		)
	}
	for i := int32(0); i < 10; i++ {
		body = append(body,
			insts.LW(insts.T3, insts.T1, 4*i),
			insts.NOP(),
			insts.ADDU(insts.T0, insts.T0, insts.T3),
		)
	}

	return Benchmark{
		Name:        "memory_sequential",
		Description: "10 stores and 10 loads to sequential words, summed",
		Program:     program(body...),
		ResultReg:   insts.T0,
		Expected:    55,
	}
}

// 4. Function Calls - JAL/JR pairs with work in the return delay slot
func functionCalls() Benchmark {
	const sub = ProgramBase + 12*4

	body := make([]uint32, 0, 14)
	for i := 0; i < 5; i++ {
		body = append(body, insts.JAL(sub), insts.NOP())
	}
	body = append(body, idle()...)
	body = append(body,
		insts.JR(insts.RA),
		insts.ADDIU(insts.V0, insts.V0, 1),
	)

	return Benchmark{
		Name:        "function_calls",
		Description: "5 calls to a leaf routine that increments v0 in its delay slot",
		Program:     body,
		Exit:        ProgramBase + 10*4,
		ResultReg:   insts.V0,
		Expected:    5,
	}
}

// 5. Branch Taken - a countdown loop
func branchTaken() Benchmark {
	return Benchmark{
		Name:        "branch_taken",
		Description: "100 iterations of a taken BNE",
		Program: program(
			insts.ADDIU(insts.T0, insts.R0, 100),
			insts.ADDIU(insts.T1, insts.T1, 1),
			insts.ADDIU(insts.T0, insts.T0, -1),
			insts.BNE(insts.T0, insts.R0, -3),
			insts.NOP(),
		),
		ResultReg: insts.T1,
		Expected:  100,
	}
}

// 6. Loop Sum - sum of 1..100
func loopSum() Benchmark {
	return Benchmark{
		Name:        "loop_sum",
		Description: "sum of 1..100 in a counted loop",
		Program: program(
			insts.ADDIU(insts.T0, insts.R0, 0),
			insts.ADDIU(insts.T1, insts.R0, 1),
			insts.ADDIU(insts.T2, insts.R0, 101),
			insts.ADDU(insts.T0, insts.T0, insts.T1),
			insts.ADDIU(insts.T1, insts.T1, 1),
			insts.BNE(insts.T1, insts.T2, -3),
			insts.NOP(),
		),
		ResultReg: insts.T0,
		Expected:  5050,
	}
}

// 7. Divide Loop - DIV/MFLO throughput
func divideLoop() Benchmark {
	return Benchmark{
		Name:        "divide_loop",
		Description: "sum of n/7 for n in 1..1000",
		Program: program(
			insts.ADDIU(insts.T0, insts.R0, 1000),
			insts.ADDIU(insts.T1, insts.R0, 7),
			insts.ADDIU(insts.T3, insts.R0, 0),
			insts.DIV(insts.T0, insts.T1),
			insts.MFLO(insts.T2),
			insts.ADDU(insts.T3, insts.T3, insts.T2),
			insts.ADDIU(insts.T0, insts.T0, -1),
			insts.BNE(insts.T0, insts.R0, -5),
			insts.NOP(),
		),
		ResultReg: insts.T3,
		Expected:  71071,
	}
}

// 8. Memory Copy - fill, copy and checksum 64 words
func memoryCopy() Benchmark {
	return Benchmark{
		Name:        "memory_copy",
		Description: "fill 64 words, copy them with LW/SW and sum the copy",
		Program: program(
			insts.LUI(insts.S0, 0x8002),
			insts.LUI(insts.S1, 0x8004),
			insts.ADDIU(insts.T0, insts.R0, 0),
			insts.ADDIU(insts.T1, insts.R0, 64),

			// fill
			insts.SLL(insts.T2, insts.T0, 2),
			insts.ADDU(insts.T2, insts.T2, insts.S0),
			insts.SW(insts.T0, insts.T2, 0),
			insts.ADDIU(insts.T0, insts.T0, 1),
			insts.BNE(insts.T0, insts.T1, -5),
			insts.NOP(),

			// copy
			insts.ADDIU(insts.T0, insts.R0, 0),
			insts.SLL(insts.T2, insts.T0, 2),
			insts.ADDU(insts.T3, insts.T2, insts.S0),
			insts.LW(insts.T4, insts.T3, 0),
			insts.ADDU(insts.T3, insts.T2, insts.S1),
			insts.SW(insts.T4, insts.T3, 0),
			insts.ADDIU(insts.T0, insts.T0, 1),
			insts.BNE(insts.T0, insts.T1, -7),
			insts.NOP(),

			// checksum
			insts.ADDIU(insts.T0, insts.R0, 0),
			insts.ADDIU(insts.V0, insts.R0, 0),
			insts.SLL(insts.T2, insts.T0, 2),
			insts.ADDU(insts.T3, insts.T2, insts.S1),
			insts.LW(insts.T4, insts.T3, 0),
			insts.ADDIU(insts.T0, insts.T0, 1),
			insts.ADDU(insts.V0, insts.V0, insts.T4),
			insts.BNE(insts.T0, insts.T1, -6),
			insts.NOP(),
		),
		ResultReg: insts.V0,
		Expected:  2016,
	}
}
