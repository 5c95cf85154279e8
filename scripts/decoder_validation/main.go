// Validate the instruction decoder: every encoder must decode to the
// expected operation, then measure decode throughput and allocations.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sarchlab/r3ksim/insts"
)

type decodeCase struct {
	word uint32
	op   insts.Op
}

func main() {
	decoder := insts.NewDecoder()

	cases := []decodeCase{
		{insts.ADDIU(insts.T0, insts.T1, 42), insts.OpADDIU},
		{insts.ADDU(insts.V0, insts.A0, insts.A1), insts.OpADDU},
		{insts.LUI(insts.T0, 0x8001), insts.OpLUI},
		{insts.ORI(insts.T0, insts.T0, 0x1234), insts.OpORI},
		{insts.LW(insts.T2, insts.SP, 16), insts.OpLW},
		{insts.SW(insts.RA, insts.SP, 20), insts.OpSW},
		{insts.BNE(insts.T0, insts.R0, -3), insts.OpBNE},
		{insts.JAL(0x80010040), insts.OpJAL},
		{insts.JR(insts.RA), insts.OpJR},
		{insts.DIV(insts.T0, insts.T1), insts.OpDIV},
		{insts.MFLO(insts.T2), insts.OpMFLO},
	}

	failed := 0
	for _, tc := range cases {
		inst := decoder.Decode(tc.word)
		status := "ok"
		if inst.Op != tc.op {
			status = fmt.Sprintf("FAIL: decoded as %v", inst.Op)
			failed++
		}
		fmt.Printf("%08x  %-24s %s\n", tc.word, inst, status)
	}
	if failed > 0 {
		fmt.Printf("\n%d of %d encodings decoded wrongly\n", failed, len(cases))
		os.Exit(1)
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		decoder.Decode(cases[i%len(cases)].word)
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000
	for i := 0; i < iterations; i++ {
		for _, tc := range cases {
			decoder.Decode(tc.word)
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(cases)
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("\nDecoder Validation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))
	fmt.Printf("Bytes per decode: %.1f\n", float64(allocatedBytes)/float64(totalDecodes))
}
