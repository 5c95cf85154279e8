package main

import (
	"fmt"
	"io"

	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
)

// dumpRegisters prints the general purpose registers four to a line,
// followed by HI/LO and the main COP0 registers.
func dumpRegisters(w io.Writer, c *emu.Core) {
	r := &c.Regs
	for i := 0; i < 32; i += 4 {
		for j := i; j < i+4; j++ {
			_, _ = fmt.Fprintf(w, "%-2s=%08x ", insts.RegisterNames[j], r.GPR.R[j])
		}
		_, _ = fmt.Fprintln(w)
	}
	_, _ = fmt.Fprintf(w, "hi=%08x lo=%08x pc=%08x\n", r.GPR.HI(), r.GPR.LO(), r.PC)
	_, _ = fmt.Fprintf(w, "sr=%08x cause=%08x epc=%08x\n",
		r.CP0[emu.CP0Status], r.CP0[emu.CP0Cause], r.CP0[emu.CP0EPC])
	if sym, ok := c.Symbols().Containing(r.PC); ok {
		_, _ = fmt.Fprintf(w, "in %s+0x%x\n", sym.Name, r.PC-sym.Addr)
	}
}
