// Package main provides the entry point for r3ksim.
// r3ksim is an R3000A CPU execution engine with an interpreter and a
// recompiler behind one engine contract.
//
// For the full CLI, use: go run ./cmd/r3ksim
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/r3ksim/backend"
	"github.com/sarchlab/r3ksim/dynarec"
	"github.com/sarchlab/r3ksim/emu"
)

func main() {
	fmt.Println("r3ksim - R3000A CPU execution engine")
	fmt.Println("")
	fmt.Println("Usage: r3ksim [options] [program.exe|program.elf]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -bios      Path to a 512 KiB BIOS image")
	fmt.Println("  -backend   interpreter or recompiler")
	fmt.Println("  -budget    Stop after this many instructions")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")

	rec := dynarec.New(emu.NewCore())
	fmt.Printf("Recompiler available on this host: %v\n", rec.Implemented())
	fmt.Printf("Default backend: %s\n", backend.Interpreter)
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/r3ksim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/r3ksim' instead.")
	}
}
