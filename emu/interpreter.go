package emu

import "github.com/sarchlab/r3ksim/insts"

var (
	primaryTable [64]StepFunc
	specialTable [64]StepFunc
)

func init() {
	for i := range primaryTable {
		primaryTable[i] = opReserved
		specialTable[i] = opReserved
	}

	primaryTable[insts.PrimarySpecial] = opSpecial
	primaryTable[insts.PrimaryRegImm] = opRegImm
	primaryTable[insts.PrimaryJ] = opJ
	primaryTable[insts.PrimaryJAL] = opJAL
	primaryTable[insts.PrimaryBEQ] = opBEQ
	primaryTable[insts.PrimaryBNE] = opBNE
	primaryTable[insts.PrimaryBLEZ] = opBLEZ
	primaryTable[insts.PrimaryBGTZ] = opBGTZ
	primaryTable[insts.PrimaryADDI] = opADDI
	primaryTable[insts.PrimaryADDIU] = opADDIU
	primaryTable[insts.PrimarySLTI] = opSLTI
	primaryTable[insts.PrimarySLTIU] = opSLTIU
	primaryTable[insts.PrimaryANDI] = opANDI
	primaryTable[insts.PrimaryORI] = opORI
	primaryTable[insts.PrimaryXORI] = opXORI
	primaryTable[insts.PrimaryLUI] = opLUI
	primaryTable[insts.PrimaryCOP0] = opCOP0
	primaryTable[insts.PrimaryCOP1] = opCopUnusable
	primaryTable[insts.PrimaryCOP2] = opCOP2
	primaryTable[insts.PrimaryCOP3] = opCopUnusable
	primaryTable[insts.PrimaryLB] = opLB
	primaryTable[insts.PrimaryLH] = opLH
	primaryTable[insts.PrimaryLWL] = opLWL
	primaryTable[insts.PrimaryLW] = opLW
	primaryTable[insts.PrimaryLBU] = opLBU
	primaryTable[insts.PrimaryLHU] = opLHU
	primaryTable[insts.PrimaryLWR] = opLWR
	primaryTable[insts.PrimarySB] = opSB
	primaryTable[insts.PrimarySH] = opSH
	primaryTable[insts.PrimarySWL] = opSWL
	primaryTable[insts.PrimarySW] = opSW
	primaryTable[insts.PrimarySWR] = opSWR
	primaryTable[insts.PrimaryLWC0] = opCopUnusable
	primaryTable[insts.PrimaryLWC1] = opCopUnusable
	primaryTable[insts.PrimaryLWC2] = opLWC2
	primaryTable[insts.PrimaryLWC3] = opCopUnusable
	primaryTable[insts.PrimarySWC0] = opCopUnusable
	primaryTable[insts.PrimarySWC1] = opCopUnusable
	primaryTable[insts.PrimarySWC2] = opSWC2
	primaryTable[insts.PrimarySWC3] = opCopUnusable

	specialTable[0x00] = opSLL
	specialTable[0x02] = opSRL
	specialTable[0x03] = opSRA
	specialTable[0x04] = opSLLV
	specialTable[0x06] = opSRLV
	specialTable[0x07] = opSRAV
	specialTable[0x08] = opJR
	specialTable[0x09] = opJALR
	specialTable[0x0c] = opSYSCALL
	specialTable[0x0d] = opBREAK
	specialTable[0x10] = opMFHI
	specialTable[0x11] = opMTHI
	specialTable[0x12] = opMFLO
	specialTable[0x13] = opMTLO
	specialTable[0x18] = opMULT
	specialTable[0x19] = opMULTU
	specialTable[0x1a] = opDIV
	specialTable[0x1b] = opDIVU
	specialTable[0x20] = opADD
	specialTable[0x21] = opADDU
	specialTable[0x22] = opSUB
	specialTable[0x23] = opSUBU
	specialTable[0x24] = opAND
	specialTable[0x25] = opOR
	specialTable[0x26] = opXOR
	specialTable[0x27] = opNOR
	specialTable[0x2a] = opSLT
	specialTable[0x2b] = opSLTU
}

func opSpecial(c *Core, code uint32) {
	specialTable[code&0x3f](c, code)
}

// Interpret executes one instruction word by table dispatch.
func Interpret(c *Core, code uint32) {
	primaryTable[code>>26](c, code)
}

// Handler returns the interpreter routine for code. Backends that pre-decode
// instructions use it for everything they do not specialize.
func Handler(code uint32) StepFunc {
	if code>>26 == insts.PrimarySpecial {
		return specialTable[code&0x3f]
	}
	return primaryTable[code>>26]
}

// Interpreter is the decode-and-dispatch execution engine.
type Interpreter struct {
	core *Core
}

// NewInterpreter creates an interpreter driving core.
func NewInterpreter(core *Core) *Interpreter {
	return &Interpreter{core: core}
}

// Init always succeeds.
func (i *Interpreter) Init() bool {
	return true
}

// Execute runs instructions until the system stops.
func (i *Interpreter) Execute() {
	c := i.core
	for c.HasToRun() {
		c.Step(Interpret)
	}
}

// Clear invalidates cached instructions in the range.
func (i *Interpreter) Clear(addr, size uint32) {
	i.core.Clear(addr, size)
}

// Shutdown releases nothing.
func (i *Interpreter) Shutdown() {}

// Reset puts the core in its power-on state.
func (i *Interpreter) Reset() {
	i.core.Reset()
}

// Implemented is true on every host.
func (i *Interpreter) Implemented() bool {
	return true
}

// SetPGXPMode changes the geometry precision mode.
func (i *Interpreter) SetPGXPMode(mode uint32) {
	i.core.SetPGXPMode(mode)
}

// Name returns "interpreter".
func (i *Interpreter) Name() string {
	return "interpreter"
}

// IsDynarec is false.
func (i *Interpreter) IsDynarec() bool {
	return false
}

// Buffer is nil; the interpreter generates no code.
func (i *Interpreter) Buffer() []byte {
	return nil
}

// Core returns the driven core.
func (i *Interpreter) Core() *Core {
	return i.core
}
