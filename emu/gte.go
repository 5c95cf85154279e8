package emu

// GTE is the geometry transformation coprocessor (COP2). The core only
// moves data in and out of it; the transform math lives behind this
// interface.
type GTE interface {
	ReadData(regs *Registers, reg uint32) uint32
	WriteData(regs *Registers, reg, value uint32)
	ReadControl(regs *Registers, reg uint32) uint32
	WriteControl(regs *Registers, reg, value uint32)
	Command(regs *Registers, code uint32)
}

// RegisterGTE is a GTE without a transform engine: its registers are plain
// storage in Registers.CP2D/CP2C and commands only clear the flag register.
type RegisterGTE struct {
	Commands uint64
}

// gteFlag is the control register holding the error flags of the last
// command.
const gteFlag = 31

// ReadData returns data register reg.
func (g *RegisterGTE) ReadData(regs *Registers, reg uint32) uint32 {
	return regs.CP2D[reg&31]
}

// WriteData sets data register reg.
func (g *RegisterGTE) WriteData(regs *Registers, reg, value uint32) {
	regs.CP2D[reg&31] = value
}

// ReadControl returns control register reg.
func (g *RegisterGTE) ReadControl(regs *Registers, reg uint32) uint32 {
	return regs.CP2C[reg&31]
}

// WriteControl sets control register reg.
func (g *RegisterGTE) WriteControl(regs *Registers, reg, value uint32) {
	regs.CP2C[reg&31] = value
}

// Command counts the command and clears FLAG. It performs no transform:
// the data registers keep whatever the guest wrote.
func (g *RegisterGTE) Command(regs *Registers, code uint32) {
	g.Commands++
	regs.CP2C[gteFlag] = 0
}
