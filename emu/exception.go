package emu

import "github.com/sirupsen/logrus"

// Exception is an R3000A exception code as stored in Cause[6:2].
type Exception uint32

// R3000A exception codes.
const (
	ExcInterrupt           Exception = 0
	ExcLoadAddressError    Exception = 4
	ExcStoreAddressError   Exception = 5
	ExcInstructionBusError Exception = 6
	ExcDataBusError        Exception = 7
	ExcSyscall             Exception = 8
	ExcBreak               Exception = 9
	ExcReservedInstruction Exception = 10
	ExcCoprocessorUnusable Exception = 11
	ExcArithmeticOverflow  Exception = 12
)

// Exception vectors.
const (
	VectorGeneral = 0x80000080
	VectorBoot    = 0xbfc00180
)

// Cause register fields.
const (
	CauseBD        = 1 << 31 // Exception taken in a branch delay slot
	causeCEShift   = 28      // Coprocessor number for CpU exceptions
	CauseIP2       = 1 << 10 // Hardware interrupt line 2
	causeSWMask    = 0x300   // Software interrupt bits survive dispatch
	causeCodeShift = 2
)

var exceptionNames = map[Exception]string{
	ExcInterrupt:           "Interrupt",
	ExcLoadAddressError:    "LoadAddressError",
	ExcStoreAddressError:   "StoreAddressError",
	ExcInstructionBusError: "InstructionBusError",
	ExcDataBusError:        "DataBusError",
	ExcSyscall:             "Syscall",
	ExcBreak:               "Break",
	ExcReservedInstruction: "ReservedInstruction",
	ExcCoprocessorUnusable: "CoprocessorUnusable",
	ExcArithmeticOverflow:  "ArithmeticOverflow",
}

func (e Exception) String() string {
	if n, ok := exceptionNames[e]; ok {
		return n
	}
	return "Unknown"
}

// enterException updates Cause, EPC and Status for a new exception and
// returns the handler address. epc is the address of the instruction that
// will be restarted; when bd is set it is the address of the branch.
func (c *Core) enterException(code uint32, bd bool, epc uint32) uint32 {
	cp0 := &c.Regs.CP0

	if bd {
		code |= CauseBD
	}
	cp0[CP0Cause] = (cp0[CP0Cause] & causeSWMask) | code
	cp0[CP0EPC] = epc

	// Push a zero KU/IE pair on the three-entry mode stack: kernel mode,
	// interrupts off.
	sr := cp0[CP0Status]
	cp0[CP0Status] = (sr &^ 0x3f) | ((sr & 0x0f) << 2)

	c.inISR = true
	c.stats.Exceptions++

	vector := uint32(VectorGeneral)
	if sr&StatusBEV != 0 {
		vector = VectorBoot
	}

	c.logger.WithFields(logrus.Fields{
		"code":   Exception((code >> causeCodeShift) & 0x1f).String(),
		"cause":  cp0[CP0Cause],
		"epc":    epc,
		"vector": vector,
	}).Debug("exception")

	return vector
}

// Raise dispatches a synchronous exception for the instruction being
// executed. Control reaches the vector at the end of the current step.
func (c *Core) Raise(e Exception) {
	c.raise(uint32(e)<<causeCodeShift, c.inDelaySlot)
}

// RaiseCoprocessorUnusable dispatches a CpU exception naming cop in the CE
// field.
func (c *Core) RaiseCoprocessorUnusable(cop uint32) {
	c.raise(uint32(ExcCoprocessorUnusable)<<causeCodeShift|(cop&3)<<causeCEShift, c.inDelaySlot)
}

// RaiseAddressError records the faulting address and dispatches an
// address error.
func (c *Core) RaiseAddressError(e Exception, addr uint32) {
	c.Regs.CP0[CP0BadVAddr] = addr
	c.Raise(e)
}

func (c *Core) raise(code uint32, bd bool) {
	epc := c.currentPC
	if bd {
		epc -= 4
	}
	c.redirect(c.enterException(code, bd, epc))
}

// returnFromException pops the KU/IE mode stack (RFE).
func (c *Core) returnFromException() {
	sr := c.Regs.CP0[CP0Status]
	c.Regs.CP0[CP0Status] = (sr &^ 0x0f) | ((sr & 0x3c) >> 2)
	c.inISR = false
	c.testSoftwareInterrupt()
}

// testSoftwareInterrupt takes an interrupt right after an instruction that
// may have unmasked a pending software interrupt (MTC0, RFE).
func (c *Core) testSoftwareInterrupt() {
	cp0 := &c.Regs.CP0
	if cp0[CP0Cause]&cp0[CP0Status]&causeSWMask == 0 || cp0[CP0Status]&StatusIEc == 0 {
		return
	}

	// Resume at whatever would have run next, the pending branch target
	// included.
	epc := c.Regs.PC
	if other := c.delayed[c.currentDelayed^1]; other.PCActive {
		epc = other.PCValue
	} else if cur := c.delayed[c.currentDelayed]; cur.PCActive {
		epc = cur.PCValue
	}

	c.stats.Interrupts++
	c.redirect(c.enterException(uint32(ExcInterrupt)<<causeCodeShift, false, epc))
}

// InISR reports whether an exception handler is running (set on dispatch,
// cleared by RFE).
func (c *Core) InISR() bool {
	return c.inISR
}

// InDelaySlot reports whether the instruction being executed sits in a
// branch delay slot.
func (c *Core) InDelaySlot() bool {
	return c.inDelaySlot
}
