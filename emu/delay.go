package emu

import "fmt"

// DelayedLoad is one of the two alternating hazard slots. A register load
// is merged as (reg & Mask) | Value when the slot is flushed; a pending PC
// is applied right after.
type DelayedLoad struct {
	Index  uint32
	Value  uint32
	Mask   uint32
	Active bool

	PCValue  uint32
	PCActive bool
	FromLink bool
}

// DelayedLoad queues a register load into the current slot. It becomes
// visible after the next instruction has executed.
func (c *Core) DelayedLoad(reg, value, mask uint32) {
	if reg >= 32 {
		panic(fmt.Sprintf("emu: delayed load to register %d", reg))
	}
	slot := &c.delayed[c.currentDelayed]
	slot.Active = true
	slot.Index = reg
	slot.Value = value
	slot.Mask = mask
}

// DelayedPCLoad queues a control transfer that takes effect after the
// delay slot instruction.
func (c *Core) DelayedPCLoad(value uint32, fromLink bool) {
	slot := &c.delayed[c.currentDelayed]
	slot.PCActive = true
	slot.PCValue = value
	slot.FromLink = fromLink
}

// CancelDelayedLoad drops the load that would commit at the end of the
// current instruction if it targets reg. A direct register write by the
// executing instruction wins over it.
func (c *Core) CancelDelayedLoad(reg uint32) {
	other := &c.delayed[c.currentDelayed^1]
	if other.Active && other.Index == reg {
		other.Active = false
	}
}

// PendingLoad returns the slot that commits at the end of the current
// instruction.
func (c *Core) PendingLoad() DelayedLoad {
	return c.delayed[c.currentDelayed^1]
}

// flushDelayed switches slots and commits the one written by the previous
// instruction: register merge first, then PC redirection.
func (c *Core) flushDelayed() {
	c.currentDelayed ^= 1
	slot := &c.delayed[c.currentDelayed]
	if slot.Active {
		if slot.Index != RegZero {
			reg := c.Regs.GPR.R[slot.Index]
			reg &= slot.Mask
			reg |= slot.Value
			c.Regs.GPR.R[slot.Index] = reg
		}
		slot.Active = false
	}
	if slot.PCActive {
		c.Regs.PC = slot.PCValue
		if slot.FromLink {
			c.stats.Calls++
		}
		slot.PCActive = false
		slot.FromLink = false
	}
}

// redirect makes the slot flushed at the end of the current instruction
// jump to target, dropping any branch queued by this instruction or the
// previous one.
func (c *Core) redirect(target uint32) {
	c.delayed[c.currentDelayed].PCActive = false
	other := &c.delayed[c.currentDelayed^1]
	other.PCActive = true
	other.PCValue = target
	other.FromLink = false
	c.nextIsDelaySlot = false
}

// resetDelayed clears both slots.
func (c *Core) resetDelayed() {
	c.delayed = [2]DelayedLoad{}
	c.currentDelayed = 0
	c.inDelaySlot = false
	c.nextIsDelaySlot = false
}
