package emu

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// InterruptHandler runs when a scheduled interrupt source expires.
type InterruptHandler func(c *Core)

// ScheduleInterrupt arms source to expire eCycles from now, scaled by the
// source's timing scale. A source that is already armed keeps its original
// deadline.
func (c *Core) ScheduleInterrupt(source int, eCycles uint32) {
	checkSource(source)

	r := &c.Regs
	if r.Interrupt&(1<<uint(source)) != 0 {
		return
	}

	target := r.Cycle + uint64(float32(eCycles)*c.latency.InterruptScale(source))
	r.Interrupt |= 1 << uint(source)
	r.IntTargets[source] = target
	if target < r.LowestTarget {
		r.LowestTarget = target
	}

	c.logger.WithFields(logrus.Fields{
		"source": InterruptName(source),
		"cycle":  r.Cycle,
		"target": target,
	}).Trace("interrupt scheduled")
}

// DisarmInterrupt cancels a scheduled source. The cached lowest deadline is
// left as is; the branch test re-checks every source before dispatching.
func (c *Core) DisarmInterrupt(source int) {
	checkSource(source)
	c.Regs.Interrupt &^= 1 << uint(source)
}

// InterruptArmed reports whether source is scheduled.
func (c *Core) InterruptArmed(source int) bool {
	checkSource(source)
	return c.Regs.Interrupt&(1<<uint(source)) != 0
}

// SetInterruptHandler installs the callback run when source expires.
func (c *Core) SetInterruptHandler(source int, h InterruptHandler) {
	checkSource(source)
	c.intHandlers[source] = h
}

func checkSource(source int) {
	if source < 0 || source >= NumInterrupts {
		panic(fmt.Sprintf("emu: interrupt source %d out of range", source))
	}
}

// BranchTest runs at branch boundaries. It advances the root counters,
// dispatches expired interrupt sources and takes a hardware interrupt when
// one is pending and enabled.
func (c *Core) BranchTest() {
	r := &c.Regs

	if c.counters != nil && r.Cycle >= c.counters.NextDeadline() {
		c.counters.Update(r.Cycle)
	}

	if r.Interrupt != 0 && r.LowestTarget <= r.Cycle {
		c.dispatchExpired()
	}

	if c.irq != nil && c.irq.Pending() &&
		r.CP0[CP0Status]&(StatusIEc|StatusIm2) == StatusIEc|StatusIm2 {
		c.takeInterrupt()
	}
}

type expiredSource struct {
	index  int
	target uint64
}

func (c *Core) dispatchExpired() {
	r := &c.Regs
	cycle := r.Cycle

	var buf [NumInterrupts]expiredSource
	expired := buf[:0]
	for i := 0; i < NumInterrupts; i++ {
		if r.Interrupt&(1<<uint(i)) != 0 && r.IntTargets[i] <= cycle {
			expired = append(expired, expiredSource{index: i, target: r.IntTargets[i]})
		}
	}

	slices.SortStableFunc(expired, func(a, b expiredSource) int {
		switch {
		case a.target < b.target:
			return -1
		case a.target > b.target:
			return 1
		}
		return a.index - b.index
	})

	for _, e := range expired {
		// An earlier handler may have disarmed or rescheduled this source.
		if r.Interrupt&(1<<uint(e.index)) == 0 || r.IntTargets[e.index] != e.target {
			continue
		}
		r.Interrupt &^= 1 << uint(e.index)

		c.logger.WithFields(logrus.Fields{
			"source": InterruptName(e.index),
			"cycle":  cycle,
			"target": e.target,
		}).Trace("interrupt expired")

		if h := c.intHandlers[e.index]; h != nil {
			h(c)
		}
	}

	lowest := cycle + math.MaxInt32
	for i := 0; i < NumInterrupts; i++ {
		if r.Interrupt&(1<<uint(i)) != 0 && r.IntTargets[i] < lowest {
			lowest = r.IntTargets[i]
		}
	}
	r.LowestTarget = lowest
}

// takeInterrupt enters the exception handler for a pending hardware
// interrupt. The branch has already been applied, so the PC changes
// directly.
func (c *Core) takeInterrupt() {
	c.stats.Interrupts++
	c.Regs.PC = c.enterException(uint32(ExcInterrupt)<<causeCodeShift|CauseIP2, false, c.Regs.PC)
}
