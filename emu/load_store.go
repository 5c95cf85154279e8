package emu

import "github.com/sarchlab/r3ksim/insts"

// Unaligned word access merge tables, indexed by addr & 3.
var (
	lwlMask  = [4]uint32{0x00ffffff, 0x0000ffff, 0x000000ff, 0x00000000}
	lwlShift = [4]uint32{24, 16, 8, 0}
	lwrMask  = [4]uint32{0x00000000, 0xff000000, 0xffff0000, 0xffffff00}
	lwrShift = [4]uint32{0, 8, 16, 24}

	swlMask  = [4]uint32{0xffffff00, 0xffff0000, 0xff000000, 0x00000000}
	swlShift = [4]uint32{24, 16, 8, 0}
	swrMask  = [4]uint32{0x00000000, 0x000000ff, 0x0000ffff, 0x00ffffff}
	swrShift = [4]uint32{0, 8, 16, 24}
)

func (c *Core) effectiveAddress(code uint32) uint32 {
	w := insts.Word(code)
	return c.reg(w.Rs()) + w.ImmSE()
}

// load queues value into rt and reports it to the geometry tracker.
func (c *Core) load(code, addr, value, mask uint32) {
	if c.pgxpMode != 0 && c.tracker != nil {
		c.tracker.Load(code, value, addr)
	}
	c.DelayedLoad(insts.Word(code).Rt(), value, mask)
}

func (c *Core) trackStore(code, addr, value uint32) {
	if c.pgxpMode != 0 && c.tracker != nil {
		c.tracker.Store(code, value, addr)
	}
}

// cacheIsolated reports whether stores go to the instruction cache instead
// of memory.
func (c *Core) cacheIsolated() bool {
	return c.Regs.CP0[CP0Status]&StatusIsC != 0
}

// isolatedStore handles a store while the cache is isolated: the firmware
// uses such stores to flush instruction cache lines.
func (c *Core) isolatedStore(addr uint32) {
	c.cache.InvalidateLine(addr)
}

func opLB(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	v := uint32(int32(int8(c.mem.Read8(addr, ReadData))))
	c.load(code, addr, v, 0)
}

func opLBU(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	c.load(code, addr, uint32(c.mem.Read8(addr, ReadData)), 0)
}

func opLH(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	if addr&1 != 0 {
		c.RaiseAddressError(ExcLoadAddressError, addr)
		return
	}
	v := uint32(int32(int16(c.mem.Read16(addr, ReadData))))
	c.load(code, addr, v, 0)
}

func opLHU(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	if addr&1 != 0 {
		c.RaiseAddressError(ExcLoadAddressError, addr)
		return
	}
	c.load(code, addr, uint32(c.mem.Read16(addr, ReadData)), 0)
}

func opLW(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	if addr&3 != 0 {
		c.RaiseAddressError(ExcLoadAddressError, addr)
		return
	}
	c.load(code, addr, c.mem.Read32(addr, ReadData), 0)
}

// opLWL merges the high bytes of rt. The mask keeps the bytes not loaded,
// so an LWR/LWL pair on back-to-back instructions combines at commit.
func opLWL(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	shift := addr & 3
	mem := c.mem.Read32(addr&^3, ReadData)
	c.load(code, addr, mem<<lwlShift[shift], lwlMask[shift])
}

func opLWR(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	shift := addr & 3
	mem := c.mem.Read32(addr&^3, ReadData)
	c.load(code, addr, mem>>lwrShift[shift], lwrMask[shift])
}

func opSB(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	v := c.reg(insts.Word(code).Rt())
	c.trackStore(code, addr, v)
	if c.cacheIsolated() {
		c.isolatedStore(addr)
		return
	}
	c.mem.Write8(addr, uint8(v))
}

func opSH(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	if addr&1 != 0 {
		c.RaiseAddressError(ExcStoreAddressError, addr)
		return
	}
	v := c.reg(insts.Word(code).Rt())
	c.trackStore(code, addr, v)
	if c.cacheIsolated() {
		c.isolatedStore(addr)
		return
	}
	c.mem.Write16(addr, uint16(v))
}

func opSW(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	if addr&3 != 0 {
		c.RaiseAddressError(ExcStoreAddressError, addr)
		return
	}
	v := c.reg(insts.Word(code).Rt())
	c.trackStore(code, addr, v)
	if c.cacheIsolated() {
		c.isolatedStore(addr)
		return
	}
	c.mem.Write32(addr, v)
}

func opSWL(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	if c.cacheIsolated() {
		c.isolatedStore(addr)
		return
	}
	shift := addr & 3
	aligned := addr &^ 3
	mem := c.mem.Read32(aligned, ReadData)
	v := c.reg(insts.Word(code).Rt())>>swlShift[shift] | mem&swlMask[shift]
	c.trackStore(code, addr, v)
	c.mem.Write32(aligned, v)
}

func opSWR(c *Core, code uint32) {
	addr := c.effectiveAddress(code)
	if c.cacheIsolated() {
		c.isolatedStore(addr)
		return
	}
	shift := addr & 3
	aligned := addr &^ 3
	mem := c.mem.Read32(aligned, ReadData)
	v := c.reg(insts.Word(code).Rt())<<swrShift[shift] | mem&swrMask[shift]
	c.trackStore(code, addr, v)
	c.mem.Write32(aligned, v)
}
