// Package icache emulates the R3000A instruction cache using Akita cache
// components.
//
// The cache is direct mapped: 256 lines of four words (4 KiB). Only fetches
// from the two cached low-memory windows (KUSEG and KSEG0, top byte 0x00 or
// 0x80) go through it; everything else is read straight from memory.
package icache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Geometry of the instruction cache.
const (
	NumLines     = 256
	WordsPerLine = 4
	LineSize     = WordsPerLine * 4
	Size         = NumLines * LineSize

	// tagMask maps both cached windows onto the same 16 MiB tag space.
	tagMask = 0x00ffffff
)

// Backing is the memory the cache fills from. Reads may have side effects
// and are issued at most once per word per fill.
type Backing interface {
	ReadInstr(addr uint32) uint32
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Fetches       uint64
	Hits          uint64
	Misses        uint64
	Uncached      uint64
	Invalidations uint64
}

// Cache is the instruction cache of one core.
type Cache struct {
	// Akita cache directory for tag/valid management
	directory *akitacache.DirectoryImpl

	// Data storage, indexed by set
	lines [NumLines][WordsPerLine]uint32

	backing Backing
	stats   Statistics
}

// New creates an empty instruction cache filling from backing.
func New(backing Backing) *Cache {
	return &Cache{
		directory: akitacache.NewDirectory(
			NumLines,
			1,
			LineSize,
			akitacache.NewLRUVictimFinder(),
		),
		backing: backing,
	}
}

// Cacheable reports whether fetches from pc go through the cache.
func Cacheable(pc uint32) bool {
	seg := pc >> 24
	return seg == 0x00 || seg == 0x80
}

func lineTag(addr uint32) uint64 {
	return uint64(addr&tagMask) &^ (LineSize - 1)
}

// Fetch returns the instruction word at pc.
func (c *Cache) Fetch(pc uint32) uint32 {
	c.stats.Fetches++

	if !Cacheable(pc) {
		c.stats.Uncached++
		return c.backing.ReadInstr(pc)
	}

	tag := lineTag(pc)
	word := (pc >> 2) & (WordsPerLine - 1)

	block := c.directory.Lookup(0, tag)
	if block != nil && block.IsValid {
		c.stats.Hits++
		return c.lines[block.SetID][word]
	}

	c.stats.Misses++
	return c.fill(pc, tag)[word]
}

// fill loads the whole line holding pc, one read per word.
func (c *Cache) fill(pc uint32, tag uint64) *[WordsPerLine]uint32 {
	victim := c.directory.FindVictim(tag)

	line := &c.lines[victim.SetID]
	base := pc &^ (LineSize - 1)
	for i := uint32(0); i < WordsPerLine; i++ {
		line[i] = c.backing.ReadInstr(base + i*4)
	}

	victim.Tag = tag
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return line
}

// Resident reports whether the line holding pc is cached.
func (c *Cache) Resident(pc uint32) bool {
	if !Cacheable(pc) {
		return false
	}
	block := c.directory.Lookup(0, lineTag(pc))
	return block != nil && block.IsValid
}

// InvalidateLine drops the line holding pc. Uncached addresses are ignored.
func (c *Cache) InvalidateLine(pc uint32) {
	if !Cacheable(pc) {
		return
	}
	c.invalidate(lineTag(pc))
}

func (c *Cache) invalidate(tag uint64) {
	block := c.directory.Lookup(0, tag)
	if block != nil && block.IsValid {
		block.IsValid = false
		c.stats.Invalidations++
	}
}

// InvalidateRange drops every line overlapping [addr, addr+size), whatever
// window addr is expressed in.
func (c *Cache) InvalidateRange(addr, size uint32) {
	if size == 0 {
		return
	}
	if size > tagMask {
		c.InvalidateAll()
		return
	}
	start := addr &^ (LineSize - 1)
	end := uint64(addr) + uint64(size)
	for a := uint64(start); a < end; a += LineSize {
		c.invalidate(lineTag(uint32(a)))
	}
}

// InvalidateAll drops every line.
func (c *Cache) InvalidateAll() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}
