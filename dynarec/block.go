package dynarec

import "github.com/sarchlab/r3ksim/emu"

// pageShift sizes the invalidation index: 4 KiB of guest memory per page.
const pageShift = 12

// physicalMask folds the KUSEG, KSEG0 and KSEG1 windows onto one address.
const physicalMask = 0x1fffffff

// op is one pre-decoded guest instruction.
type op struct {
	pc   uint32
	code uint32
	exec emu.StepFunc
}

// block is a straight-line run of guest code ending after a branch and its
// delay slot, an exception-raising instruction, a page boundary or the
// length limit.
type block struct {
	start uint32
	ops   []op
}

// end returns the address just past the last translated word.
func (b *block) end() uint32 {
	return b.start + uint32(4*len(b.ops))
}

func physPage(addr uint32) uint32 {
	return (addr & physicalMask) >> pageShift
}

// pages returns the physical pages covered by the block.
func (b *block) pages() []uint32 {
	first := physPage(b.start)
	last := physPage(b.end() - 4)
	if last == first {
		return []uint32{first}
	}
	return []uint32{first, last}
}

// blockCache maps guest PCs to translations, with a per-page index used by
// range invalidation.
type blockCache struct {
	blocks map[uint32]*block
	pages  map[uint32]map[uint32]struct{}
}

func newBlockCache() *blockCache {
	return &blockCache{
		blocks: make(map[uint32]*block),
		pages:  make(map[uint32]map[uint32]struct{}),
	}
}

func (bc *blockCache) get(pc uint32) *block {
	return bc.blocks[pc]
}

func (bc *blockCache) put(b *block) {
	bc.blocks[b.start] = b
	for _, p := range b.pages() {
		set := bc.pages[p]
		if set == nil {
			set = make(map[uint32]struct{})
			bc.pages[p] = set
		}
		set[b.start] = struct{}{}
	}
}

// remove drops b if it is still the translation registered at its PC.
func (bc *blockCache) remove(b *block) bool {
	if bc.blocks[b.start] != b {
		return false
	}
	delete(bc.blocks, b.start)
	for _, p := range b.pages() {
		delete(bc.pages[p], b.start)
		if len(bc.pages[p]) == 0 {
			delete(bc.pages, p)
		}
	}
	return true
}

// removeRange drops every block on a page overlapping [addr, addr+size)
// and returns how many were dropped.
func (bc *blockCache) removeRange(addr, size uint32) int {
	if size == 0 {
		return 0
	}
	if size > physicalMask {
		n := len(bc.blocks)
		bc.clear()
		return n
	}

	first := physPage(addr)
	count := (addr&(1<<pageShift-1)+size-1)>>pageShift + 1
	var victims []*block
	for i := uint32(0); i < count; i++ {
		p := (first + i) & (physicalMask >> pageShift)
		for start := range bc.pages[p] {
			victims = append(victims, bc.blocks[start])
		}
	}

	n := 0
	for _, b := range victims {
		if bc.remove(b) {
			n++
		}
	}
	return n
}

func (bc *blockCache) clear() {
	bc.blocks = make(map[uint32]*block)
	bc.pages = make(map[uint32]map[uint32]struct{})
}

func (bc *blockCache) len() int {
	return len(bc.blocks)
}
