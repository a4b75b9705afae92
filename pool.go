package ecs

import "github.com/pfirsich/ecs/internal/errs"

// pool is the type-erased operations a World needs on every component pool
// regardless of T, mirroring the ComponentPoolBase virtual interface in
// original_source/ecs/include/ecs.hpp: destroyEntity walks every registered
// pool by id and calls remove(id) on whichever ones the entity's mask says
// are present. Typed access (add/get) goes through componentPool[T]
// directly; the id-to-type mapping in the component registry is what makes
// that downcast safe.
type pool interface {
	has(e EntityID) bool
	remove(e EntityID)
	blockStats() (allocated, live int)
}

// block is one page of a componentPool: a fixed-size, lazily-allocated
// backing slice plus an occupancy bitset. Its storage exists iff occupied
// is non-empty (invariant 6); the block record itself is kept around so
// block indices stay stable for the lifetime of the pool.
type block[T any] struct {
	data     []T
	occupied []uint64 // one bit per slot, words of 64
	liveSlot int      // count of occupied bits, so emptiness is checked in O(1)
}

func newBlock[T any](size int) *block[T] {
	return &block[T]{occupied: make([]uint64, (size+63)/64)}
}

func (b *block[T]) isOccupied(slot int) bool {
	return b.occupied[slot/64]&(uint64(1)<<(uint(slot)%64)) != 0
}

func (b *block[T]) setOccupied(slot int) {
	b.occupied[slot/64] |= uint64(1) << (uint(slot) % 64)
	b.liveSlot++
}

func (b *block[T]) clearOccupied(slot int) {
	b.occupied[slot/64] &^= uint64(1) << (uint(slot) % 64)
	b.liveSlot--
}

// componentPool stores at most one T per entity id, in an ordered sequence
// of blocks. Slot lookup is the direct (e / blockSize, e % blockSize)
// computation described in spec.md §4.2 — no indirection table.
type componentPool[T any] struct {
	blocks    []*block[T]
	blockSize int
	id        ComponentID
}

func newComponentPool[T any](id ComponentID) *componentPool[T] {
	return &componentPool[T]{blockSize: blockSizeFor(id), id: id}
}

func (p *componentPool[T]) indices(e EntityID) (blockIdx, slot int) {
	return int(e) / p.blockSize, int(e) % p.blockSize
}

// add constructs v in place at e's slot and returns a pointer to it.
// Requires the slot to be empty (invariant 4); panics otherwise.
func (p *componentPool[T]) add(e EntityID, v T) *T {
	blockIdx, slot := p.indices(e)
	for len(p.blocks) <= blockIdx {
		p.blocks = append(p.blocks, nil)
	}
	b := p.blocks[blockIdx]
	if b == nil {
		b = newBlock[T](p.blockSize)
		p.blocks[blockIdx] = b
	}
	if b.isOccupied(slot) {
		panic(errs.Precondition("add: entity %d already has a %T", e, *new(T)).Error())
	}
	if b.data == nil {
		b.data = make([]T, p.blockSize)
	}
	b.data[slot] = v
	b.setOccupied(slot)
	return &b.data[slot]
}

// has reports whether e's slot is occupied.
func (p *componentPool[T]) has(e EntityID) bool {
	blockIdx, slot := p.indices(e)
	if blockIdx >= len(p.blocks) || p.blocks[blockIdx] == nil {
		return false
	}
	return p.blocks[blockIdx].isOccupied(slot)
}

// get returns a pointer to e's in-place instance. Requires the slot to be
// occupied (invariant 4); panics otherwise.
func (p *componentPool[T]) get(e EntityID) *T {
	blockIdx, slot := p.indices(e)
	if blockIdx >= len(p.blocks) || p.blocks[blockIdx] == nil || !p.blocks[blockIdx].isOccupied(slot) {
		panic(errs.Precondition("get: entity %d has no %T", e, *new(T)).Error())
	}
	return &p.blocks[blockIdx].data[slot]
}

// remove destroys e's in-place instance and clears its occupancy bit. If
// the owning block becomes empty its storage is released, though the block
// record stays so block indices remain stable (invariant 6).
func (p *componentPool[T]) remove(e EntityID) {
	blockIdx, slot := p.indices(e)
	if blockIdx >= len(p.blocks) || p.blocks[blockIdx] == nil || !p.blocks[blockIdx].isOccupied(slot) {
		panic(errs.Precondition("remove: entity %d has no %T", e, *new(T)).Error())
	}
	b := p.blocks[blockIdx]
	var zero T
	b.data[slot] = zero // drop references so the GC can reclaim them
	b.clearOccupied(slot)
	if b.liveSlot == 0 {
		b.data = nil
	}
}

// blockStats reports the number of block records and how many of them
// currently have live (non-nil) storage. Used by tests exercising
// invariant 7.
func (p *componentPool[T]) blockStats() (allocated, live int) {
	allocated = len(p.blocks)
	for _, b := range p.blocks {
		if b != nil && b.data != nil {
			live++
		}
	}
	return
}
