package ecs

import (
	"sync"

	"github.com/pfirsich/ecs/internal/errs"
)

// World owns an entity registry, one pool per registered component type,
// and the bookkeeping for currently-running systems. It is an ordinary
// value the caller constructs and owns; there is no global World (spec.md
// Non-goals).
type World struct {
	mu          sync.Mutex // serializes create, destroy, add, remove
	entities    entityRegistry
	pools       [MaxComponents]pool
	running     []*runningSystem
	mutation    uint64
	diagnostics func(Event)
}

// NewWorld returns an empty World.
func NewWorld() *World {
	return &World{}
}

// MutationVersion returns a counter incremented by every structural
// mutation (create, destroy, add, remove). It is not part of the reference
// design; it is a cheap, race-free way for a consumer or a test to ask
// "did anything change" without diffing masks.
func (w *World) MutationVersion() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mutation
}

func (w *World) bumpMutation() {
	w.mutation++
}

// CreateEntity allocates a new entity id and returns a handle to it. The
// entity is invalid — skipped by iteration and by tickSystem — until it is
// flushed, either individually via Flush or in bulk via FlushAll /
// FinishTick (spec.md §4.3 "Why the valid flag").
func (w *World) CreateEntity() EntityHandle {
	w.mu.Lock()
	id := w.entities.create()
	w.bumpMutation()
	w.mu.Unlock()
	w.emit(Event{Kind: EventEntityCreated, Entity: id})
	return EntityHandle{world: w, id: id}
}

// Handle returns a handle to an entity id that has existed in this World
// (it may since have been destroyed; use the handle's truthiness to check).
func (w *World) Handle(id EntityID) EntityHandle {
	return EntityHandle{world: w, id: id}
}

// DestroyEntity removes every component the entity currently carries,
// clears its mask, and pushes its id onto the free list for reuse. The
// entity becomes immediately invisible to iteration — unlike creation,
// destruction needs no flush (spec.md §3 lifecycle).
func (w *World) DestroyEntity(id EntityID) {
	w.mu.Lock()
	mask := w.entities.mask(id)
	for cid := ComponentID(0); cid < MaxComponents; cid++ {
		if mask.Has(cid.Bit()) && w.pools[cid] != nil {
			w.pools[cid].remove(id)
		}
	}
	w.entities.destroyMask(id)
	w.bumpMutation()
	w.mu.Unlock()
	w.emit(Event{Kind: EventEntityDestroyed, Entity: id})
}

// ComponentMask returns the entity's current component mask.
func (w *World) ComponentMask(id EntityID) ComponentMask {
	return w.entities.mask(id)
}

// HasComponents reports whether id carries every component bit set in m.
func (w *World) HasComponents(id EntityID, m ComponentMask) bool {
	return w.entities.hasComponents(id, m)
}

// IsValid reports whether id is currently flushed and visible to
// iteration. A destroyed id is never valid.
func (w *World) IsValid(id EntityID) bool {
	return w.entities.isValid(id)
}

// EntityCount returns the dense upper bound on entity ids ever allocated —
// the size of the mask array, matching the C++ getEntityCount. Destroyed
// ids stay below this bound, ready for reuse by the free list.
func (w *World) EntityCount() int {
	return w.entities.count()
}

// Flush marks a single entity valid, making it visible to iteration and to
// tickSystem from the next dispatch onward.
func (w *World) Flush(id EntityID) {
	w.entities.flush(id)
}

// FlushAll marks every entity valid.
func (w *World) FlushAll() {
	w.entities.flushAll()
}

// JoinSystemThreads blocks until every currently-running asynchronous
// system has completed, then clears the running-systems list.
func (w *World) JoinSystemThreads() {
	for _, rs := range w.running {
		rs.join()
	}
	w.running = w.running[:0]
}

// FinishTick is the tick boundary: it joins every running system and then
// flushes every entity, establishing invariant 6 (no running workers,
// every live entity valid).
func (w *World) FinishTick() {
	w.JoinSystemThreads()
	w.FlushAll()
	w.emit(Event{Kind: EventTickFinished})
}

// getPool returns the pool for T, allocating it (and registering the
// component type) if alloc is true and it doesn't exist yet.
func getPool[T any](w *World, alloc bool) (*componentPool[T], ComponentID) {
	id := idFor[T]()
	if w.pools[id] == nil {
		if !alloc {
			return nil, id
		}
		w.pools[id] = newComponentPool[T](id)
	}
	return w.pools[id].(*componentPool[T]), id
}

// AddComponent constructs a T for entity id from v and attaches it.
// Requires id not already carry a T (invariant 4); panics otherwise.
func AddComponent[T any](w *World, id EntityID, v T) *T {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, cid := getPool[T](w, true)
	bit := cid.Bit()
	if w.entities.masks[id].Has(bit) {
		panic(errs.Precondition("add: entity %d already has a %T", id, *new(T)).Error())
	}
	ptr := p.add(id, v)
	w.entities.masks[id] |= bit
	w.bumpMutation()
	return ptr
}

// HasComponent reports whether id carries a T.
func HasComponent[T any](w *World, id EntityID) bool {
	return w.entities.hasComponents(id, idFor[T]().Bit())
}

// GetComponent returns a pointer to id's in-place T. Requires id to carry a
// T (invariant 4); panics otherwise.
func GetComponent[T any](w *World, id EntityID) *T {
	p, cid := getPool[T](w, false)
	if p == nil || !w.entities.hasComponents(id, cid.Bit()) {
		panic(errs.Precondition("get: entity %d has no %T", id, *new(T)).Error())
	}
	return p.get(id)
}

// RemoveComponent detaches id's T, running its destruction in place.
// Requires id to carry a T (invariant 4); panics otherwise.
func RemoveComponent[T any](w *World, id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, cid := getPool[T](w, false)
	bit := cid.Bit()
	if p == nil || !w.entities.masks[id].Has(bit) {
		panic(errs.Precondition("remove: entity %d has no %T", id, *new(T)).Error())
	}
	p.remove(id)
	w.entities.masks[id] &^= bit
	w.bumpMutation()
}
