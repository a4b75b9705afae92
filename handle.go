package ecs

// EntityHandle is a value pair of a World and an EntityID. It carries no
// storage of its own and may be copied freely (spec.md §9 "Handle vs
// entity"). Equality is same-world-same-id; truthiness is "does this id
// currently carry any component", which lets code that stored a stale
// handle detect a batched destruction without re-querying the World
// directly (spec.md §7, the collisionResolutionSystem pattern).
type EntityHandle struct {
	world *World
	id    EntityID
}

// ID returns the handle's entity id.
func (h EntityHandle) ID() EntityID {
	return h.id
}

// World returns the World the handle belongs to.
func (h EntityHandle) World() *World {
	return h.world
}

// Alive reports whether the handle's entity currently carries any
// component. Equivalent to the C++ operator bool: a handle to a destroyed
// (mask-zero) entity is falsy. The check reads the mask stored under the id,
// so once the id is recycled and the new entity gains a component, an old
// handle to it reads truthy again.
func (h EntityHandle) Alive() bool {
	return h.world.ComponentMask(h.id) != 0
}

// Equal reports whether two handles refer to the same entity in the same
// World.
func (h EntityHandle) Equal(other EntityHandle) bool {
	return h.world == other.world && h.id == other.id
}

// Destroy forwards to World.DestroyEntity.
func (h EntityHandle) Destroy() {
	h.world.DestroyEntity(h.id)
}

// AddComponentTo attaches a T built from v to the handle's entity. Go
// methods can't carry their own type parameters, so this free function
// (rather than a generic EntityHandle.Add) is the handle-based add entry
// point.
func AddComponentTo[T any](h EntityHandle, v T) *T {
	return AddComponent[T](h.world, h.id, v)
}

// Has reports whether the handle's entity carries a T.
func Has[T any](h EntityHandle) bool {
	return HasComponent[T](h.world, h.id)
}

// Get returns a pointer to the handle's T. Requires the entity to carry
// one; panics otherwise. Use GetOrAdd for the create-if-absent variant.
func Get[T any](h EntityHandle) *T {
	return GetComponent[T](h.world, h.id)
}

// GetOrAdd returns a pointer to the handle's T, attaching a zero-value T
// first if the entity doesn't already carry one. This is the Go rendition
// of the C++ EntityHandle::get<T, addIfNotPresent=true>, gated there on
// std::is_default_constructible; every Go type has a zero value, so the
// gate is unconditional here.
func GetOrAdd[T any](h EntityHandle) *T {
	if !Has[T](h) {
		var zero T
		AddComponent[T](h.world, h.id, zero)
	}
	return Get[T](h)
}

// Remove detaches the handle's T. Requires the entity to carry one; panics
// otherwise.
func Remove[T any](h EntityHandle) {
	RemoveComponent[T](h.world, h.id)
}
