// Package ecs implements a small, cache-friendly Entity-Component-System
// runtime: entity ids with a recyclable free list, paged per-component-type
// storage, and a system dispatcher that derives read/write masks from a
// system's component-access signature to run independent systems
// concurrently.
package ecs

import (
	"reflect"
	"sync"

	"github.com/pfirsich/ecs/internal/errs"
)

// ComponentID is the small integer a component type is assigned the first
// time it is touched. Ids are process-global: two Worlds in the same process
// share the id space, so the 64-type ceiling below is shared too.
type ComponentID uint8

const (
	// MaxComponents is the number of distinct component types a process may
	// register. A ComponentMask is a single 64-bit word, so this is fixed.
	MaxComponents = 64

	// DefaultBlockSize is the pool block size used for a component type that
	// does not implement BlockSizer.
	DefaultBlockSize = 64
)

// ComponentMask is a bitset over ComponentIDs describing which components an
// entity, or a query, requires.
type ComponentMask uint64

// Has reports whether every bit set in sub is also set in m.
func (m ComponentMask) Has(sub ComponentMask) bool {
	return m&sub == sub
}

// Intersects reports whether m and other share any set bit.
func (m ComponentMask) Intersects(other ComponentMask) bool {
	return m&other != 0
}

// Bit returns the single-bit mask for a ComponentID.
func (id ComponentID) Bit() ComponentMask {
	return ComponentMask(1) << ComponentMask(id)
}

// BlockSizer lets a component type declare a non-default pool block size.
// Absent this method, a pool uses DefaultBlockSize. This is the Go
// equivalent of the C++ SFINAE overload in original_source/ecs/include,
// which resolves a static T::BLOCK_SIZE at compile time via two overloads
// of getBlockSizeImpl and an ellipsis fallback: Go has no such trick, so the
// same decision is made once at registration time via a duck-typed
// interface assertion on the zero value.
type BlockSizer interface {
	BlockSize() int
}

var registry = componentIDRegistry{
	typeToID: make(map[reflect.Type]ComponentID, MaxComponents),
}

// componentIDRegistry assigns component ids on first use from a
// monotonically increasing counter. It is a package-level singleton
// (spec.md §4.1, §9 "Global component-id counter") so that a ComponentMask
// bit has one meaning across every World in the process.
type componentIDRegistry struct {
	mu       sync.RWMutex
	typeToID map[reflect.Type]ComponentID
	idToSpec [MaxComponents]componentSpec
	next     ComponentID
}

type componentSpec struct {
	typ       reflect.Type
	blockSize int
}

// idFor returns the id for T, assigning one on first use. Components and
// their read-only views map to the same id because ids are keyed by the
// unqualified struct type, not by a const/non-const distinction the Go type
// system doesn't carry.
func idFor[T any]() ComponentID {
	var zero T
	t := reflect.TypeOf(zero)

	registry.mu.RLock()
	if id, ok := registry.typeToID[t]; ok {
		registry.mu.RUnlock()
		return id
	}
	registry.mu.RUnlock()

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if id, ok := registry.typeToID[t]; ok {
		return id
	}
	if registry.next >= MaxComponents {
		panic(errs.Precondition("cannot register component %s: maximum of %d component types exceeded", t, MaxComponents).Error())
	}
	id := registry.next
	registry.next++

	blockSize := DefaultBlockSize
	if bs, ok := any(zero).(BlockSizer); ok {
		blockSize = bs.BlockSize()
	}
	registry.typeToID[t] = id
	registry.idToSpec[id] = componentSpec{typ: t, blockSize: blockSize}
	return id
}

// blockSizeFor returns the configured block size for an already-registered
// component id.
func blockSizeFor(id ComponentID) int {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.idToSpec[id].blockSize
}

// resetComponentRegistry clears the process-global component id registry.
// Exercised by tests only, so that each test file can assume a fresh id
// space instead of depending on registration order across the package.
func resetComponentRegistry() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.typeToID = make(map[reflect.Type]ComponentID, MaxComponents)
	registry.idToSpec = [MaxComponents]componentSpec{}
	registry.next = 0
}
