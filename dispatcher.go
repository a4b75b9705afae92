package ecs

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// runningSystem records one asynchronously dispatched system: its derived
// masks and the goroutine group running it. Grounded on
// original_source/ecs/include/ecs.hpp's RunningSystem (readMask, writeMask,
// std::thread, threadJoined); the single std::thread is replaced by a
// size-one errgroup.Group so joining goes through the same Wait() call a
// parallel-for dispatch's own fan-out already uses.
type runningSystem struct {
	readMask  ComponentMask
	writeMask ComponentMask
	group     errgroup.Group
	joined    bool
}

func (rs *runningSystem) join() {
	if rs.joined {
		return
	}
	_ = rs.group.Wait() // the dispatched closure never returns an error; a panic crashes the process, matching spec.md §4.4 failure semantics
	rs.joined = true
}

// waitForConflicting scans the running-systems list and joins every system
// whose write mask conflicts with the mask about to be dispatched, then
// purges every joined entry. Only writes create conflicts: two readers of
// the same component may run concurrently (spec.md §4.4 "Scheduling rule").
func (w *World) waitForConflicting(readMask, writeMask ComponentMask) {
	full := readMask | writeMask
	waited := false
	for _, rs := range w.running {
		if rs.joined {
			continue
		}
		if rs.writeMask.Intersects(full) {
			waited = true
			rs.join()
		}
	}
	if !waited {
		return
	}
	kept := w.running[:0]
	for _, rs := range w.running {
		if !rs.joined {
			kept = append(kept, rs)
		}
	}
	w.running = kept
	w.emit(Event{Kind: EventSystemWait})
}

// forEachMatching visits every valid entity id in [0, EntityCount) whose
// mask is a superset of m. Sequential dispatch visits in ascending id
// order; parallel dispatch statically partitions the id range into
// runtime.GOMAXPROCS contiguous chunks, one goroutine per chunk — the Go
// substitute for std::execution::par documented in SPEC_FULL.md (no
// work-stealing pool is implemented from scratch).
func (w *World) forEachMatching(m ComponentMask, parallel bool, visit func(EntityID)) {
	count := w.entities.count()
	if !parallel {
		for id := EntityID(0); id < EntityID(count); id++ {
			if w.entities.isValid(id) && w.entities.hasComponents(id, m) {
				visit(id)
			}
		}
		return
	}
	if count == 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > count {
		workers = count
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (count + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < count; start += chunk {
		end := start + chunk
		if end > count {
			end = count
		}
		start, end := start, end
		g.Go(func() error {
			for id := EntityID(start); id < EntityID(end); id++ {
				if w.entities.isValid(id) && w.entities.hasComponents(id, m) {
					visit(id)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// dispatch implements the common shape of tickSystem: wait out conflicting
// running systems, then either run visit over the matching entities inline
// or spawn it on its own goroutine and record it as a running system.
func (w *World) dispatch(readMask, writeMask ComponentMask, async, parallelFor bool, m ComponentMask, visit func(EntityID)) {
	w.waitForConflicting(readMask, writeMask)
	run := func() {
		w.forEachMatching(m, parallelFor, visit)
	}
	if !async {
		run()
		return
	}
	rs := &runningSystem{readMask: readMask, writeMask: writeMask}
	rs.group.Go(func() error {
		run()
		return nil
	})
	w.running = append(w.running, rs)
}

// TickSystem1 dispatches fn over every valid entity carrying a T1.
func TickSystem1[T1 any](w *World, a1 Access, async, parallelFor bool, fn func(*T1)) {
	r1, wr1 := maskFor[T1](a1)
	m := r1 | wr1
	w.dispatch(r1, wr1, async, parallelFor, m, func(id EntityID) {
		fn(GetComponent[T1](w, id))
	})
}

// TickSystem1E is TickSystem1 for a callable that also wants the entity
// handle as its first argument.
func TickSystem1E[T1 any](w *World, a1 Access, async, parallelFor bool, fn func(EntityHandle, *T1)) {
	r1, wr1 := maskFor[T1](a1)
	m := r1 | wr1
	w.dispatch(r1, wr1, async, parallelFor, m, func(id EntityID) {
		fn(EntityHandle{world: w, id: id}, GetComponent[T1](w, id))
	})
}

// TickSystem2 dispatches fn over every valid entity carrying both T1 and T2.
func TickSystem2[T1, T2 any](w *World, a1, a2 Access, async, parallelFor bool, fn func(*T1, *T2)) {
	r1, wr1 := maskFor[T1](a1)
	r2, wr2 := maskFor[T2](a2)
	m := r1 | wr1 | r2 | wr2
	w.dispatch(r1|r2, wr1|wr2, async, parallelFor, m, func(id EntityID) {
		fn(GetComponent[T1](w, id), GetComponent[T2](w, id))
	})
}

// TickSystem2E is TickSystem2 with the entity handle as the first argument.
func TickSystem2E[T1, T2 any](w *World, a1, a2 Access, async, parallelFor bool, fn func(EntityHandle, *T1, *T2)) {
	r1, wr1 := maskFor[T1](a1)
	r2, wr2 := maskFor[T2](a2)
	m := r1 | wr1 | r2 | wr2
	w.dispatch(r1|r2, wr1|wr2, async, parallelFor, m, func(id EntityID) {
		fn(EntityHandle{world: w, id: id}, GetComponent[T1](w, id), GetComponent[T2](w, id))
	})
}

// TickSystem3 dispatches fn over every valid entity carrying T1, T2 and T3.
func TickSystem3[T1, T2, T3 any](w *World, a1, a2, a3 Access, async, parallelFor bool, fn func(*T1, *T2, *T3)) {
	r1, wr1 := maskFor[T1](a1)
	r2, wr2 := maskFor[T2](a2)
	r3, wr3 := maskFor[T3](a3)
	m := r1 | wr1 | r2 | wr2 | r3 | wr3
	w.dispatch(r1|r2|r3, wr1|wr2|wr3, async, parallelFor, m, func(id EntityID) {
		fn(GetComponent[T1](w, id), GetComponent[T2](w, id), GetComponent[T3](w, id))
	})
}

// TickSystem3E is TickSystem3 with the entity handle as the first argument.
func TickSystem3E[T1, T2, T3 any](w *World, a1, a2, a3 Access, async, parallelFor bool, fn func(EntityHandle, *T1, *T2, *T3)) {
	r1, wr1 := maskFor[T1](a1)
	r2, wr2 := maskFor[T2](a2)
	r3, wr3 := maskFor[T3](a3)
	m := r1 | wr1 | r2 | wr2 | r3 | wr3
	w.dispatch(r1|r2|r3, wr1|wr2|wr3, async, parallelFor, m, func(id EntityID) {
		fn(EntityHandle{world: w, id: id}, GetComponent[T1](w, id), GetComponent[T2](w, id), GetComponent[T3](w, id))
	})
}

// TickSystem4 dispatches fn over every valid entity carrying T1..T4.
func TickSystem4[T1, T2, T3, T4 any](w *World, a1, a2, a3, a4 Access, async, parallelFor bool, fn func(*T1, *T2, *T3, *T4)) {
	r1, wr1 := maskFor[T1](a1)
	r2, wr2 := maskFor[T2](a2)
	r3, wr3 := maskFor[T3](a3)
	r4, wr4 := maskFor[T4](a4)
	m := r1 | wr1 | r2 | wr2 | r3 | wr3 | r4 | wr4
	w.dispatch(r1|r2|r3|r4, wr1|wr2|wr3|wr4, async, parallelFor, m, func(id EntityID) {
		fn(GetComponent[T1](w, id), GetComponent[T2](w, id), GetComponent[T3](w, id), GetComponent[T4](w, id))
	})
}

// TickSystem4E is TickSystem4 with the entity handle as the first argument.
func TickSystem4E[T1, T2, T3, T4 any](w *World, a1, a2, a3, a4 Access, async, parallelFor bool, fn func(EntityHandle, *T1, *T2, *T3, *T4)) {
	r1, wr1 := maskFor[T1](a1)
	r2, wr2 := maskFor[T2](a2)
	r3, wr3 := maskFor[T3](a3)
	r4, wr4 := maskFor[T4](a4)
	m := r1 | wr1 | r2 | wr2 | r3 | wr3 | r4 | wr4
	w.dispatch(r1|r2|r3|r4, wr1|wr2|wr3|wr4, async, parallelFor, m, func(id EntityID) {
		fn(EntityHandle{world: w, id: id}, GetComponent[T1](w, id), GetComponent[T2](w, id), GetComponent[T3](w, id), GetComponent[T4](w, id))
	})
}
