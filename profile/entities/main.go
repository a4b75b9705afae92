// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/pfirsich/ecs"
	"github.com/pkg/profile"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	count := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(count, iters, entities)
	p.Stop()
}

// run repeatedly fills a World with numEntities carrying comp1+comp2, sums
// comp2 into comp1 over every one of them, then destroys them all — the
// create/add/iterate/destroy cycle the entity pool's block lifecycle
// (invariant 6) is meant to absorb without unbounded growth.
func run(rounds, iters, numEntities int) {
	for range rounds {
		w := ecs.NewWorld()

		for range iters {
			handles := make([]ecs.EntityHandle, 0, numEntities)
			for range numEntities {
				h := w.CreateEntity()
				ecs.AddComponentTo(h, comp1{})
				ecs.AddComponentTo(h, comp2{})
				handles = append(handles, h)
			}
			w.FlushAll()

			for h := range ecs.EntitiesWith2[comp1, comp2](w) {
				c1 := ecs.Get[comp1](h)
				c2 := ecs.Get[comp2](h)
				c1.V += c2.V
				c1.W += c2.W
			}

			for _, h := range handles {
				h.Destroy()
			}
		}
	}
}
