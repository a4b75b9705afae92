// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query mem.prof

package main

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/pfirsich/ecs"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

type comp3 struct {
	V int64
	W int64
}

type comp4 struct {
	V int64
	W int64
}

func main() {
	// CPU Profiling
	f, _ := os.Create("cpu.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()

	count := 50
	iters := 10000
	entities := 100000
	run(count, iters, entities)

	// Memory Profiling
	memFile, _ := os.Create("mem.prof")
	defer memFile.Close()
	runtime.GC()
	_ = pprof.WriteHeapProfile(memFile)
}

// run builds a single World of numEntities carrying comp1 through comp4 and
// re-dispatches a 4-component tickSystem over it every iteration, holding
// the entity set fixed, so the profile shows the steady-state cost of a
// parallelFor dispatch, which scans every allocated id in [0, EntityCount).
func run(rounds, iters, numEntities int) {
	for range rounds {
		w := ecs.NewWorld()
		for range numEntities {
			h := w.CreateEntity()
			ecs.AddComponentTo(h, comp1{})
			ecs.AddComponentTo(h, comp2{})
			ecs.AddComponentTo(h, comp3{})
			ecs.AddComponentTo(h, comp4{})
		}
		w.FlushAll()

		for range iters {
			ecs.TickSystem4[comp1, comp2, comp3, comp4](
				w, ecs.ReadWrite, ecs.ReadOnly, ecs.ReadOnly, ecs.ReadOnly, false, true,
				func(c1 *comp1, c2 *comp2, c3 *comp3, c4 *comp4) {
					c1.V += c2.V + c3.V + c4.V
					c1.W += c2.W + c3.W + c4.W
				},
			)
		}
	}
}
