package ecs

import "iter"

// entitiesWithMask returns a forward sequence of handles to every valid
// entity whose mask is a superset of m, in ascending id order. This is the
// shared engine behind EntitiesWith1..4; spec.md only requires ascending
// order for sequential iteration, which this always is — entitiesWith has
// no parallel variant.
func entitiesWithMask(w *World, m ComponentMask) iter.Seq[EntityHandle] {
	return func(yield func(EntityHandle) bool) {
		count := w.entities.count()
		for id := EntityID(0); id < EntityID(count); id++ {
			if !w.entities.isValid(id) || !w.entities.hasComponents(id, m) {
				continue
			}
			if !yield(EntityHandle{world: w, id: id}) {
				return
			}
		}
	}
}

// EntitiesWith1 yields every valid entity carrying a T1.
func EntitiesWith1[T1 any](w *World) iter.Seq[EntityHandle] {
	return entitiesWithMask(w, MaskOf1[T1]())
}

// EntitiesWith2 yields every valid entity carrying both T1 and T2.
func EntitiesWith2[T1, T2 any](w *World) iter.Seq[EntityHandle] {
	return entitiesWithMask(w, MaskOf2[T1, T2]())
}

// EntitiesWith3 yields every valid entity carrying T1, T2 and T3.
func EntitiesWith3[T1, T2, T3 any](w *World) iter.Seq[EntityHandle] {
	return entitiesWithMask(w, MaskOf3[T1, T2, T3]())
}

// EntitiesWith4 yields every valid entity carrying T1 through T4.
func EntitiesWith4[T1, T2, T3, T4 any](w *World) iter.Seq[EntityHandle] {
	return entitiesWithMask(w, MaskOf4[T1, T2, T3, T4]())
}
