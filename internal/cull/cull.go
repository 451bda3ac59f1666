// Package cull implements a refcount-based dead-pass elimination
// sweep over a recorded frame graph.
package cull

import "github.com/fkaa/framegraph/internal/restab"

// PassAccess is one pass's access list, in declaration order, indexed
// by the pre-cull pass index.
type PassAccess struct {
	Accesses []restab.ResourceAccess
}

// Result is the outcome of a cull pass.
type Result struct {
	// Survivors holds the original (pre-cull) pass indices that
	// survive, in ascending declaration order.
	Survivors []int
	// ResourceRefCount is indexed by resource id and holds each
	// resource's final read refcount (0 for a culled resource).
	ResourceRefCount []int
}

// Cull runs the sweep over nresource resources and the given passes.
// Doomed passes are tracked directly by index and removed from the
// pass list in one pass, with no dependency on lifetime data (which
// isn't available yet at this stage of compilation).
//
// A pass that performs no writes starts with a write-refcount of
// zero and is never any resource's producer, so it can never be
// reached by the decrement walk below: it survives unconditionally,
// which is what keeps a side-effect-only pass (e.g. clearing the
// swapchain) from being culled.
func Cull(nresource int, passes []PassAccess) Result {
	resRead := make([]int, nresource)
	resProducer := make([]int, nresource)
	for i := range resProducer {
		resProducer[i] = -1
	}
	passWrite := make([]int, len(passes))

	for pi, p := range passes {
		for _, a := range p.Accesses {
			switch {
			case a.Access.IsRead():
				resRead[a.Resource]++
			case a.Access.IsWrite():
				passWrite[pi]++
				resProducer[a.Resource] = pi
			}
		}
	}

	dead := make([]bool, len(passes))
	worklist := make([]uint32, 0, nresource)
	for r := 0; r < nresource; r++ {
		if resRead[r] == 0 {
			worklist = append(worklist, uint32(r))
		}
	}

	for len(worklist) > 0 {
		r := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		pi := resProducer[r]
		if pi < 0 || dead[pi] {
			continue
		}
		passWrite[pi]--
		if passWrite[pi] > 0 {
			continue
		}
		dead[pi] = true
		for _, a := range passes[pi].Accesses {
			if a.Access.IsRead() {
				resRead[a.Resource]--
				if resRead[a.Resource] == 0 {
					worklist = append(worklist, a.Resource)
				}
			}
		}
	}

	survivors := make([]int, 0, len(passes))
	for i, d := range dead {
		if !d {
			survivors = append(survivors, i)
		}
	}
	return Result{Survivors: survivors, ResourceRefCount: resRead}
}
