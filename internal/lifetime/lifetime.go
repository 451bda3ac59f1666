// Package lifetime computes each surviving resource's
// [first_use, last_use] pass-index interval.
package lifetime

import "github.com/fkaa/framegraph/internal/restab"

// Unset is the sentinel lifetime for a resource referenced by no
// surviving pass. This must never occur for a resource that survived
// culling; its producer should have been culled along with it.
var Unset = restab.Lifetime{Start: -1, End: -1}

// Compute returns, for each of nresource resources, its lifetime
// interval among the surviving passes. passAccesses is indexed by
// post-cull pass index, in execution order.
func Compute(nresource int, passAccesses [][]restab.ResourceAccess) []restab.Lifetime {
	out := make([]restab.Lifetime, nresource)
	for i := range out {
		out[i] = Unset
	}
	for pi, accs := range passAccesses {
		for _, a := range accs {
			iv := &out[a.Resource]
			if iv.Start == -1 {
				iv.Start = pi
			}
			iv.End = pi
		}
	}
	return out
}
