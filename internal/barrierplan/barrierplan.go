// Package barrierplan implements the per-resource state machine that
// decides, for every surviving pass, which ResourceTransition records
// must be emitted as barriers before that pass runs.
//
// Reads batch: consecutive read accesses to a resource fold into a
// single transition into the union of the read flags involved.
// Writes never batch with each other or with reads: each write forces
// a transition into exactly that write's flags.
package barrierplan

import "github.com/fkaa/framegraph/internal/restab"

// Transition is a single barrier to emit before the pass it is
// attached to, translating resource r from one access state to
// another.
type Transition struct {
	Resource uint32
	From, To restab.Access
}

// Plan is the outcome of running the state machine over one frame's
// surviving passes.
type Plan struct {
	// PerPass holds, for each post-cull pass index, the transitions
	// that must be emitted as barriers before that pass executes.
	PerPass [][]Transition
	// Final holds each resource's access state as of the end of the
	// frame, to seed the next frame's carry-over.
	Final []restab.Access
	// Aggregate holds the union of every access flag ever observed
	// for each resource this frame. The framegraph writes this into
	// the resource descriptor's creation flags.
	Aggregate []restab.Access
}

// resState tracks one resource's progress through the passes.
type resState struct {
	current   restab.Access
	prev      restab.Access
	cachePass int // index of the pass whose barrier slot holds the pending transition, or -1
	prevPass  int
	seen      bool // whether a carry-over (if any) has already been consumed
}

// Run runs the barrier-planning state machine.
//
// passAccesses is indexed by post-cull pass index and holds, for each
// pass, the (resource, access) tuples it declared, in declaration
// order. nresource is the number of resources in the frame.
// carry, when non-nil, gives each resource's final access state from
// the previous frame's compile; a resource absent from carry has no
// carry-over.
func Run(npass, nresource int, passAccesses [][]restab.ResourceAccess, carry map[uint32]restab.Access) Plan {
	perPass := make([][]Transition, npass)
	st := make([]resState, nresource)
	for i := range st {
		st[i].cachePass = -1
		st[i].prevPass = -1
	}
	aggregate := make([]restab.Access, nresource)

	flush := func(r uint32, pass int, from, to restab.Access) {
		perPass[pass] = append(perPass[pass], Transition{Resource: r, From: from, To: to})
	}

	for pi, accs := range passAccesses {
		for _, a := range accs {
			r := a.Resource
			t := a.Access
			s := &st[r]
			aggregate[r] |= t

			if !s.seen {
				s.seen = true
				if from, ok := carry[r]; ok {
					flush(r, pi, from, t)
				}
			}

			if t.IsWrite() {
				// Step A: a pending read batch closes out
				// regardless of what follows.
				if s.current.IsRead() && s.cachePass >= 0 {
					flush(r, s.cachePass, s.prev, s.current)
					s.prev = s.current
					s.cachePass = -1
				}
				// Step B: either flush the still-pending
				// transition and start a new one, or (if
				// nothing was pending) open one now.
				if s.cachePass >= 0 {
					flush(r, s.cachePass, s.prev, s.current)
					s.cachePass = s.prevPass
					s.prev = s.current
					s.current = t
				} else {
					if s.prev == 0 {
						s.prev = t
					}
					s.current = t
					s.cachePass = pi
				}
			} else {
				if s.current.IsWrite() {
					s.prev = s.current
					s.cachePass = pi
					s.current = t
				}
				s.current |= t
			}
			s.prevPass = pi
		}
	}

	final := make([]restab.Access, nresource)
	for r := range st {
		s := &st[r]
		if s.prev != s.current && s.cachePass >= 0 {
			flush(uint32(r), s.cachePass, s.prev, s.current)
		}
		final[r] = s.current
	}

	return Plan{PerPass: perPass, Final: final, Aggregate: aggregate}
}
