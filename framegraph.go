// Package framegraph compiles a per-frame declarative description of
// render passes into an optimized physical execution plan against an
// explicit, low-level GPU API: it culls passes whose outputs are
// unused, computes each transient resource's lifetime, packs
// transients into a minimal set of reusable physical heaps, emits the
// state-transition and aliasing barriers between passes, and
// dispatches the caller's per-pass callbacks against the resolved
// physical resources.
//
// A FrameGraph is used once per frame: Record (via AddPass) builds
// the declarative graph, Compile resolves it to physical resources
// and a barrier plan, Execute walks the plan and invokes callbacks,
// and Finish resets per-frame state for the next frame.
package framegraph

import (
	"github.com/fkaa/framegraph/device"
	"github.com/fkaa/framegraph/internal/barrierplan"
	"github.com/fkaa/framegraph/internal/bitset"
	"github.com/fkaa/framegraph/internal/cull"
	"github.com/fkaa/framegraph/internal/heap"
	"github.com/fkaa/framegraph/internal/lifetime"
	"github.com/fkaa/framegraph/internal/restab"
)

// ExecuteFunc is a pass's execute callback. The Executor invokes it
// once per Execute, after submitting that pass's barriers, with the
// resolved parameter block and a command recorder to submit work
// into. It must not re-enter the FrameGraph.
type ExecuteFunc func(rec device.CmdRecorder, params *ParamBlock)

// SetupFunc declares a pass's resources and accesses against b and
// returns the ExecuteFunc to run once Compile has resolved those
// accesses to physical handles.
type SetupFunc func(b *PassBuilder) ExecuteFunc

// pendingPass is one pass as recorded this frame, before culling.
type pendingPass struct {
	name     string
	accesses []restab.ResourceAccess
	layout   []layoutEntry
	execute  ExecuteFunc
}

// compiledPass is one surviving pass, fully resolved and ready for
// Execute.
type compiledPass struct {
	resources   []uint32
	transitions []barrierplan.Transition
	execute     ExecuteFunc
	params      *ParamBlock
}

// FrameGraph compiles and executes one frame's render graph at a
// time. It is not safe for concurrent use; Record, Compile, and
// Execute run sequentially on the caller's render thread.
type FrameGraph struct {
	dev   device.Device
	cfg   Config
	cache *heap.Cache

	table  *restab.Table
	passes []*pendingPass

	// carry holds each resource's access state at the end of the
	// previous compile, keyed by resource id, seeding the next
	// frame's barrier-planner carry-over.
	carry map[uint32]restab.Access

	compiled   []compiledPass
	aliased    bitset.Set[uint32]
	nativeByID map[uint32]device.Resource
	plan       barrierplan.Plan
}

// NewFrameGraph creates a FrameGraph bound to dev, with the given
// configuration. Zero-value Config fields take their documented
// default.
func NewFrameGraph(dev device.Device, cfg Config) (*FrameGraph, error) {
	cfg.setDefaults()
	c, err := heap.NewCache(dev, cfg.CacheSize, cfg.RTVCapacity, cfg.SRVCapacity)
	if err != nil {
		return nil, wrapCompile("new frame graph", "", err)
	}
	return &FrameGraph{
		dev:   dev,
		cfg:   cfg,
		cache: c,
		table: restab.NewTable(cfg.InitialCapacity),
		carry: make(map[uint32]restab.Access, cfg.InitialCapacity),
	}, nil
}

// AddPass records a new pass: setup is invoked immediately with a
// PassBuilder scoped to this pass, and its returned ExecuteFunc is
// retained to run at Execute time if the pass survives culling.
// Declaration order is execution order: the core never reorders
// passes.
func (fg *FrameGraph) AddPass(name string, setup SetupFunc) {
	pp := &pendingPass{name: name}
	b := &PassBuilder{fg: fg, pass: pp}
	pp.execute = setup(b)
	fg.passes = append(fg.passes, pp)
}

// Compile culls dead passes, computes lifetimes, plans barriers, and
// resolves every surviving resource to a physical placement, creating
// or reusing heaps, placed resources, and views as needed. It must be
// called exactly once between a frame's Record and its Execute.
//
// A non-nil error is always a *CompileError: a device failure the
// caller cannot recover from except by tearing down the FrameGraph.
func (fg *FrameGraph) Compile() error {
	nresource := len(fg.table.Resources)

	preCull := make([]cull.PassAccess, len(fg.passes))
	for i, p := range fg.passes {
		preCull[i] = cull.PassAccess{Accesses: p.accesses}
	}
	culled := cull.Cull(nresource, preCull)

	survivors := make([]*pendingPass, len(culled.Survivors))
	postAccesses := make([][]restab.ResourceAccess, len(culled.Survivors))
	for i, pi := range culled.Survivors {
		survivors[i] = fg.passes[pi]
		postAccesses[i] = fg.passes[pi].accesses
		Logger().Debug("pass survived culling", "name", fg.passes[pi].name, "index", i)
	}

	lifetimes := lifetime.Compute(nresource, postAccesses)
	plan := barrierplan.Run(len(survivors), nresource, postAccesses, fg.carry)

	for i := range fg.table.Resources {
		r := &fg.table.Resources[i]
		r.Usage = plan.Aggregate[i]
		r.RefCount = culled.ResourceRefCount[i]
		r.Lifetime = lifetimes[i]
	}

	liveViewIDs := make(map[int]bool)
	for _, p := range survivors {
		for _, e := range p.layout {
			liveViewIDs[e.viewID] = true
		}
	}

	var survivingResources []restab.Resource
	for i := range fg.table.Resources {
		r := &fg.table.Resources[i]
		if r.Lifetime == lifetime.Unset {
			continue
		}
		size, align, err := fg.dev.AllocationInfo(device.ResourceDesc{
			Format:  r.Format,
			Size:    r.Size,
			Levels:  r.Levels,
			Samples: r.Samples,
			Usage:   r.Usage.ToDeviceUsage(),
		})
		if err != nil {
			return wrapCompile("allocation info", r.Name, err)
		}
		r.ByteSize, r.Align = size, align
		survivingResources = append(survivingResources, *r)
	}

	var survivingViews []restab.View
	for _, v := range fg.table.Views {
		if liveViewIDs[v.ViewID] {
			survivingViews = append(survivingViews, v)
		}
	}

	h := heap.Hash(survivingResources)
	entry, hit := fg.cache.Lookup(h)
	if !hit {
		Logger().Info("heap cache miss, resizing", "hash", h, "resources", len(survivingResources))
		var err error
		entry, err = fg.cache.Resize(h, survivingResources, survivingViews)
		if err != nil {
			return wrapCompile("heap cache resize", "", err)
		}
	}

	nativeByID := make(map[uint32]device.Resource, len(entry.Resources))
	for i := range entry.Resources {
		nativeByID[entry.Resources[i].ID] = entry.Resources[i].Native
	}
	viewByID := make(map[int]*restab.View, len(entry.Views))
	for i := range entry.Views {
		viewByID[entry.Views[i].ViewID] = &entry.Views[i]
	}

	compiled := make([]compiledPass, len(survivors))
	for i, p := range survivors {
		seen := make(map[uint32]bool, len(p.accesses))
		var resources []uint32
		for _, a := range p.accesses {
			if !seen[a.Resource] {
				seen[a.Resource] = true
				resources = append(resources, a.Resource)
			}
		}
		values := make([]resolvedHandle, len(p.layout))
		for j, e := range p.layout {
			v := viewByID[e.viewID]
			if e.isCPU {
				values[j].cpu = v.CPU
			} else {
				values[j].gpu = v.GPU
			}
		}
		compiled[i] = compiledPass{
			resources:   resources,
			transitions: plan.PerPass[i],
			execute:     p.execute,
			params:      &ParamBlock{values: values},
		}
	}

	fg.compiled = compiled
	fg.aliased.Reset()
	fg.aliased.Grow(nresource)
	fg.nativeByID = nativeByID
	fg.plan = plan
	return nil
}

// Finish clears per-frame pass, resource, view, and transition state,
// and resets the virtual-id counters, retaining the heap cache and
// the final-state map for the next frame's carry-over.
func (fg *FrameGraph) Finish() {
	carry := make(map[uint32]restab.Access, len(fg.plan.Final))
	for r, a := range fg.plan.Final {
		if a != 0 {
			carry[uint32(r)] = a
		}
	}
	fg.carry = carry

	fg.table.Reset()
	fg.passes = fg.passes[:0]
	fg.compiled = nil
	fg.nativeByID = nil
	fg.plan = barrierplan.Plan{}
	fg.aliased.Reset()
}

// Close releases the FrameGraph's heap cache: every cached entry's
// native resources, the shared physical heaps, and the descriptor
// heaps. The FrameGraph must not be used afterward.
func (fg *FrameGraph) Close() {
	fg.cache.Close()
}
