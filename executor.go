package framegraph

import "github.com/fkaa/framegraph/device"

// Execute walks the passes compiled by the last Compile call, in
// declaration order: for each, it emits aliasing barriers for any
// resource touched for the first time this frame, emits the
// transition barriers the Barrier planner accumulated for that pass,
// submits both in one call to rec (no call when there are none), then
// invokes the pass's callback.
//
// Execute is infallible once Compile has succeeded: it must be called
// exactly once per compiled frame, and the pass callbacks must not
// re-enter the FrameGraph.
func (fg *FrameGraph) Execute(rec device.CmdRecorder) {
	for _, cp := range fg.compiled {
		var barriers []device.Barrier

		for _, rid := range cp.resources {
			if fg.aliased.IsSet(int(rid)) {
				continue
			}
			fg.aliased.Set(int(rid))
			barriers = append(barriers, device.Barrier{
				Kind:     device.BarrierAlias,
				After:    fg.table.Resources[rid].Usage.ToDeviceUsage(),
				Resource: fg.nativeByID[rid],
			})
		}

		for _, t := range cp.transitions {
			barriers = append(barriers, device.Barrier{
				Kind:     device.BarrierTransition,
				Before:   t.From.ToDeviceUsage(),
				After:    t.To.ToDeviceUsage(),
				Resource: fg.nativeByID[t.Resource],
			})
		}

		if len(barriers) > 0 {
			rec.RecordBarriers(barriers)
		}
		cp.execute(rec, cp.params)
	}
}
