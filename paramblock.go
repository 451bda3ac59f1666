package framegraph

import "github.com/fkaa/framegraph/device"

// resolvedHandle is one entry of a resolved ParamBlock: a CPU or GPU
// descriptor handle, depending on the layoutEntry it was resolved
// from.
type resolvedHandle struct {
	cpu device.CPUHandle
	gpu device.GPUHandle
}

// ParamBlock carries one pass's resolved descriptor handles, in the
// order the PassBuilder allocated them during Record. Each typed
// handle returned by PassBuilder (RTHandle, SRHandle, DepthWriteHandle,
// DepthReadHandle) carries the index of its own slot, so a pass's
// execute closure resolves its handles directly against the
// ParamBlock it's handed, without any per-pass generated layout code.
type ParamBlock struct {
	values []resolvedHandle
}
