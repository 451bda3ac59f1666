package framegraph

import "github.com/fkaa/framegraph/device"

// RTHandle is a typed handle to a render-target-like transient
// resource, bound for writing within the pass that created or last
// wrote it.
type RTHandle struct {
	resource uint32
	slot     int
}

// SRHandle is a typed handle to a resource bound for shader-resource
// reading. It is a terminal handle kind: nothing may be derived from
// an SRHandle in turn.
type SRHandle struct {
	resource uint32
	slot     int
}

// DepthWriteHandle is a typed handle to a depth-stencil resource
// bound for depth writing.
type DepthWriteHandle struct {
	resource uint32
	slot     int
}

// DepthReadHandle is a typed handle to a depth-stencil resource bound
// read-only (depth test without write).
type DepthReadHandle struct {
	resource uint32
	slot     int
}

func (h RTHandle) resourceID() uint32         { return h.resource }
func (h SRHandle) resourceID() uint32         { return h.resource }
func (h DepthWriteHandle) resourceID() uint32 { return h.resource }
func (h DepthReadHandle) resourceID() uint32  { return h.resource }

// srSource is implemented by every handle kind a shader-resource view
// may legally be derived from: RT→SR, DepthWrite→SR, DepthRead→SR. An
// SRHandle itself does not implement srSource — it is a terminal
// handle kind, and nothing may be derived from it in turn.
type srSource interface {
	resourceID() uint32
	isSRSource()
}

// depthWriteSource is implemented by every handle kind write_depth
// may convert from: DepthWrite and DepthRead interconvert freely.
type depthWriteSource interface {
	resourceID() uint32
	isDepth()
}

func (RTHandle) isSRSource()         {}
func (DepthWriteHandle) isSRSource() {}
func (DepthReadHandle) isSRSource()  {}

func (DepthWriteHandle) isDepth() {}
func (DepthReadHandle) isDepth()  {}

// CPU resolves h's CPU descriptor handle from a resolved ParamBlock.
func (h RTHandle) CPU(p *ParamBlock) device.CPUHandle { return p.values[h.slot].cpu }

// CPU resolves h's CPU descriptor handle from a resolved ParamBlock.
func (h DepthWriteHandle) CPU(p *ParamBlock) device.CPUHandle { return p.values[h.slot].cpu }

// CPU resolves h's CPU descriptor handle from a resolved ParamBlock.
func (h DepthReadHandle) CPU(p *ParamBlock) device.CPUHandle { return p.values[h.slot].cpu }

// GPU resolves h's GPU descriptor handle from a resolved ParamBlock.
func (h SRHandle) GPU(p *ParamBlock) device.GPUHandle { return p.values[h.slot].gpu }
