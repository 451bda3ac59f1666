package framegraph

import (
	"github.com/fkaa/framegraph/device"
	"github.com/fkaa/framegraph/internal/restab"
)

// ColorDesc describes a render-target-like transient resource to be
// created by CreateRenderTarget.
type ColorDesc struct {
	Format  device.PixelFmt
	Size    device.Dim2D
	Levels  int // defaults to 1
	Samples int // defaults to 1
}

// DepthDesc describes a depth-stencil-like transient resource to be
// created by CreateDepth.
type DepthDesc struct {
	Format  device.PixelFmt
	Size    device.Dim2D
	Samples int // defaults to 1
}

// layoutEntry is one position in a pass's ParamBlock layout: the view
// it resolves from, and whether that resolution is a CPU or GPU
// descriptor handle.
type layoutEntry struct {
	viewID int
	isCPU  bool
}

// PassBuilder is the per-pass record API passed to a SetupFunc. A
// PassBuilder is only valid for the duration of that call; it must
// not be retained.
type PassBuilder struct {
	fg   *FrameGraph
	pass *pendingPass
}

func (b *PassBuilder) declare(resource uint32, access restab.Access) {
	b.pass.accesses = append(b.pass.accesses, restab.ResourceAccess{Resource: resource, Access: access})
}

func (b *PassBuilder) newView(resource uint32, desc device.ViewDesc, isCPU bool) int {
	viewID := b.fg.table.NewView(resource, desc)
	b.pass.layout = append(b.pass.layout, layoutEntry{viewID: viewID, isCPU: isCPU})
	return len(b.pass.layout) - 1
}

func (b *PassBuilder) checkDeclared(id uint32) {
	if id >= uint32(len(b.fg.table.Resources)) {
		panic("framegraph: read of a resource handle not declared this frame")
	}
}

// CreateRenderTarget declares a new color transient resource, written
// by this pass, and returns a handle to it.
func (b *PassBuilder) CreateRenderTarget(name string, desc ColorDesc) RTHandle {
	levels, samples := desc.Levels, desc.Samples
	if levels == 0 {
		levels = 1
	}
	if samples == 0 {
		samples = 1
	}
	id := b.fg.table.NewResource(name, restab.KindColor, desc.Format, desc.Size, levels, samples, restab.RenderTarget)
	b.declare(id, restab.RenderTarget)
	slot := b.newView(id, device.ViewDesc{
		Kind: device.ViewRenderTarget,
		RTV:  device.RenderTargetViewDesc{Format: desc.Format},
	}, true)
	return RTHandle{resource: id, slot: slot}
}

// CreateDepth declares a new depth-stencil transient resource,
// written by this pass, and returns a handle to it.
func (b *PassBuilder) CreateDepth(name string, desc DepthDesc) DepthWriteHandle {
	samples := desc.Samples
	if samples == 0 {
		samples = 1
	}
	id := b.fg.table.NewResource(name, restab.KindDepthStencil, desc.Format, desc.Size, 1, samples, restab.DepthWrite)
	b.declare(id, restab.DepthWrite)
	slot := b.newView(id, device.ViewDesc{
		Kind: device.ViewRenderTarget,
		RTV:  device.RenderTargetViewDesc{Format: desc.Format},
	}, true)
	return DepthWriteHandle{resource: id, slot: slot}
}

// ReadSR declares a shader-resource read of src by this pass. src
// must be an RTHandle, DepthWriteHandle, or DepthReadHandle — the
// only handle kinds a shader-resource view may legally be derived
// from (RT→SR, DepthWrite→SR, DepthRead→SR).
func (b *PassBuilder) ReadSR(src srSource) SRHandle {
	id := src.resourceID()
	b.checkDeclared(id)
	b.declare(id, restab.ShaderResource)
	res := &b.fg.table.Resources[id]
	slot := b.newView(id, device.ViewDesc{
		Kind: device.ViewShaderResource,
		SRV:  device.ShaderResourceViewDesc{Format: res.Format, Levels: res.Levels},
	}, false)
	return SRHandle{resource: id, slot: slot}
}

// ReadDepth declares a depth-read (bound read-only, not sampled)
// access of src by this pass. Only the DepthWrite→DepthRead
// conversion is legal.
func (b *PassBuilder) ReadDepth(src DepthWriteHandle) DepthReadHandle {
	id := src.resourceID()
	b.checkDeclared(id)
	b.declare(id, restab.DepthRead)
	res := &b.fg.table.Resources[id]
	slot := b.newView(id, device.ViewDesc{
		Kind: device.ViewRenderTarget,
		RTV:  device.RenderTargetViewDesc{Format: res.Format},
	}, true)
	return DepthReadHandle{resource: id, slot: slot}
}

// WriteDepth declares a depth-write access of src by this pass,
// re-affirming an existing depth-stencil resource. Legal from either
// a DepthWriteHandle or a DepthReadHandle (DepthWrite↔DepthRead).
func (b *PassBuilder) WriteDepth(src depthWriteSource) DepthWriteHandle {
	id := src.resourceID()
	b.checkDeclared(id)
	b.declare(id, restab.DepthWrite)
	res := &b.fg.table.Resources[id]
	slot := b.newView(id, device.ViewDesc{
		Kind: device.ViewRenderTarget,
		RTV:  device.RenderTargetViewDesc{Format: res.Format},
	}, true)
	return DepthWriteHandle{resource: id, slot: slot}
}
