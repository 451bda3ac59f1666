// Package restab holds the per-frame transient-resource and
// resource-view registries: flat, dense tables indexed by the virtual
// ids the framegraph package hands out during Record, addressed by a
// growable slice rather than a pointer graph.
package restab

import "github.com/fkaa/framegraph/device"

// Access is a mask of the ways a pass may touch a resource in a
// single declaration.
type Access int

// Access flags.
const (
	RenderTarget Access = 1 << iota
	ShaderResource
	DepthWrite
	DepthRead
)

// ReadMask is the subset of Access bits that count as a read for
// refcounting and barrier batching purposes.
const ReadMask = ShaderResource | DepthRead

// WriteMask is the subset of Access bits that count as a write.
const WriteMask = RenderTarget | DepthWrite

// IsRead reports whether a has any read bit set.
func (a Access) IsRead() bool { return a&ReadMask != 0 }

// IsWrite reports whether a has any write bit set.
func (a Access) IsWrite() bool { return a&WriteMask != 0 }

// ToDeviceUsage translates the internal access mask into the
// device-facing Usage mask the external Device understands.
func (a Access) ToDeviceUsage() (u device.Usage) {
	if a&RenderTarget != 0 {
		u |= device.URenderTarget
	}
	if a&ShaderResource != 0 {
		u |= device.UShaderResource
	}
	if a&DepthWrite != 0 {
		u |= device.UDepthWrite
	}
	if a&DepthRead != 0 {
		u |= device.UDepthRead
	}
	return
}

// Kind distinguishes the two resource families the builder can
// create.
type Kind int

// Resource kinds.
const (
	KindColor Kind = iota
	KindDepthStencil
)

// Lifetime is a closed pass-index interval, both ends inclusive.
type Lifetime struct {
	Start, End int
}

// Compatible reports whether two lifetimes may alias, i.e. whether
// they are disjoint.
func (l Lifetime) Compatible(o Lifetime) bool {
	return l.End < o.Start || o.End < l.Start
}

// Placement records where the allocator placed a resource: which
// heap, and at what byte offset within it.
type Placement struct {
	HeapIndex int
	Offset    int64
}

// Resource is the per-frame record for a logical resource.
type Resource struct {
	ID       uint32
	Name     string
	Kind     Kind
	Format   device.PixelFmt
	Size     device.Dim2D
	Levels   int
	Samples  int
	Usage    Access // union of every access flag seen so far
	Lifetime Lifetime
	RefCount int // number of read accesses to this resource by surviving passes

	ByteSize int64
	Align    int64

	Placement Placement
	Native    device.Resource
}

// ResourceAccess is a single (resource, access) tuple recorded against a
// pass, in declaration order.
type ResourceAccess struct {
	Resource uint32
	Access   Access
}

// View is the per-frame record for a resource view.
type View struct {
	ViewID   int
	Resource uint32
	Desc     device.ViewDesc
	CPU      device.CPUHandle
	GPU      device.GPUHandle
}

// Table is the frame-scoped, dense registry of resources and views.
// It is reset (not reallocated eagerly) at Finish so that steady-state
// frames reuse the backing slices.
type Table struct {
	Resources []Resource
	Views     []View
}

// NewTable creates a Table with the given initial capacity hint for
// both resources and views.
func NewTable(capHint int) *Table {
	return &Table{
		Resources: make([]Resource, 0, capHint),
		Views:     make([]View, 0, capHint),
	}
}

// NewResource appends a new resource record and returns its dense id.
func (t *Table) NewResource(name string, kind Kind, format device.PixelFmt, size device.Dim2D, levels, samples int, initial Access) uint32 {
	id := uint32(len(t.Resources))
	t.Resources = append(t.Resources, Resource{
		ID:      id,
		Name:    name,
		Kind:    kind,
		Format:  format,
		Size:    size,
		Levels:  levels,
		Samples: samples,
		Usage:   initial,
	})
	return id
}

// NewView appends a new view record and returns its dense id. View
// ids are dense across the whole frame, independent of which
// resource they belong to. They are not descriptor-heap slots: the
// heap cache allocates those separately when it creates the views.
func (t *Table) NewView(resource uint32, desc device.ViewDesc) int {
	id := len(t.Views)
	t.Views = append(t.Views, View{ViewID: id, Resource: resource, Desc: desc})
	return id
}

// Reset clears the table for reuse in the next frame, retaining the
// backing arrays.
func (t *Table) Reset() {
	t.Resources = t.Resources[:0]
	t.Views = t.Views[:0]
}
