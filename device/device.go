// Package device defines the narrow set of interfaces that the
// framegraph core consumes from an external, explicit GPU API
// wrapper.
//
// The core never talks to an actual graphics API: it is handed a
// Device at construction time and threads it through compilation to
// size resources, create physical heaps and placed resources, and
// create views. Everything on the other side of this package —
// pipeline state, shader blobs, swapchain/window setup — is an
// external collaborator outside the scope of this module.
package device

import "errors"

// ErrNoDeviceMemory means that device memory could not be allocated
// for a heap or placed resource.
var ErrNoDeviceMemory = errors.New("device: out of device memory")

// ErrFatal means that the device is in an unrecoverable state. Upon
// encountering such an error, the caller must tear down everything
// created through this Device and discard it.
var ErrFatal = errors.New("device: fatal error")

// Device is the interface a graphics-API wrapper implements so that
// the framegraph core can size, place, and view resources without
// knowing the concrete API.
type Device interface {
	// AllocationInfo computes the byte size and alignment a resource
	// matching desc would require. It is a pure query: it must not
	// allocate or otherwise mutate device state.
	AllocationInfo(desc ResourceDesc) (size, align int64, err error)

	// CreateHeap creates a heap of the given byte size able to hold
	// render-target and depth-stencil resources.
	CreateHeap(sizeBytes int64, flags HeapFlags) (Heap, error)

	// CreatePlacedResource binds a new resource matching desc to the
	// given byte offset within heap, in the given initial state.
	CreatePlacedResource(heap Heap, offset int64, desc ResourceDesc, initial Usage) (Resource, error)

	// CreateDescriptorHeap creates a slab of capacity descriptor
	// slots of the given kind.
	CreateDescriptorHeap(kind DescHeapKind, capacity int, gpuVisible bool) (DescHeap, error)

	// CreateRTV creates a render-target view of res into the given
	// slot of a descriptor heap created with KindRTV.
	CreateRTV(res Resource, desc ViewDesc, slot CPUHandle) error

	// CreateSRV creates a shader-resource view of res into the given
	// slot of a descriptor heap created with KindCBVSRVUAV.
	CreateSRV(res Resource, desc ViewDesc, slot CPUHandle) error

	// Release releases any handle previously created by this Device
	// (Heap, Resource, or DescHeap). Releasing a nil or already
	// released handle has no effect.
	Release(h Destroyer)
}

// Destroyer is implemented by every handle type the Device creates.
type Destroyer interface {
	// Native returns the API-specific handle, for diagnostics only.
	Native() uintptr
}

// Heap is a physical memory heap capable of holding placed resources.
type Heap interface {
	Destroyer
	// Size is the heap's byte size, as requested on creation.
	Size() int64
}

// Resource is a placed, physical GPU resource.
type Resource interface {
	Destroyer
}

// DescHeap is a slab of descriptor storage.
type DescHeap interface {
	Destroyer
	// Stride is the byte (CPU) or slot (GPU) distance between two
	// consecutive descriptors in this heap.
	Stride() int64
	// CPUHandle returns the CPU-visible handle for the given slot.
	CPUHandle(slot int) CPUHandle
	// GPUHandle returns the GPU-visible handle for the given slot.
	// Only valid for heaps created with gpuVisible true.
	GPUHandle(slot int) GPUHandle
}

// CPUHandle is a machine-pointer-sized CPU descriptor handle.
type CPUHandle uintptr

// GPUHandle is a 64-bit GPU descriptor handle.
type GPUHandle uint64

// HeapFlags describes what kind of resource a heap may hold.
type HeapFlags int

// Heap flags.
const (
	// HeapAllowRTDS allows render-target and depth-stencil textures.
	HeapAllowRTDS HeapFlags = 1 << iota
)

// DescHeapKind is the kind of descriptors a DescHeap stores.
type DescHeapKind int

// Descriptor heap kinds.
const (
	KindCBVSRVUAV DescHeapKind = iota
	KindRTV
)

// Usage is a mask of access flags a resource must support once
// placed. It is the physical analogue of the core's internal access
// flags (see the framegraph package), translated at the boundary so
// that device implementations never need to know about passes.
type Usage int

// Usage flags.
const (
	URenderTarget Usage = 1 << iota
	UShaderResource
	UDepthWrite
	UDepthRead
)

// PixelFmt describes the format of a pixel, restricted to the color
// and depth/stencil formats a render graph's transients can take.
type PixelFmt int

// Pixel formats.
const (
	RGBA8un PixelFmt = iota
	RGBA8sRGB
	BGRA8un
	RG16f
	RGBA16f
	RGBA32f
	R8un
	D32f
	D24unS8ui
	D32fS8ui
)

// Dim2D is a two-dimensional size in texels. The core never deals in
// volume textures, so this has no depth dimension.
type Dim2D struct {
	Width, Height int
}

// ResourceDesc describes a transient resource's physical shape. It is
// constructed by the framegraph core from the PassBuilder's
// declarations and the Barrier planner's aggregate usage, then handed
// to the Device for sizing and creation.
type ResourceDesc struct {
	Format  PixelFmt
	Size    Dim2D
	Levels  int
	Samples int
	Usage   Usage
}

// ViewKind distinguishes the two view shapes the core creates.
type ViewKind int

// View kinds.
const (
	ViewRenderTarget ViewKind = iota
	ViewShaderResource
)

// ViewDesc is a tagged description of a resource view. Exactly one of
// RTV or SRV is meaningful, selected by Kind.
type ViewDesc struct {
	Kind ViewKind
	RTV  RenderTargetViewDesc
	SRV  ShaderResourceViewDesc
}

// RenderTargetViewDesc describes a render-target view.
type RenderTargetViewDesc struct {
	Format PixelFmt
	Level  int
}

// ShaderResourceViewDesc describes a shader-resource view.
type ShaderResourceViewDesc struct {
	Format     PixelFmt
	MostDetail int
	Levels     int
}
