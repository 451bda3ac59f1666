package framegraph

import "github.com/fkaa/framegraph/device"

type fakeDestroyer struct{ id int }

func (f *fakeDestroyer) Native() uintptr { return uintptr(f.id) }

type fakeHeap struct {
	fakeDestroyer
	size int64
}

func (h *fakeHeap) Size() int64 { return h.size }

type fakeDescHeap struct {
	fakeDestroyer
}

func (h *fakeDescHeap) Stride() int64 { return 1 }
func (h *fakeDescHeap) CPUHandle(slot int) device.CPUHandle {
	return device.CPUHandle(h.id*100000 + slot)
}
func (h *fakeDescHeap) GPUHandle(slot int) device.GPUHandle {
	return device.GPUHandle(h.id*100000 + slot)
}

// fakeDevice is a minimal in-memory stand-in for an explicit GPU API,
// used so these tests never touch a real graphics device.
type fakeDevice struct {
	nextID       int
	heapsCreated int
	resCreated   int
}

func (d *fakeDevice) id() int {
	d.nextID++
	return d.nextID
}

func (d *fakeDevice) AllocationInfo(desc device.ResourceDesc) (int64, int64, error) {
	bpp := map[device.PixelFmt]int64{
		device.RGBA8un: 4, device.RGBA8sRGB: 4, device.BGRA8un: 4,
		device.RG16f: 4, device.RGBA16f: 8, device.RGBA32f: 16,
		device.R8un: 1, device.D32f: 4, device.D24unS8ui: 4, device.D32fS8ui: 8,
	}
	size := int64(desc.Size.Width) * int64(desc.Size.Height) * bpp[desc.Format] * int64(desc.Samples)
	return size, 256, nil
}

func (d *fakeDevice) CreateHeap(size int64, flags device.HeapFlags) (device.Heap, error) {
	d.heapsCreated++
	return &fakeHeap{fakeDestroyer{d.id()}, size}, nil
}

func (d *fakeDevice) CreatePlacedResource(h device.Heap, offset int64, desc device.ResourceDesc, initial device.Usage) (device.Resource, error) {
	d.resCreated++
	return &fakeDestroyer{d.id()}, nil
}

func (d *fakeDevice) CreateDescriptorHeap(kind device.DescHeapKind, capacity int, gpuVisible bool) (device.DescHeap, error) {
	return &fakeDescHeap{fakeDestroyer{d.id()}}, nil
}

func (d *fakeDevice) CreateRTV(res device.Resource, desc device.ViewDesc, slot device.CPUHandle) error {
	return nil
}

func (d *fakeDevice) CreateSRV(res device.Resource, desc device.ViewDesc, slot device.CPUHandle) error {
	return nil
}

func (d *fakeDevice) Release(h device.Destroyer) {}

// fakeRecorder records every barrier batch submitted to it, in order,
// so tests can assert on barrier coverage.
type fakeRecorder struct {
	batches [][]device.Barrier
}

func (r *fakeRecorder) RecordBarriers(b []device.Barrier) {
	cp := append([]device.Barrier{}, b...)
	r.batches = append(r.batches, cp)
}
