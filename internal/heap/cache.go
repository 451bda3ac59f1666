package heap

import (
	"hash/fnv"

	"github.com/pkg/errors"

	"github.com/fkaa/framegraph/device"
	"github.com/fkaa/framegraph/internal/bitset"
	"github.com/fkaa/framegraph/internal/restab"
)

// Entry is a fully resolved layout for one previously-seen resource
// set, kept alive in the Cache's MRU list.
type Entry struct {
	Hash      uint64
	Resources []restab.Resource
	Views     []restab.View
}

// Hash computes the 64-bit cache key for a resource set: the ordered
// sequence of (usage, lifetime.start, lifetime.end, size) tuples,
// hashed with FNV-1a.
func Hash(resources []restab.Resource) uint64 {
	h := fnv.New64a()
	var buf [32]byte
	for _, r := range resources {
		putU64(buf[0:8], uint64(r.Usage))
		putU64(buf[8:16], uint64(int64(r.Lifetime.Start)))
		putU64(buf[16:24], uint64(int64(r.Lifetime.End)))
		putU64(buf[24:32], uint64(r.ByteSize))
		h.Write(buf[:])
	}
	return h.Sum64()
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// Cache is the bounded MRU cache of recent resolved frame layouts. It
// owns the shared descriptor-heap slabs and the shared set of
// physical heaps that every cached Entry's resources are placed
// within.
type Cache struct {
	dev      device.Device
	capacity int

	// mru[0] is the most recently produced entry.
	mru []*Entry

	physHeaps []device.Heap

	rtvHeap device.DescHeap
	rtvFree bitset.Set[uint32]
	srvHeap device.DescHeap
	srvFree bitset.Set[uint32]

	// Stats of the most recent Resize: the number of physical heaps it
	// created and the number it carried over unchanged.
	LastHeapsCreated int
	LastHeapsReused  int
}

// NewCache creates a Cache with room for capacity entries and shared
// descriptor-heap slabs of the given capacities.
func NewCache(dev device.Device, capacity, rtvCapacity, srvCapacity int) (*Cache, error) {
	rtvHeap, err := dev.CreateDescriptorHeap(device.KindRTV, rtvCapacity, false)
	if err != nil {
		return nil, errors.Wrap(err, "heap: create RTV descriptor heap")
	}
	srvHeap, err := dev.CreateDescriptorHeap(device.KindCBVSRVUAV, srvCapacity, true)
	if err != nil {
		dev.Release(rtvHeap)
		return nil, errors.Wrap(err, "heap: create CBV/SRV/UAV descriptor heap")
	}
	c := &Cache{
		dev:      dev,
		capacity: capacity,
		rtvHeap:  rtvHeap,
		srvHeap:  srvHeap,
	}
	c.rtvFree.Grow(rtvCapacity)
	c.srvFree.Grow(srvCapacity)
	return c, nil
}

// Lookup returns the cached entry matching hash, if any, promoting it
// to most-recently-used.
func (c *Cache) Lookup(hash uint64) (*Entry, bool) {
	for i, e := range c.mru {
		if e.Hash == hash {
			if i != 0 {
				copy(c.mru[1:i+1], c.mru[:i])
				c.mru[0] = e
			}
			return e, true
		}
	}
	return nil, false
}

// frameResource is one resource awaiting placement, tagged with which
// entry (or the incoming frame) it belongs to.
type frameResource struct {
	entry int // index into c.mru, or -1 for the incoming frame
	res   *restab.Resource
}

// Resize runs the cache's miss path: it repacks every currently
// cached entry's resources together with the incoming frame's, diffs
// the result against the physical heaps already held, and re-resolves
// every resource's placement. It then rotates the new entry into MRU
// slot 0.
func (c *Cache) Resize(hash uint64, resources []restab.Resource, views []restab.View) (*Entry, error) {
	var all []frameResource
	for ei, e := range c.mru {
		for i := range e.Resources {
			all = append(all, frameResource{entry: ei, res: &e.Resources[i]})
		}
	}
	newFrame := make([]restab.Resource, len(resources))
	copy(newFrame, resources)
	for i := range newFrame {
		all = append(all, frameResource{entry: -1, res: &newFrame[i]})
	}

	items := make([]Item, len(all))
	for i, fr := range all {
		items[i] = Item{ID: uint32(i), Size: fr.res.ByteSize, Lifetime: fr.res.Lifetime}
	}
	bins, placement := Pack(items)

	oldHeaps := c.physHeaps
	if err := c.reconcileHeaps(bins); err != nil {
		return nil, err
	}

	// Re-resolve placement and recreate native resources. A resource
	// whose (heap, offset, descriptor) is unchanged keeps its native
	// handle, so that a graph mutation that only replaces one pass
	// re-creates only the resources actually affected by the
	// reshuffle.
	c.freeAllViews()
	for i, fr := range all {
		p := placement[uint32(i)]
		newPlacement := restab.Placement{HeapIndex: p.HeapIndex, Offset: p.Offset}
		desc := device.ResourceDesc{
			Format:  fr.res.Format,
			Size:    fr.res.Size,
			Levels:  fr.res.Levels,
			Samples: fr.res.Samples,
			Usage:   fr.res.Usage.ToDeviceUsage(),
		}
		if fr.res.Native != nil && fr.res.Placement == newPlacement &&
			p.HeapIndex < len(oldHeaps) && oldHeaps[p.HeapIndex] == c.physHeaps[p.HeapIndex] {
			continue
		}
		fr.res.Placement = newPlacement
		if fr.res.Native != nil {
			c.dev.Release(fr.res.Native)
		}
		native, err := c.dev.CreatePlacedResource(c.physHeaps[p.HeapIndex], p.Offset, desc, device.URenderTarget)
		if err != nil {
			return nil, errors.Wrapf(err, "heap: create placed resource for %q", fr.res.Name)
		}
		fr.res.Native = native
	}

	newViews := make([]restab.View, len(views))
	copy(newViews, views)
	if err := c.createViews(newFrame, newViews); err != nil {
		return nil, err
	}
	for ei, e := range c.mru {
		if err := c.createViews(e.Resources, e.Views); err != nil {
			return nil, err
		}
		_ = ei
	}

	entry := &Entry{Hash: hash, Resources: newFrame, Views: newViews}
	c.push(entry)
	return entry, nil
}

// reconcileHeaps diffs the target bin layout against the physical
// heaps currently held, by size-slot position: a heap whose (index,
// size) already matches is carried over untouched; others are
// released and recreated at the required size.
func (c *Cache) reconcileHeaps(target []*Bin) error {
	created, reused := 0, 0
	next := make([]device.Heap, len(target))
	for i, b := range target {
		if i < len(c.physHeaps) && c.physHeaps[i] != nil && c.physHeaps[i].Size() == b.Size {
			next[i] = c.physHeaps[i]
			reused++
			continue
		}
		if i < len(c.physHeaps) && c.physHeaps[i] != nil {
			c.dev.Release(c.physHeaps[i])
		}
		h, err := c.dev.CreateHeap(b.Size, device.HeapAllowRTDS)
		if err != nil {
			return errors.Wrapf(err, "heap: create heap of size %d", b.Size)
		}
		next[i] = h
		created++
	}
	for i := len(target); i < len(c.physHeaps); i++ {
		if c.physHeaps[i] != nil {
			c.dev.Release(c.physHeaps[i])
		}
	}
	c.physHeaps = next
	c.LastHeapsCreated, c.LastHeapsReused = created, reused
	return nil
}

// createViews allocates descriptor-heap slots and creates RTV/SRV
// views for each entry in views, binding them to the resource they
// refer to within resources.
func (c *Cache) createViews(resources []restab.Resource, views []restab.View) error {
	byID := make(map[uint32]*restab.Resource, len(resources))
	for i := range resources {
		byID[resources[i].ID] = &resources[i]
	}
	for i := range views {
		v := &views[i]
		res, ok := byID[v.Resource]
		if !ok {
			continue
		}
		switch v.Desc.Kind {
		case device.ViewRenderTarget:
			slot, ok := c.rtvFree.Search()
			if !ok {
				return errors.New("heap: RTV descriptor heap exhausted")
			}
			c.rtvFree.Set(slot)
			v.CPU = c.rtvHeap.CPUHandle(slot)
			if err := c.dev.CreateRTV(res.Native, v.Desc, v.CPU); err != nil {
				return errors.Wrap(err, "heap: create RTV")
			}
		case device.ViewShaderResource:
			slot, ok := c.srvFree.Search()
			if !ok {
				return errors.New("heap: CBV/SRV/UAV descriptor heap exhausted")
			}
			c.srvFree.Set(slot)
			v.CPU = c.srvHeap.CPUHandle(slot)
			v.GPU = c.srvHeap.GPUHandle(slot)
			if err := c.dev.CreateSRV(res.Native, v.Desc, v.CPU); err != nil {
				return errors.Wrap(err, "heap: create SRV")
			}
		}
	}
	return nil
}

// freeAllViews releases every view slot currently held by cached
// entries, ahead of a resize that will recreate them.
func (c *Cache) freeAllViews() {
	c.rtvFree.Clear()
	c.srvFree.Clear()
}

// push inserts entry at MRU slot 0, evicting the oldest entry if the
// cache is at capacity.
func (c *Cache) push(entry *Entry) {
	c.mru = append([]*Entry{entry}, c.mru...)
	if len(c.mru) > c.capacity {
		evicted := c.mru[len(c.mru)-1]
		c.mru = c.mru[:len(c.mru)-1]
		for i := range evicted.Resources {
			if evicted.Resources[i].Native != nil {
				c.dev.Release(evicted.Resources[i].Native)
			}
		}
	}
}

// Close releases every resource the cache owns: all cached entries'
// native resources, the shared physical heaps, and the descriptor
// heaps.
func (c *Cache) Close() {
	for _, e := range c.mru {
		for i := range e.Resources {
			if e.Resources[i].Native != nil {
				c.dev.Release(e.Resources[i].Native)
			}
		}
	}
	c.mru = nil
	for _, h := range c.physHeaps {
		if h != nil {
			c.dev.Release(h)
		}
	}
	c.physHeaps = nil
	if c.rtvHeap != nil {
		c.dev.Release(c.rtvHeap)
	}
	if c.srvHeap != nil {
		c.dev.Release(c.srvHeap)
	}
}
