// Package heap implements a 2D shelf-packing allocator and its
// frame-to-frame layout cache.
//
// Resources are packed by (byte size × lifetime interval): two
// resources may share the same offset range within a bin iff their
// lifetimes are disjoint. The search key is two-dimensional, so the
// packer is implemented directly as a scanline search rather than
// layered on a 1D bit-table free list.
package heap

import (
	"sort"

	"github.com/fkaa/framegraph/internal/restab"
)

// Item is one resource's packing input.
type Item struct {
	ID       uint32
	Size     int64
	Lifetime restab.Lifetime
}

// Region is a single placed resource's footprint within a Bin.
type Region struct {
	Owner    uint32
	Offset   int64
	Size     int64
	Lifetime restab.Lifetime
}

// intersects is a rectangle-overlap test: two regions conflict iff
// both their lifetime ranges (closed, both ends inclusive) and their
// offset ranges overlap.
func intersects(a, b Region) bool {
	return a.Lifetime.Start <= b.Lifetime.End &&
		a.Lifetime.End >= b.Lifetime.Start &&
		a.Offset < b.Offset+b.Size &&
		a.Offset+a.Size > b.Offset
}

// Bin is a single candidate physical heap of a given byte size.
type Bin struct {
	Size      int64
	Regions   []Region
	scanlines []int64
}

func newBin(size int64) *Bin {
	return &Bin{Size: size, scanlines: []int64{0}}
}

// addScanline inserts off into the bin's sorted, deduplicated
// scanline set.
func (b *Bin) addScanline(off int64) {
	i := sort.Search(len(b.scanlines), func(i int) bool { return b.scanlines[i] >= off })
	if i < len(b.scanlines) && b.scanlines[i] == off {
		return
	}
	b.scanlines = append(b.scanlines, 0)
	copy(b.scanlines[i+1:], b.scanlines[i:])
	b.scanlines[i] = off
}

// tryPlace attempts to place it at the smallest candidate offset in
// b that fits and does not intersect any region already in b.
func (b *Bin) tryPlace(it Item) (int64, bool) {
	if it.Size > b.Size {
		return 0, false
	}
	for _, off := range b.scanlines {
		if off+it.Size > b.Size {
			continue
		}
		cand := Region{Owner: it.ID, Offset: off, Size: it.Size, Lifetime: it.Lifetime}
		conflict := false
		for _, r := range b.Regions {
			if intersects(cand, r) {
				conflict = true
				break
			}
		}
		if !conflict {
			b.Regions = append(b.Regions, cand)
			b.addScanline(off + it.Size)
			return off, true
		}
	}
	return 0, false
}

// Placement records where the packer placed a resource.
type Placement struct {
	HeapIndex int
	Offset    int64
}

// Pack runs the shelf-packing allocator. It returns the canonical
// (size-descending) list of bins and the per-item placement, keyed by
// Item.ID.
//
// The seed bin list (one bin per item, sized to that item, in
// size-descending order) stays stable for the whole pass; a new bin
// sized exactly to an item is created only as a last resort, when
// every existing bin rejects it.
func Pack(items []Item) ([]*Bin, map[uint32]Placement) {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Size > sorted[j].Size })

	bins := make([]*Bin, len(sorted))
	for i, it := range sorted {
		bins[i] = newBin(it.Size)
	}

	type placed struct {
		bin    *Bin
		offset int64
	}
	result := make(map[uint32]placed, len(items))

	for _, it := range sorted {
		ok := false
		for _, b := range bins {
			if off, accepted := b.tryPlace(it); accepted {
				result[it.ID] = placed{bin: b, offset: off}
				ok = true
				break
			}
		}
		if !ok {
			nb := newBin(it.Size)
			nb.Regions = append(nb.Regions, Region{Owner: it.ID, Offset: 0, Size: it.Size, Lifetime: it.Lifetime})
			nb.addScanline(it.Size)
			bins = append(bins, nb)
			result[it.ID] = placed{bin: nb, offset: 0}
		}
	}

	kept := make([]*Bin, 0, len(bins))
	for _, b := range bins {
		if len(b.Regions) > 0 {
			kept = append(kept, b)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Size > kept[j].Size })

	index := make(map[*Bin]int, len(kept))
	for i, b := range kept {
		index[b] = i
	}
	placement := make(map[uint32]Placement, len(items))
	for id, p := range result {
		placement[id] = Placement{HeapIndex: index[p.bin], Offset: p.offset}
	}
	return kept, placement
}
