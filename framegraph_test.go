package framegraph

import (
	"testing"

	"github.com/fkaa/framegraph/device"
)

func rt64() ColorDesc {
	return ColorDesc{Format: device.RGBA8un, Size: device.Dim2D{Width: 64, Height: 64}}
}

func depth64() DepthDesc {
	return DepthDesc{Format: device.D32f, Size: device.Dim2D{Width: 64, Height: 64}}
}

// S1 — dead branch: P2 creates B (write) and reads A, but B is never
// read by anything; P2 must be culled and its callback never invoked.
func TestDeadBranchCulled(t *testing.T) {
	dev := &fakeDevice{}
	fg, err := NewFrameGraph(dev, Config{})
	if err != nil {
		t.Fatalf("NewFrameGraph: %v", err)
	}
	defer fg.Close()

	var ran []string
	var a RTHandle
	fg.AddPass("p1", func(b *PassBuilder) ExecuteFunc {
		a = b.CreateRenderTarget("a", rt64())
		return func(device.CmdRecorder, *ParamBlock) { ran = append(ran, "p1") }
	})
	fg.AddPass("p2", func(b *PassBuilder) ExecuteFunc {
		b.CreateRenderTarget("b", rt64())
		b.ReadSR(a)
		return func(device.CmdRecorder, *ParamBlock) { ran = append(ran, "p2") }
	})
	fg.AddPass("p3", func(b *PassBuilder) ExecuteFunc {
		b.ReadSR(a)
		return func(device.CmdRecorder, *ParamBlock) { ran = append(ran, "p3") }
	})

	if err := fg.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	fg.Execute(&fakeRecorder{})

	want := []string{"p1", "p3"}
	if len(ran) != len(want) {
		t.Fatalf("have executed passes %v, want %v", ran, want)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Fatalf("have executed passes %v, want %v", ran, want)
		}
	}
	fg.Finish()
}

// S4 — depth flip: DepthWrite, DepthRead+read-SRV, DepthWrite again.
// Transitions must appear before P2 (DW->DR|SR) and before P3
// (DR|SR->DW), and aliasing barriers only on first touch.
func TestDepthFlipBarriers(t *testing.T) {
	dev := &fakeDevice{}
	fg, err := NewFrameGraph(dev, Config{})
	if err != nil {
		t.Fatalf("NewFrameGraph: %v", err)
	}
	defer fg.Close()

	var dw DepthWriteHandle
	var dr DepthReadHandle
	fg.AddPass("p1", func(b *PassBuilder) ExecuteFunc {
		dw = b.CreateDepth("d", depth64())
		return func(device.CmdRecorder, *ParamBlock) {}
	})
	fg.AddPass("p2", func(b *PassBuilder) ExecuteFunc {
		dr = b.ReadDepth(dw)
		b.ReadSR(dr)
		return func(device.CmdRecorder, *ParamBlock) {}
	})
	fg.AddPass("p3", func(b *PassBuilder) ExecuteFunc {
		b.WriteDepth(dr)
		return func(device.CmdRecorder, *ParamBlock) {}
	})

	if err := fg.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	rec := &fakeRecorder{}
	fg.Execute(rec)

	if len(rec.batches) != 3 {
		t.Fatalf("have %d barrier batches, want 3 (one per pass)", len(rec.batches))
	}
	// P1: only the aliasing barrier for the first touch of d.
	if len(rec.batches[0]) != 1 || rec.batches[0][0].Kind != device.BarrierAlias {
		t.Fatalf("have P1 barriers %+v, want a single aliasing barrier", rec.batches[0])
	}
	// P2: the DW->DR|SR transition, no new aliasing barrier (d was
	// already touched in P1).
	foundTransition := false
	for _, bar := range rec.batches[1] {
		if bar.Kind == device.BarrierTransition {
			foundTransition = true
			if bar.Before != device.UDepthWrite {
				t.Fatalf("have transition before-state %v, want DepthWrite", bar.Before)
			}
			if bar.After&device.UDepthRead == 0 || bar.After&device.UShaderResource == 0 {
				t.Fatalf("have transition after-state %v, want DepthRead|ShaderResource", bar.After)
			}
		}
	}
	if !foundTransition {
		t.Fatalf("have no transition barrier before P2, want DW->DR|SR")
	}
	// P3: the DR|SR->DW transition.
	foundTransition = false
	for _, bar := range rec.batches[2] {
		if bar.Kind == device.BarrierTransition {
			foundTransition = true
			if bar.After != device.UDepthWrite {
				t.Fatalf("have transition after-state %v, want DepthWrite", bar.After)
			}
		}
	}
	if !foundTransition {
		t.Fatalf("have no transition barrier before P3, want DR|SR->DW")
	}

	fg.Finish()
}

// S5 — cache hit: recompiling the same pass sequence must resolve
// from the heap cache, creating zero new device heaps.
func TestRecompileIsCacheHit(t *testing.T) {
	dev := &fakeDevice{}
	fg, err := NewFrameGraph(dev, Config{})
	if err != nil {
		t.Fatalf("NewFrameGraph: %v", err)
	}
	defer fg.Close()

	build := func() {
		var a RTHandle
		fg.AddPass("write", func(b *PassBuilder) ExecuteFunc {
			a = b.CreateRenderTarget("a", rt64())
			return func(device.CmdRecorder, *ParamBlock) {}
		})
		fg.AddPass("read", func(b *PassBuilder) ExecuteFunc {
			b.ReadSR(a)
			return func(device.CmdRecorder, *ParamBlock) {}
		})
	}

	build()
	if err := fg.Compile(); err != nil {
		t.Fatalf("Compile 1: %v", err)
	}
	fg.Execute(&fakeRecorder{})
	fg.Finish()

	before := dev.heapsCreated

	build()
	if err := fg.Compile(); err != nil {
		t.Fatalf("Compile 2: %v", err)
	}
	fg.Execute(&fakeRecorder{})
	fg.Finish()

	if dev.heapsCreated != before {
		t.Fatalf("have %d new heaps on recompile, want 0 (cache hit)", dev.heapsCreated-before)
	}
}

// SRHandle is a terminal handle kind: a shader-resource view may not
// be derived from another shader-resource view, so SRHandle must not
// satisfy srSource (and therefore cannot be passed to ReadSR at all —
// this is rejected at compile time, not at runtime).
func TestSRHandleIsNotAnSRSource(t *testing.T) {
	var h any = SRHandle{}
	if _, ok := h.(srSource); ok {
		t.Fatalf("have SRHandle implementing srSource, want it rejected as a ReadSR input")
	}
}

// Programmer error: reading a handle that was never declared this
// frame must panic, not silently corrupt state.
func TestReadOfUndeclaredHandlePanics(t *testing.T) {
	dev := &fakeDevice{}
	fg, err := NewFrameGraph(dev, Config{})
	if err != nil {
		t.Fatalf("NewFrameGraph: %v", err)
	}
	defer fg.Close()

	defer func() {
		if recover() == nil {
			t.Fatalf("have no panic, want panic on undeclared handle read")
		}
	}()
	fg.AddPass("bad", func(b *PassBuilder) ExecuteFunc {
		b.ReadSR(RTHandle{resource: 99})
		return func(device.CmdRecorder, *ParamBlock) {}
	})
}
