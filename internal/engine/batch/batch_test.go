package batch

import (
	"errors"
	"testing"

	"github.com/driftline/driftline/internal/engine/gpu"
	"github.com/driftline/driftline/internal/engine/gpu/gputest"
)

// quad returns vertex data for n vertices with a marker value.
func quad(n int, marker float32) []float32 {
	out := make([]float32, n*VertexStride)
	for i := range out {
		out[i] = marker
	}
	return out
}

type fakeResolver struct {
	valid map[gpu.TextureID]bool
}

func (r *fakeResolver) ValidTexture(tex gpu.TextureID) bool { return r.valid[tex] }

func newBatch(t *testing.T, dev gpu.Device, cfg Config) *Batch {
	t.Helper()
	b, err := New(dev, nil, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestBatch_StateMachine(t *testing.T) {
	dev := gputest.New()
	b := newBatch(t, dev, Config{})

	if b.State() != Idle {
		t.Error("new batch should be Idle")
	}
	if err := b.Submit(Command{Vertices: quad(3, 1)}); !errors.Is(err, ErrNotRecording) {
		t.Errorf("submit while Idle: got %v, want ErrNotRecording", err)
	}

	b.Begin()
	if b.State() != Recording {
		t.Error("Begin should enter Recording")
	}
	if err := b.Submit(Command{Vertices: quad(3, 1)}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := b.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if b.State() != Idle {
		t.Error("End should return to Idle")
	}
}

func TestBatch_GrowthNeverTruncates(t *testing.T) {
	dev := gputest.New()
	b := newBatch(t, dev, Config{InitialVertices: 4, MaxVertices: 1024})

	b.Begin()
	// Submit far more vertices than the initial capacity.
	total := 0
	for i := 0; i < 20; i++ {
		if err := b.Submit(Command{Vertices: quad(6, float32(i))}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		total += 6
	}
	if err := b.End(); err != nil {
		t.Fatalf("end: %v", err)
	}

	if len(dev.Uploads) != 1 {
		t.Fatalf("expected one upload per flush, got %d", len(dev.Uploads))
	}
	if got := len(dev.Uploads[0].Data) / VertexStride; got != total {
		t.Errorf("uploaded %d vertices, want %d (no truncation)", got, total)
	}
	if b.Stats().Vertices != total {
		t.Errorf("stats vertices = %d, want %d", b.Stats().Vertices, total)
	}
}

func TestBatch_OverflowDropsAndReports(t *testing.T) {
	dev := gputest.New()
	b := newBatch(t, dev, Config{InitialVertices: 4, MaxVertices: 9})

	b.Begin()
	if err := b.Submit(Command{Vertices: quad(6, 1)}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	// 6 + 6 > 9: dropped.
	err := b.Submit(Command{Vertices: quad(6, 2)})
	if !errors.Is(err, ErrBatchOverflow) {
		t.Fatalf("expected ErrBatchOverflow, got %v", err)
	}
	// Small command still fits; overflow is per command, not fatal.
	if err := b.Submit(Command{Vertices: quad(3, 3)}); err != nil {
		t.Errorf("small submit after overflow: %v", err)
	}
	if err := b.End(); err != nil {
		t.Fatalf("end: %v", err)
	}

	if b.Stats().Dropped != 1 {
		t.Errorf("dropped = %d, want 1", b.Stats().Dropped)
	}
	if got := len(dev.Uploads[0].Data) / VertexStride; got != 9 {
		t.Errorf("uploaded %d vertices, want 9", got)
	}
}

func TestBatch_SortsByPassThenTexture(t *testing.T) {
	dev := gputest.New()
	b := newBatch(t, dev, Config{})

	b.Begin()
	submits := []Command{
		{Pass: PassTransparent, Texture: 5, Depth: 10, Vertices: quad(3, 1)},
		{Pass: PassOpaque, Texture: 9, Vertices: quad(3, 2)},
		{Pass: PassOpaque, Texture: 2, Vertices: quad(3, 3)},
		{Pass: PassOpaque, Texture: 2, Vertices: quad(3, 4)},
	}
	for i, cmd := range submits {
		if err := b.Submit(cmd); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := b.End(); err != nil {
		t.Fatalf("end: %v", err)
	}

	// Expected runs: texture 2 (two commands merged), texture 9, then the
	// transparent draw with texture 5.
	if len(dev.Draws) != 3 {
		t.Fatalf("expected 3 draws, got %d", len(dev.Draws))
	}
	if dev.Draws[0].Texture != 2 || dev.Draws[0].Count != 6 {
		t.Errorf("draw 0 = %+v, want texture 2 count 6", dev.Draws[0])
	}
	if dev.Draws[1].Texture != 9 {
		t.Errorf("draw 1 texture = %d, want 9", dev.Draws[1].Texture)
	}
	if dev.Draws[2].Texture != 5 {
		t.Errorf("draw 2 texture = %d, want 5 (transparent last)", dev.Draws[2].Texture)
	}
}

func TestBatch_TransparentBackToFront(t *testing.T) {
	dev := gputest.New()
	b := newBatch(t, dev, Config{})

	b.Begin()
	// Same texture, different depths: farther (larger depth) draws first.
	near := Command{Pass: PassTransparent, Texture: 1, Blend: gpu.BlendAlpha, Depth: 5, Vertices: quad(3, 1)}
	far := Command{Pass: PassTransparent, Texture: 1, Blend: gpu.BlendAlpha, Depth: 50, Vertices: quad(3, 2)}
	if err := b.Submit(near); err != nil {
		t.Fatalf("submit near: %v", err)
	}
	if err := b.Submit(far); err != nil {
		t.Fatalf("submit far: %v", err)
	}
	if err := b.End(); err != nil {
		t.Fatalf("end: %v", err)
	}

	// One merged run, but the staged data must hold far's vertices first.
	data := dev.Uploads[0].Data
	if data[0] != 2 {
		t.Errorf("first staged vertex marker = %g, want 2 (far first)", data[0])
	}
	if data[3*VertexStride] != 1 {
		t.Errorf("second staged command marker = %g, want 1", data[3*VertexStride])
	}
}

func TestBatch_StableSortPreservesSubmissionOrder(t *testing.T) {
	dev := gputest.New()
	b := newBatch(t, dev, Config{})

	b.Begin()
	// Identical keys: submission order must survive the sort.
	for i := 1; i <= 3; i++ {
		cmd := Command{Pass: PassOpaque, Texture: 7, Vertices: quad(3, float32(i))}
		if err := b.Submit(cmd); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := b.End(); err != nil {
		t.Fatalf("end: %v", err)
	}

	data := dev.Uploads[0].Data
	for i := 0; i < 3; i++ {
		if data[i*3*VertexStride] != float32(i+1) {
			t.Errorf("staged command %d marker = %g, want %d", i, data[i*3*VertexStride], i+1)
		}
	}
}

func TestBatch_SkipsUnknownTexture(t *testing.T) {
	dev := gputest.New()
	resolver := &fakeResolver{valid: map[gpu.TextureID]bool{1: true}}
	b, err := New(dev, resolver, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b.Begin()
	if err := b.Submit(Command{Texture: 1, Vertices: quad(3, 1)}); err != nil {
		t.Fatalf("valid texture: %v", err)
	}
	// Unknown texture: skipped, not an error, frame continues.
	if err := b.Submit(Command{Texture: 99, Vertices: quad(3, 2)}); err != nil {
		t.Fatalf("unknown texture should not error: %v", err)
	}
	if err := b.End(); err != nil {
		t.Fatalf("end: %v", err)
	}

	if b.Stats().Skipped != 1 {
		t.Errorf("skipped = %d, want 1", b.Stats().Skipped)
	}
	if len(dev.Draws) != 1 {
		t.Errorf("draws = %d, want 1", len(dev.Draws))
	}
}

func TestBatch_MidFrameFlush(t *testing.T) {
	dev := gputest.New()
	b := newBatch(t, dev, Config{})

	b.Begin()
	if err := b.Submit(Command{Texture: 1, Vertices: quad(3, 1)}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if b.State() != Recording {
		t.Error("flush should resume Recording")
	}
	if err := b.Submit(Command{Texture: 2, Vertices: quad(3, 2)}); err != nil {
		t.Fatalf("submit after flush: %v", err)
	}
	if err := b.End(); err != nil {
		t.Fatalf("end: %v", err)
	}

	if len(dev.Uploads) != 2 {
		t.Errorf("expected 2 uploads (one per flush), got %d", len(dev.Uploads))
	}
	if len(dev.Draws) != 2 {
		t.Errorf("expected 2 draws, got %d", len(dev.Draws))
	}
}
