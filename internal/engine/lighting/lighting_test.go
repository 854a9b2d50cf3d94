package lighting

import (
	"errors"
	"testing"

	"github.com/driftline/driftline/pkg/math"
)

func TestRegistry_AddToCapacity(t *testing.T) {
	r := NewRegistry(2)

	h1, err := r.Add(Light{Intensity: 1})
	if err != nil {
		t.Fatalf("add 1: %v", err)
	}
	if _, err := r.Add(Light{Intensity: 1}); err != nil {
		t.Fatalf("add 2: %v", err)
	}
	if _, err := r.Add(Light{Intensity: 1}); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}

	if !h1.Valid() {
		t.Error("issued handle should be valid")
	}
	if r.ActiveCount() != 2 {
		t.Errorf("active count = %d, want 2", r.ActiveCount())
	}
}

func TestRegistry_RemoveDefersReuse(t *testing.T) {
	r := NewRegistry(1)

	h, err := r.Add(Light{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.Remove(h); err != nil {
		t.Fatalf("remove: %v", err)
	}

	// Slot stays reserved until the frame ends.
	if _, err := r.Add(Light{}); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded before EndFrame, got %v", err)
	}

	r.EndFrame()
	if _, err := r.Add(Light{}); err != nil {
		t.Errorf("add after EndFrame: %v", err)
	}
}

func TestRegistry_StaleHandleDetected(t *testing.T) {
	r := NewRegistry(1)

	old, _ := r.Add(Light{Intensity: 1})
	if err := r.Remove(old); err != nil {
		t.Fatalf("remove: %v", err)
	}
	r.EndFrame()

	// Reuse bumps the generation; the old handle must not address the new light.
	reused, err := r.Add(Light{Intensity: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := r.Get(old); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected ErrStaleHandle for old handle, got %v", err)
	}
	if err := r.Update(old, Light{}); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected ErrStaleHandle on update, got %v", err)
	}
	l, err := r.Get(reused)
	if err != nil {
		t.Fatalf("get reused: %v", err)
	}
	if l.Intensity != 2 {
		t.Errorf("reused slot intensity = %g, want 2", l.Intensity)
	}
}

func TestCull_BiasBoundary(t *testing.T) {
	r := NewRegistry(4)
	params := CullParams{
		CameraForward: math.Vec3{Z: 1},
		MaxUpload:     8,
	}

	// Depth exactly -bias: included.
	if _, err := r.Add(Light{
		Position: math.Vec3{Z: -2}, Radius: 10, Intensity: 1, CullBias: 2,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := r.Cull(params).Count(); got != 1 {
		t.Errorf("depth == -bias: uploaded %d, want 1", got)
	}

	// Depth just past -bias: excluded.
	r2 := NewRegistry(4)
	if _, err := r2.Add(Light{
		Position: math.Vec3{Z: -2.001}, Radius: 10, Intensity: 1, CullBias: 2,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := r2.Cull(params).Count(); got != 0 {
		t.Errorf("depth < -bias: uploaded %d, want 0", got)
	}
}

func TestCull_RelevanceThreshold(t *testing.T) {
	r := NewRegistry(4)
	r.Add(Light{Position: math.Vec3{Z: 100}, Radius: 1, Intensity: 0.01})
	r.Add(Light{Position: math.Vec3{Z: 5}, Radius: 20, Intensity: 2})

	buf := r.Cull(CullParams{
		CameraForward: math.Vec3{Z: 1},
		Relevance:     0.05,
		MaxUpload:     8,
	})
	if buf.Count() != 1 {
		t.Fatalf("uploaded %d lights, want 1 (dim distant light dropped)", buf.Count())
	}
	if buf.Lights()[0].Intensity != 2 {
		t.Error("wrong light survived the relevance cut")
	}
}

func TestCull_CapKeepsBrightest(t *testing.T) {
	r := NewRegistry(8)
	// Three lights at the same distance with different intensities.
	for _, intensity := range []float32{1, 5, 3} {
		if _, err := r.Add(Light{
			Position: math.Vec3{Z: 10}, Radius: 10, Intensity: intensity,
		}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	buf := r.Cull(CullParams{
		CameraForward: math.Vec3{Z: 1},
		MaxUpload:     2,
	})
	if buf.Count() != 2 {
		t.Fatalf("uploaded %d, want 2", buf.Count())
	}
	got := []float32{buf.Lights()[0].Intensity, buf.Lights()[1].Intensity}
	if got[0] != 5 || got[1] != 3 {
		t.Errorf("kept intensities %v, want [5 3]", got)
	}
}

func TestCull_DirectionalAlwaysCandidate(t *testing.T) {
	r := NewRegistry(2)
	r.Add(Light{Type: Directional, Direction: math.Vec3{Y: -1}, Radius: 1, Intensity: 1})

	buf := r.Cull(CullParams{
		CameraPos:     math.Vec3{X: 9999},
		CameraForward: math.Vec3{Z: 1},
		MaxUpload:     8,
	})
	if buf.Count() != 1 {
		t.Errorf("directional light culled by position, want included")
	}
}

func TestBuffer_FlatUploadLayout(t *testing.T) {
	r := NewRegistry(2)
	r.Add(Light{
		Type:       Spot,
		Position:   math.Vec3{X: 1, Y: 2, Z: 3},
		Direction:  math.Vec3{X: 0, Y: -1, Z: 0},
		Color:      [3]float32{0.5, 0.6, 0.7},
		Radius:     40,
		Intensity:  2,
		InnerAngle: 0.3,
		OuterAngle: 0.6,
	})

	buf := r.Cull(CullParams{CameraForward: math.Vec3{Z: 1}, MaxUpload: 4})
	pos := buf.Positions()
	if len(pos) != 3 || pos[0] != 1 || pos[1] != 2 || pos[2] != 3 {
		t.Errorf("positions = %v", pos)
	}
	col := buf.Colors()
	if len(col) != 3 || col[0] != 0.5 {
		t.Errorf("colors = %v", col)
	}
	dir := buf.Directions()
	if len(dir) != 4 || dir[1] != -1 || dir[3] != float32(Spot) {
		t.Errorf("directions = %v, want (0,-1,0) with type %d in w", dir, Spot)
	}
	params := buf.Params()
	if len(params) != 4 || params[0] != 40 || params[1] != 2 || params[2] != 0.3 || params[3] != 0.6 {
		t.Errorf("params = %v, want (40, 2, 0.3, 0.6)", params)
	}
}
