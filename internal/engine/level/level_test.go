package level

import (
	"errors"
	"testing"

	"github.com/driftline/driftline/internal/engine/lighting"
	"github.com/driftline/driftline/pkg/math"
)

func TestStore_Create_Duplicate(t *testing.T) {
	s := NewStore()
	if _, err := s.Create("L0"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := s.Create("L0")
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestLevel_AddWall_IndexValidation(t *testing.T) {
	s := NewStore()
	l, err := s.Create("L0")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	l.AddVertex(Vertex{0, 0, 0})
	l.AddVertex(Vertex{1, 0, 0})

	tests := []struct {
		name string
		wall Wall
	}{
		{"start out of range", Wall{Start: 2, End: 0}},
		{"end out of range", Wall{Start: 0, End: 5}},
		{"negative start", Wall{Start: -1, End: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.AddWall(tt.wall)
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("expected ErrIndexOutOfRange, got %v", err)
			}
			if len(l.Walls()) != 0 {
				t.Error("failed add must leave level unchanged")
			}
		})
	}

	if _, err := l.AddWall(Wall{Start: 0, End: 1, Ceiling: 3}); err != nil {
		t.Errorf("valid wall: %v", err)
	}
}

func TestLevel_AddFlat_IndexValidation(t *testing.T) {
	s := NewStore()
	l, _ := s.Create("L0")
	for i := 0; i < 3; i++ {
		l.AddVertex(Vertex{float32(i), 0, 0})
	}

	_, err := l.AddFlat(Flat{Vertices: []int{0, 1, 3}})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if len(l.Flats()) != 0 {
		t.Error("failed add must leave level unchanged")
	}
}

func TestLevel_SetLight(t *testing.T) {
	s := NewStore()
	l, _ := s.Create("L0")

	for _, id := range []int{0, -3} {
		err := l.SetLight(id, lighting.Light{Intensity: 1})
		if !errors.Is(err, ErrInvalidLightID) {
			t.Errorf("id %d: expected ErrInvalidLightID, got %v", id, err)
		}
	}

	want := lighting.Light{Color: [3]float32{1, 0.5, 0}, Radius: 20, Intensity: 2}
	if err := l.SetLight(4, want); err != nil {
		t.Fatalf("set light: %v", err)
	}
	got, ok := l.LightByID(4)
	if !ok {
		t.Fatal("light 4 not found after SetLight")
	}
	if got != want {
		t.Errorf("light = %+v, want %+v", got, want)
	}
	if _, ok := l.LightByID(5); ok {
		t.Error("unexpected light for unbound id")
	}
}

func TestLevel_GrowthPreservesData(t *testing.T) {
	s := NewStore()
	l, _ := s.Create("L0")

	// Push well past the initial capacity.
	for i := 0; i < 200; i++ {
		l.AddVertex(Vertex{X: float32(i)})
	}
	if l.VertexCount() != 200 {
		t.Fatalf("expected 200 vertices, got %d", l.VertexCount())
	}
	for i, v := range l.Vertices() {
		if v.X != float32(i) {
			t.Fatalf("vertex %d corrupted after growth: %+v", i, v)
		}
	}
}

func TestStore_DestroyInvalidatesLevel(t *testing.T) {
	s := NewStore()
	l, _ := s.Create("L0")

	// Unit square flat.
	l.AddVertex(Vertex{0, 0, 0})
	l.AddVertex(Vertex{1, 0, 0})
	l.AddVertex(Vertex{1, 0, 1})
	l.AddVertex(Vertex{0, 0, 1})
	if _, err := l.AddFlat(Flat{Vertices: []int{0, 1, 2, 3}, Height: 0}); err != nil {
		t.Fatalf("add flat: %v", err)
	}

	if err := s.Destroy("L0"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, err := s.Get("L0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after destroy, got %v", err)
	}
}

func TestLevel_TransformAppliedNotBaked(t *testing.T) {
	s := NewStore()
	l, _ := s.Create("L0")
	idx := l.AddVertex(Vertex{1, 0, 0})

	l.Position = math.Vec3{X: 10}
	m := l.Transform()
	world := m.TransformPoint(math.Vec3{X: 1})
	if world.X != 11 {
		t.Errorf("transformed X = %g, want 11", world.X)
	}

	// Stored coordinates stay level-local.
	if l.Vertices()[idx].X != 1 {
		t.Errorf("stored vertex mutated: %+v", l.Vertices()[idx])
	}
}
