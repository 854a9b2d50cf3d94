// Package level implements the structured 2.5D level store: named
// collections of vertices, walls, flats and things with per-element lighting
// and texturing, growing dynamically as geometry is appended.
package level

import (
	"errors"
	"fmt"

	"github.com/driftline/driftline/internal/engine/lighting"
	"github.com/driftline/driftline/pkg/math"
)

// Level store errors.
var (
	ErrNotFound        = errors.New("level not found")
	ErrDuplicateName   = errors.New("level name already exists")
	ErrIndexOutOfRange = errors.New("vertex index out of range")
	ErrInvalidLightID  = errors.New("light id must be positive")
)

// Vertex is a level-local 3D position.
type Vertex struct {
	X, Y, Z float32
}

// Wall spans two vertices from floor to ceiling height.
type Wall struct {
	Start, End int // vertex indices
	Floor      float32
	Ceiling    float32
	Texture    uint32
	Brightness float32
	Tag        int
}

// Flat is a horizontal polygon at a fixed height. The vertex index list must
// describe a simple polygon, convex or not.
type Flat struct {
	Vertices   []int
	Height     float32
	Texture    uint32
	Brightness float32
	Tag        int
}

// Thing is a free-standing billboard object.
type Thing struct {
	Position   math.Vec3
	Sprite     uint32
	Scale      float32
	Frame      int
	Brightness float32
	Tag        int
	LightID    int // references a SetLight definition; 0 = no attached light
}

// Level owns the four geometry arrays plus a world transform applied at draw
// time; stored coordinates stay level-local.
type Level struct {
	name string

	vertices []Vertex
	walls    []Wall
	flats    []Flat
	things   []Thing
	lights   map[int]lighting.Light

	Position math.Vec3
	Rotation math.Vec3 // Euler, radians
}

// initialCap seeds each geometry array; growth doubles from there.
const initialCap = 16

func newLevel(name string) *Level {
	return &Level{
		name:     name,
		vertices: make([]Vertex, 0, initialCap),
		walls:    make([]Wall, 0, initialCap),
		flats:    make([]Flat, 0, initialCap),
		things:   make([]Thing, 0, initialCap),
		lights:   make(map[int]lighting.Light),
	}
}

// Name returns the level name.
func (l *Level) Name() string { return l.name }

// AddVertex appends a vertex and returns its index.
func (l *Level) AddVertex(v Vertex) int {
	l.vertices = grow(l.vertices)
	l.vertices = append(l.vertices, v)
	return len(l.vertices) - 1
}

// AddWall appends a wall. Both vertex indices must reference existing
// vertices; a failed add leaves the level unchanged.
func (l *Level) AddWall(w Wall) (int, error) {
	if err := l.checkIndex(w.Start); err != nil {
		return 0, fmt.Errorf("wall start: %w", err)
	}
	if err := l.checkIndex(w.End); err != nil {
		return 0, fmt.Errorf("wall end: %w", err)
	}
	l.walls = grow(l.walls)
	l.walls = append(l.walls, w)
	return len(l.walls) - 1, nil
}

// AddFlat appends a flat. Every polygon index must reference an existing
// vertex; a failed add leaves the level unchanged.
func (l *Level) AddFlat(f Flat) (int, error) {
	for i, idx := range f.Vertices {
		if err := l.checkIndex(idx); err != nil {
			return 0, fmt.Errorf("flat vertex %d: %w", i, err)
		}
	}
	l.flats = grow(l.flats)
	l.flats = append(l.flats, f)
	return len(l.flats) - 1, nil
}

// AddThing appends a thing and returns its index.
func (l *Level) AddThing(t Thing) int {
	l.things = grow(l.things)
	l.things = append(l.things, t)
	return len(l.things) - 1
}

func (l *Level) checkIndex(idx int) error {
	if idx < 0 || idx >= len(l.vertices) {
		return fmt.Errorf("index %d with %d vertices: %w", idx, len(l.vertices), ErrIndexOutOfRange)
	}
	return nil
}

// VertexCount returns the number of vertices.
func (l *Level) VertexCount() int { return len(l.vertices) }

// Vertices returns a read-only view of the vertex array.
func (l *Level) Vertices() []Vertex { return l.vertices }

// Walls returns a read-only view of the wall array.
func (l *Level) Walls() []Wall { return l.walls }

// Flats returns a read-only view of the flat array.
func (l *Level) Flats() []Flat { return l.flats }

// Things returns a read-only view of the thing array.
func (l *Level) Things() []Thing { return l.things }

// SetLight binds a light definition to a positive light id. Things reference
// the definition through Thing.LightID; the definition's position is
// level-local and offsets the owning thing. Rebinding an id overwrites the
// prior definition.
func (l *Level) SetLight(id int, light lighting.Light) error {
	if id <= 0 {
		return fmt.Errorf("set light %d: %w", id, ErrInvalidLightID)
	}
	l.lights[id] = light
	return nil
}

// LightByID returns the light definition bound to an id.
func (l *Level) LightByID(id int) (lighting.Light, bool) {
	def, ok := l.lights[id]
	return def, ok
}

// Transform returns the level's world transform.
func (l *Level) Transform() math.Mat4 {
	return math.EulerXYZ(l.Position, l.Rotation)
}

// grow doubles the capacity of a full slice, copying existing contents.
// Append alone would also grow, but doubling here keeps the amortization
// policy explicit and testable.
func grow[T any](s []T) []T {
	if len(s) < cap(s) {
		return s
	}
	newCap := cap(s) * 2
	if newCap == 0 {
		newCap = initialCap
	}
	out := make([]T, len(s), newCap)
	copy(out, s)
	return out
}

// Store owns all levels, keyed by name.
type Store struct {
	levels map[string]*Level
}

// NewStore creates an empty level store.
func NewStore() *Store {
	return &Store{levels: make(map[string]*Level)}
}

// Create adds a new empty level.
func (s *Store) Create(name string) (*Level, error) {
	if _, ok := s.levels[name]; ok {
		return nil, fmt.Errorf("create level %q: %w", name, ErrDuplicateName)
	}
	l := newLevel(name)
	s.levels[name] = l
	return l, nil
}

// Get returns the named level.
func (s *Store) Get(name string) (*Level, error) {
	l, ok := s.levels[name]
	if !ok {
		return nil, fmt.Errorf("level %q: %w", name, ErrNotFound)
	}
	return l, nil
}

// Destroy frees a level's arrays and invalidates the handle.
func (s *Store) Destroy(name string) error {
	l, ok := s.levels[name]
	if !ok {
		return fmt.Errorf("destroy level %q: %w", name, ErrNotFound)
	}
	l.vertices, l.walls, l.flats, l.things = nil, nil, nil, nil
	l.lights = nil
	delete(s.levels, name)
	return nil
}

// Names returns the names of all levels.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.levels))
	for name := range s.levels {
		names = append(names, name)
	}
	return names
}
