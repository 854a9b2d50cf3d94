// Package lighting provides the dynamic light registry and per-frame culling
// into a bounded upload set for the shader stage.
package lighting

import (
	"errors"
	"fmt"
	"sort"

	"github.com/driftline/driftline/pkg/math"
)

// Light registry errors.
var (
	ErrCapacityExceeded = errors.New("light registry full")
	ErrStaleHandle      = errors.New("stale light handle")
)

// Type selects the light model.
type Type uint8

const (
	Point Type = iota
	Directional
	Spot
)

// Light is one dynamic light source.
type Light struct {
	Type      Type
	Position  math.Vec3
	Direction math.Vec3
	Color     [3]float32
	Intensity float32
	Radius    float32

	// Spot cone angles, radians.
	InnerAngle float32
	OuterAngle float32

	// CullBias keeps lights slightly behind the camera active; a light at
	// camera-relative depth exactly -CullBias is still included.
	CullBias float32
}

// Handle identifies a live light. Slot reuse bumps the generation so stale
// handles are detected instead of silently addressing a new light.
type Handle struct {
	index uint16
	gen   uint16
}

// Valid reports whether the handle was ever issued by a registry.
func (h Handle) Valid() bool { return h.gen != 0 }

type slot struct {
	light  Light
	gen    uint16
	active bool
}

// Registry is a fixed-capacity store of active lights.
type Registry struct {
	slots []slot

	// Removals are deferred to EndFrame so a flush in progress never sees a
	// reused slot.
	pendingFree []uint16
}

// NewRegistry creates a registry with the given capacity.
func NewRegistry(capacity int) *Registry {
	return &Registry{slots: make([]slot, capacity)}
}

// Add registers a light and returns its handle, or ErrCapacityExceeded when
// no slot is free.
func (r *Registry) Add(l Light) (Handle, error) {
	for i := range r.slots {
		s := &r.slots[i]
		if s.active || r.isPending(uint16(i)) {
			continue
		}
		s.light = l
		s.active = true
		s.gen++
		if s.gen == 0 { // 0 marks never-issued handles
			s.gen = 1
		}
		return Handle{index: uint16(i), gen: s.gen}, nil
	}
	return Handle{}, fmt.Errorf("add light: %w", ErrCapacityExceeded)
}

// Get returns the light for a handle.
func (r *Registry) Get(h Handle) (Light, error) {
	s, err := r.slot(h)
	if err != nil {
		return Light{}, err
	}
	return s.light, nil
}

// Update replaces the light behind a handle.
func (r *Registry) Update(h Handle, l Light) error {
	s, err := r.slot(h)
	if err != nil {
		return err
	}
	s.light = l
	return nil
}

// Remove deactivates a light. The slot is not reusable until EndFrame
// confirms no pending frame references it.
func (r *Registry) Remove(h Handle) error {
	s, err := r.slot(h)
	if err != nil {
		return err
	}
	s.active = false
	r.pendingFree = append(r.pendingFree, h.index)
	return nil
}

// EndFrame releases slots of lights removed during the frame.
func (r *Registry) EndFrame() {
	r.pendingFree = r.pendingFree[:0]
}

// ActiveCount returns the number of live lights.
func (r *Registry) ActiveCount() int {
	n := 0
	for i := range r.slots {
		if r.slots[i].active {
			n++
		}
	}
	return n
}

func (r *Registry) slot(h Handle) (*slot, error) {
	if int(h.index) >= len(r.slots) {
		return nil, fmt.Errorf("light %d: %w", h.index, ErrStaleHandle)
	}
	s := &r.slots[h.index]
	if !s.active || s.gen != h.gen {
		return nil, fmt.Errorf("light %d gen %d: %w", h.index, h.gen, ErrStaleHandle)
	}
	return s, nil
}

func (r *Registry) isPending(idx uint16) bool {
	for _, p := range r.pendingFree {
		if p == idx {
			return true
		}
	}
	return false
}

// CullParams controls per-frame light selection.
type CullParams struct {
	CameraPos     math.Vec3
	CameraForward math.Vec3 // unit

	// Minimum intensity*radius/(1+distance) for inclusion.
	Relevance float32

	// Hard cap on the uploaded set.
	MaxUpload int
}

type scored struct {
	light Light
	score float32
}

// Cull selects the lights to upload this frame: depth >= -CullBias, bright
// enough to matter, brightest-at-distance first when over the cap. Dropped
// lights are not errors.
func (r *Registry) Cull(p CullParams) *Buffer {
	var candidates []scored
	for i := range r.slots {
		s := &r.slots[i]
		if !s.active {
			continue
		}
		l := s.light

		if l.Type == Directional {
			// Directional lights have no position to cull by.
			candidates = append(candidates, scored{light: l, score: l.Intensity * l.Radius})
			continue
		}

		rel := l.Position.Sub(p.CameraPos)
		depth := rel.Dot(p.CameraForward)
		if depth < -l.CullBias {
			continue
		}
		score := l.Intensity * l.Radius / (1 + rel.Length())
		if score < p.Relevance {
			continue
		}
		candidates = append(candidates, scored{light: l, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if p.MaxUpload > 0 && len(candidates) > p.MaxUpload {
		candidates = candidates[:p.MaxUpload]
	}

	buf := NewBuffer(len(candidates))
	for _, c := range candidates {
		buf.add(c.light)
	}
	return buf
}
