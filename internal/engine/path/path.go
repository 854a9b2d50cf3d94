// Package path implements the parametric path network: named splines of
// ordered points carrying geometry, surface appearance and scenery, plus the
// junction query engine for path-to-path navigation.
package path

import (
	"errors"
	"fmt"
	"sort"
)

// Path network errors.
var (
	ErrNotFound        = errors.New("path not found")
	ErrDuplicateName   = errors.New("path name already exists")
	ErrInvalidOrdering = errors.New("point position must exceed last point")
)

// Surface describes how a lane band is filled: a texture handle, or a flat
// color when Texture is zero.
type Surface struct {
	Texture uint32
	Color   [4]float32
}

// Point is one record on a path. Points are ordered by strictly increasing Z
// within their path.
type Point struct {
	Z        float32 // longitudinal position
	Lateral  float32
	Vertical float32
	Bank     float32 // radians

	Width float32
	Lanes int

	// Optional split-lane block; SplitLanes == 0 disables it.
	SplitWidth  float32
	SplitOffset float32
	SplitLanes  int

	Surface      Surface
	SplitSurface Surface

	RumbleColor [4]float32
	RumbleWidth float32
	LineColor   [4]float32
	LineWidth   float32

	SceneryLeft     Scenery
	SceneryRight    Scenery
	SceneryOverhead Scenery

	Tag int
}

// Path is a named, ordered sequence of points.
type Path struct {
	name   string
	points []Point
}

// Name returns the path name.
func (p *Path) Name() string { return p.name }

// Len returns the number of points.
func (p *Path) Len() int { return len(p.points) }

// Network owns all paths, keyed by name.
type Network struct {
	paths map[string]*Path
}

// NewNetwork creates an empty path network.
func NewNetwork() *Network {
	return &Network{paths: make(map[string]*Path)}
}

// Create adds a new empty path. Fails with ErrDuplicateName if the name is
// already taken.
func (n *Network) Create(name string) error {
	if _, ok := n.paths[name]; ok {
		return fmt.Errorf("create path %q: %w", name, ErrDuplicateName)
	}
	n.paths[name] = &Path{name: name}
	return nil
}

// Destroy removes a path and invalidates all its point data.
func (n *Network) Destroy(name string) error {
	if _, ok := n.paths[name]; !ok {
		return fmt.Errorf("destroy path %q: %w", name, ErrNotFound)
	}
	delete(n.paths, name)
	return nil
}

// AddPoint appends a point to the named path. The point's Z must strictly
// exceed the last point's Z; a failed add leaves the path unchanged.
func (n *Network) AddPoint(name string, pt Point) error {
	p, ok := n.paths[name]
	if !ok {
		return fmt.Errorf("add point to %q: %w", name, ErrNotFound)
	}
	if len(p.points) > 0 && pt.Z <= p.points[len(p.points)-1].Z {
		return fmt.Errorf("add point to %q at z=%g: %w", name, pt.Z, ErrInvalidOrdering)
	}
	p.points = append(p.points, pt)
	return nil
}

// Points returns the ordered points of the named path. The returned slice is
// a read-only view owned by the network; callers must not modify it.
func (n *Network) Points(name string) ([]Point, error) {
	p, ok := n.paths[name]
	if !ok {
		return nil, fmt.Errorf("points of %q: %w", name, ErrNotFound)
	}
	return p.points, nil
}

// Has reports whether the named path exists.
func (n *Network) Has(name string) bool {
	_, ok := n.paths[name]
	return ok
}

// Names returns all path names in sorted order.
func (n *Network) Names() []string {
	names := make([]string, 0, len(n.paths))
	for name := range n.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
