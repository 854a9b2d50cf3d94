package path

import "fmt"

// JunctionInfo is the result of a junction query. When Valid is false the
// kind is undefined and all choices are empty.
type JunctionInfo struct {
	Valid bool
	Kind  JunctionKind

	Left     Choice
	Right    Choice
	Straight Choice
}

// QueryJunction finds the junction trigger nearest to z within [z-radius,
// z+radius] on the named path, scanning all three scenery slots of each
// point. Among matches the one with minimum |pz-z| wins; equal distances go
// to the point stored first. Target path names are copied verbatim and never
// resolved here, so dangling names are legal.
func (n *Network) QueryJunction(name string, z, radius float32) (JunctionInfo, error) {
	p, ok := n.paths[name]
	if !ok {
		return JunctionInfo{}, fmt.Errorf("junction query on %q: %w", name, ErrNotFound)
	}

	var best *JunctionTrigger
	var bestDist float32

	for i := range p.points {
		pt := &p.points[i]
		if pt.Z < z-radius || pt.Z > z+radius {
			continue
		}
		dist := pt.Z - z
		if dist < 0 {
			dist = -dist
		}
		for _, sc := range []Scenery{pt.SceneryLeft, pt.SceneryRight, pt.SceneryOverhead} {
			jt, ok := sc.(JunctionTrigger)
			if !ok {
				continue
			}
			if best == nil || dist < bestDist {
				trigger := jt
				best = &trigger
				bestDist = dist
			}
		}
	}

	if best == nil {
		return JunctionInfo{}, nil
	}
	return JunctionInfo{
		Valid:    true,
		Kind:     best.Kind,
		Left:     best.Left,
		Right:    best.Right,
		Straight: best.Straight,
	}, nil
}
