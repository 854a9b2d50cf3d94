package lighting

// Buffer holds one frame's culled lights in upload order.
type Buffer struct {
	lights []Light
}

// NewBuffer creates a buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{lights: make([]Light, 0, capacity)}
}

func (b *Buffer) add(l Light) {
	b.lights = append(b.lights, l)
}

// Count returns the number of lights in the buffer.
func (b *Buffer) Count() int { return len(b.lights) }

// Lights returns the buffered lights in upload order.
func (b *Buffer) Lights() []Light { return b.lights }

// Positions returns positions as a flat float32 slice for GPU upload.
// Format: [x0, y0, z0, x1, y1, z1, ...]
func (b *Buffer) Positions() []float32 {
	out := make([]float32, len(b.lights)*3)
	for i, l := range b.lights {
		out[i*3+0] = l.Position.X
		out[i*3+1] = l.Position.Y
		out[i*3+2] = l.Position.Z
	}
	return out
}

// Colors returns colors as a flat float32 slice for GPU upload.
func (b *Buffer) Colors() []float32 {
	out := make([]float32, len(b.lights)*3)
	for i, l := range b.lights {
		out[i*3+0] = l.Color[0]
		out[i*3+1] = l.Color[1]
		out[i*3+2] = l.Color[2]
	}
	return out
}

// Directions returns (x, y, z, type) quads as a flat float32 slice. The
// fourth component carries the light type so the shader can branch without a
// separate integer array.
func (b *Buffer) Directions() []float32 {
	out := make([]float32, len(b.lights)*4)
	for i, l := range b.lights {
		out[i*4+0] = l.Direction.X
		out[i*4+1] = l.Direction.Y
		out[i*4+2] = l.Direction.Z
		out[i*4+3] = float32(l.Type)
	}
	return out
}

// Params returns (radius, intensity, inner angle, outer angle) quads as a
// flat float32 slice. The cone angles are only meaningful for spot lights.
func (b *Buffer) Params() []float32 {
	out := make([]float32, len(b.lights)*4)
	for i, l := range b.lights {
		out[i*4+0] = l.Radius
		out[i*4+1] = l.Intensity
		out[i*4+2] = l.InnerAngle
		out[i*4+3] = l.OuterAngle
	}
	return out
}
