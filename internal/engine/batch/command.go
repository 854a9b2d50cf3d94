package batch

import (
	gomath "math"

	"github.com/driftline/driftline/internal/engine/gpu"
)

// Pass is a flush pass index. Opaque draws before transparent.
type Pass uint8

const (
	PassOpaque Pass = iota
	PassTransparent
)

// Kind discriminates what a command draws. It does not affect sorting; it
// exists for stats and debugging.
type Kind uint8

const (
	KindSprite Kind = iota
	KindRibbon
	KindWall
	KindFlat
	KindMesh
)

// VertexStride is the number of floats per vertex: position xyz, color rgba,
// texcoord uv.
const VertexStride = 9

// Command is one recorded draw. Vertices are already in world space;
// commands are transient and consumed by the flush that follows them.
type Command struct {
	Kind    Kind
	Pass    Pass
	Texture gpu.TextureID
	Blend   gpu.BlendMode
	Depth   float32 // camera-relative, used within transparent passes

	Vertices []float32 // length must be a multiple of VertexStride

	key uint64
}

// sortKey packs (pass, texture, depth) so a single integer compare orders
// commands: pass ascending, texture ascending, and for transparent passes
// depth descending for back-to-front blending.
func (c *Command) sortKey() uint64 {
	key := uint64(c.Pass) << 56
	key |= (uint64(c.Texture) & 0xFFFFFF) << 32
	if c.Pass == PassTransparent {
		key |= uint64(0xFFFFFFFF - floatBits(c.Depth))
	}
	return key
}

// floatBits maps a float32 to an ordered uint32: larger floats map to larger
// integers, including negatives.
func floatBits(f float32) uint32 {
	b := gomath.Float32bits(f)
	if b&0x80000000 != 0 {
		return ^b
	}
	return b | 0x80000000
}
