// Package camera provides the view camera used for culling and rendering.
package camera

import (
	gomath "math"

	"github.com/driftline/driftline/pkg/math"
)

// Camera is a free camera described by position and yaw/pitch angles.
type Camera struct {
	Position math.Vec3
	Yaw      float32 // radians, 0 looks down +Z
	Pitch    float32 // radians

	FOV  float32 // vertical, radians
	Near float32
	Far  float32
}

// New creates a camera with common projection defaults.
func New() *Camera {
	return &Camera{
		FOV:  0.785398, // 45 degrees
		Near: 0.5,
		Far:  10000.0,
	}
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math.Vec3 {
	cp := float32(gomath.Cos(float64(c.Pitch)))
	return math.Vec3{
		X: cp * float32(gomath.Sin(float64(c.Yaw))),
		Y: float32(gomath.Sin(float64(c.Pitch))),
		Z: cp * float32(gomath.Cos(float64(c.Yaw))),
	}
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math.Mat4 {
	target := c.Position.Add(c.Forward())
	return math.LookAt(c.Position, target, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for an aspect ratio.
func (c *Camera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection(aspect float32) math.Mat4 {
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// DepthOf returns the camera-relative depth of a world point.
func (c *Camera) DepthOf(p math.Vec3) float32 {
	return p.Sub(c.Position).Dot(c.Forward())
}
