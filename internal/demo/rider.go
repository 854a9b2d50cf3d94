package demo

import (
	stdmath "math"
	"sort"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/driftline/driftline/internal/engine/path"
	"github.com/driftline/driftline/internal/logger"
	"github.com/driftline/driftline/pkg/math"
)

// rider follows the active path and drives the camera. Junction choices are
// taken with the arrow keys while inside a trigger's radius.
type rider struct {
	pathName string
	z        float32
	speed    float32
	yaw      float32

	pos math.Vec3
}

func newRider(pathName string) *rider {
	return &rider{
		pathName: pathName,
		speed:    40,
	}
}

func (r *rider) update(a *App, dt float32) {
	if a.input.IsKeyHeld(sdl.SCANCODE_UP) {
		r.speed += 30 * dt
	}
	if a.input.IsKeyHeld(sdl.SCANCODE_DOWN) {
		r.speed -= 30 * dt
		if r.speed < 0 {
			r.speed = 0
		}
	}

	r.z += r.speed * dt
	r.takeJunction(a)

	pts, err := a.pipe.Network().Points(r.pathName)
	if err != nil || len(pts) == 0 {
		return
	}
	// Loop back to the start past the end of the path.
	if last := pts[len(pts)-1].Z; r.z > last {
		r.z = pts[0].Z
	}

	r.pos = samplePath(pts, r.z)
	ahead := samplePath(pts, r.z+5)
	dir := ahead.Sub(r.pos)
	r.yaw = float32(stdmath.Atan2(float64(dir.X), float64(dir.Z)))
}

// takeJunction queries for a trigger near the rider and switches paths when
// an arrow key selects an available choice.
func (r *rider) takeJunction(a *App) {
	info, err := a.pipe.QueryJunction(r.pathName, r.z)
	if err != nil || !info.Valid {
		return
	}

	var choice path.Choice
	switch {
	case a.input.IsKeyHeld(sdl.SCANCODE_LEFT) && info.Left.Valid():
		choice = info.Left
	case a.input.IsKeyHeld(sdl.SCANCODE_RIGHT) && info.Right.Valid():
		choice = info.Right
	default:
		return
	}
	if !a.pipe.Network().Has(choice.PathName) {
		logger.Warn("junction targets a missing path",
			zap.String("target", choice.PathName))
		return
	}

	logger.Info("taking junction",
		zap.String("from", r.pathName),
		zap.String("to", choice.PathName),
		zap.Float32("z", choice.Z),
	)
	r.pathName = choice.PathName
	r.z = choice.Z
}

func (r *rider) cameraPos() math.Vec3 {
	return r.pos.Add(math.Vec3{Y: 4}).Sub(math.Vec3{
		X: 10 * sin32(r.yaw),
		Z: 10 * cos32(r.yaw),
	})
}

// samplePath interpolates a path's centerline at a longitudinal position.
// Positions outside the point range clamp to the ends.
func samplePath(pts []path.Point, z float32) math.Vec3 {
	if z <= pts[0].Z {
		return pointCenter(&pts[0])
	}
	if z >= pts[len(pts)-1].Z {
		return pointCenter(&pts[len(pts)-1])
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Z >= z })
	prev, next := &pts[i-1], &pts[i]
	t := (z - prev.Z) / (next.Z - prev.Z)
	return pointCenter(prev).Lerp(pointCenter(next), t)
}

func pointCenter(pt *path.Point) math.Vec3 {
	return math.Vec3{X: pt.Lateral, Y: pt.Vertical, Z: pt.Z}
}

func cos32(x float32) float32 {
	return float32(stdmath.Cos(float64(x)))
}
