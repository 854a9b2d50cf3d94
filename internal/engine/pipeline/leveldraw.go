package pipeline

import (
	"go.uber.org/zap"

	"github.com/driftline/driftline/internal/engine/batch"
	"github.com/driftline/driftline/internal/engine/gpu"
	"github.com/driftline/driftline/internal/engine/level"
	"github.com/driftline/driftline/internal/logger"
	"github.com/driftline/driftline/pkg/math"
)

// DrawLevel submits a whole level: walls as vertical quads, flats as
// triangulated horizontal polygons, things as billboards. The level's world
// transform is applied at submission; stored geometry stays level-local.
func (p *Pipeline) DrawLevel(name string) error {
	if !p.inFrame {
		return ErrFrameNotOpen
	}
	l, err := p.levels.Get(name)
	if err != nil {
		return err
	}
	tf := l.Transform()
	verts := l.Vertices()

	for i := range l.Walls() {
		p.submitWall(tf, verts, &l.Walls()[i])
	}
	for i := range l.Flats() {
		p.submitFlat(tf, verts, &l.Flats()[i])
	}
	for i := range l.Things() {
		t := &l.Things()[i]
		pos := tf.TransformPoint(t.Position)
		if t.LightID != 0 {
			p.foldThingLight(name, l, t, pos)
		}
		bright := t.Brightness
		err := p.DrawSprite(pos, t.Scale, t.Scale, gpu.TextureID(t.Sprite),
			[4]float32{bright, bright, bright, 1})
		if err != nil {
			logger.Warn("dropping level thing", zap.String("level", name), zap.Error(err))
		}
	}
	return nil
}

// foldThingLight keeps a thing's attached light live in the registry at the
// thing's world position. The light is added on first sight and repositioned
// on later draws, so it follows the level transform.
func (p *Pipeline) foldThingLight(name string, l *level.Level, t *level.Thing, world math.Vec3) {
	def, ok := l.LightByID(t.LightID)
	if !ok {
		logger.Warn("thing references an unbound light id",
			zap.String("level", name), zap.Int("light_id", t.LightID))
		return
	}
	def.Position = world.Add(def.Position)

	key := thingLightKey{level: name, id: t.LightID}
	if h, ok := p.thingLights[key]; ok {
		if err := p.lights.Update(h, def); err == nil {
			return
		}
		// Stale handle, the light was removed behind our back.
		delete(p.thingLights, key)
	}
	h, err := p.lights.Add(def)
	if err != nil {
		logger.Warn("light registry full, thing light dropped",
			zap.String("level", name), zap.Int("light_id", t.LightID))
		return
	}
	p.thingLights[key] = h
}

func (p *Pipeline) submitWall(tf math.Mat4, verts []level.Vertex, w *level.Wall) {
	a := verts[w.Start]
	b := verts[w.End]

	bl := tf.TransformPoint(math.Vec3{X: a.X, Y: w.Floor, Z: a.Z})
	br := tf.TransformPoint(math.Vec3{X: b.X, Y: w.Floor, Z: b.Z})
	tl := tf.TransformPoint(math.Vec3{X: a.X, Y: w.Ceiling, Z: a.Z})
	tr := tf.TransformPoint(math.Vec3{X: b.X, Y: w.Ceiling, Z: b.Z})

	color := brightnessColor(w.Brightness)
	data := make([]float32, 0, 6*batch.VertexStride)
	data = appendVertex(data, bl, color, 0, 1)
	data = appendVertex(data, br, color, 1, 1)
	data = appendVertex(data, tr, color, 1, 0)
	data = appendVertex(data, bl, color, 0, 1)
	data = appendVertex(data, tr, color, 1, 0)
	data = appendVertex(data, tl, color, 0, 0)

	err := p.batch.Submit(batch.Command{
		Kind:     batch.KindWall,
		Pass:     batch.PassOpaque,
		Texture:  gpu.TextureID(w.Texture),
		Blend:    gpu.BlendOpaque,
		Vertices: data,
	})
	if err != nil {
		logger.Warn("dropping wall", zap.Error(err))
	}
}

func (p *Pipeline) submitFlat(tf math.Mat4, verts []level.Vertex, f *level.Flat) {
	if len(f.Vertices) < 3 {
		return
	}
	poly := make([]math.Vec2, len(f.Vertices))
	for i, idx := range f.Vertices {
		poly[i] = math.Vec2{X: verts[idx].X, Y: verts[idx].Z}
	}
	tris := triangulate(poly)
	if len(tris) == 0 {
		logger.Warn("skipping degenerate flat", zap.Int("vertices", len(poly)))
		return
	}

	color := brightnessColor(f.Brightness)
	data := make([]float32, 0, len(tris)*batch.VertexStride)
	for _, i := range tris {
		world := tf.TransformPoint(math.Vec3{X: poly[i].X, Y: f.Height, Z: poly[i].Y})
		data = appendVertex(data, world, color, poly[i].X, poly[i].Y)
	}

	err := p.batch.Submit(batch.Command{
		Kind:     batch.KindFlat,
		Pass:     batch.PassOpaque,
		Texture:  gpu.TextureID(f.Texture),
		Blend:    gpu.BlendOpaque,
		Vertices: data,
	})
	if err != nil {
		logger.Warn("dropping flat", zap.Error(err))
	}
}

// brightnessColor modulates a surface by its per-element brightness.
func brightnessColor(brightness float32) [4]float32 {
	return [4]float32{brightness, brightness, brightness, 1}
}

// triangulate ear-clips a simple polygon, convex or not, and returns index
// triples into the input. Degenerate input returns nil.
func triangulate(poly []math.Vec2) []int {
	n := len(poly)
	if n < 3 {
		return nil
	}

	ccw := signedArea(poly) > 0
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	var tris []int
	guard := 0
	for len(remaining) > 3 && guard < n*n {
		guard++
		clipped := false
		for i := 0; i < len(remaining); i++ {
			prev := remaining[(i+len(remaining)-1)%len(remaining)]
			curr := remaining[i]
			next := remaining[(i+1)%len(remaining)]
			if !isEar(poly, remaining, prev, curr, next, ccw) {
				continue
			}
			tris = append(tris, prev, curr, next)
			remaining = append(remaining[:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil
		}
	}
	if len(remaining) == 3 {
		tris = append(tris, remaining[0], remaining[1], remaining[2])
	}
	return tris
}

func signedArea(poly []math.Vec2) float32 {
	var area float32
	for i := range poly {
		j := (i + 1) % len(poly)
		area += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return area / 2
}

func isEar(poly []math.Vec2, remaining []int, prev, curr, next int, ccw bool) bool {
	a, b, c := poly[prev], poly[curr], poly[next]
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if ccw && cross <= 0 || !ccw && cross >= 0 {
		return false // reflex corner
	}
	for _, idx := range remaining {
		if idx == prev || idx == curr || idx == next {
			continue
		}
		if pointInTriangle(poly[idx], a, b, c) {
			return false
		}
	}
	return true
}

func pointInTriangle(p, a, b, c math.Vec2) bool {
	d1 := (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
	d2 := (p.X-c.X)*(b.Y-c.Y) - (b.X-c.X)*(p.Y-c.Y)
	d3 := (p.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(p.Y-a.Y)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
