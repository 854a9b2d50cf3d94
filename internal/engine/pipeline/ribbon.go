package pipeline

import (
	stdmath "math"

	"go.uber.org/zap"

	"github.com/driftline/driftline/internal/engine/batch"
	"github.com/driftline/driftline/internal/engine/gpu"
	"github.com/driftline/driftline/internal/engine/path"
	"github.com/driftline/driftline/internal/engine/style"
	"github.com/driftline/driftline/internal/logger"
	"github.com/driftline/driftline/pkg/math"
)

// Lift applied to markings drawn over the main band so they win the depth
// test.
const markingLift = 0.01

// Vertical clearance for overhead scenery above the path surface.
const overheadClearance = 4.0

// DrawPath submits a whole path: one style callback per consecutive point
// pair, plus one per scenery attachment. Scenery with a dangling or unbound
// style falls back to a no-op; the path still renders.
func (p *Pipeline) DrawPath(name string) error {
	if !p.inFrame {
		return ErrFrameNotOpen
	}
	pts, err := p.network.Points(name)
	if err != nil {
		return err
	}

	ps := p.styles.PathStyle(name)
	for i := 0; i+1 < len(pts); i++ {
		ps.Draw(ps.Ctx, p.batch, &pts[i], &pts[i+1])
	}

	for i := range pts {
		pt := &pts[i]
		center, right := pointFrame(pt)
		half := pt.Width / 2
		p.drawScenery(pt.SceneryLeft, center.Sub(right.Scale(half)))
		p.drawScenery(pt.SceneryRight, center.Add(right.Scale(half)))
		p.drawScenery(pt.SceneryOverhead, center.Add(math.Vec3{Y: overheadClearance}))
	}
	return nil
}

func (p *Pipeline) drawScenery(sc path.Scenery, pos math.Vec3) {
	if sc == nil {
		return
	}
	s := p.styles.SceneryStyle(sc.Type())
	s.Draw(s.Ctx, p.batch, sc, pos)
}

// pointFrame returns a point's world-space center and banked lateral axis.
func pointFrame(pt *path.Point) (center, right math.Vec3) {
	center = math.Vec3{X: pt.Lateral, Y: pt.Vertical, Z: pt.Z}
	sin, cos := stdmath.Sincos(float64(pt.Bank))
	right = math.Vec3{X: float32(cos), Y: float32(sin)}
	return center, right
}

// defaultPathDraw is the built-in path style: the main lane band, the
// optional split band, rumble strips outside the edges and lane divider
// lines. ctx is the owning pipeline.
func defaultPathDraw(ctx any, b *batch.Batch, prev, next *path.Point) {
	p := ctx.(*Pipeline)

	c0, r0 := pointFrame(prev)
	c1, r1 := pointFrame(next)
	h0, h1 := prev.Width/2, next.Width/2

	p.submitBand(b, c0, r0, c1, r1, -h0, h0, -h1, h1, prev.Surface, 0)

	if prev.SplitLanes > 0 && next.SplitLanes > 0 {
		p.submitBand(b, c0, r0, c1, r1,
			prev.SplitOffset-prev.SplitWidth/2, prev.SplitOffset+prev.SplitWidth/2,
			next.SplitOffset-next.SplitWidth/2, next.SplitOffset+next.SplitWidth/2,
			prev.SplitSurface, 0)
	}

	if prev.RumbleWidth > 0 {
		rw0, rw1 := prev.RumbleWidth, next.RumbleWidth
		rumble := path.Surface{Color: prev.RumbleColor}
		p.submitBand(b, c0, r0, c1, r1, -h0-rw0, -h0, -h1-rw1, -h1, rumble, markingLift)
		p.submitBand(b, c0, r0, c1, r1, h0, h0+rw0, h1, h1+rw1, rumble, markingLift)
	}

	if prev.Lanes > 1 && prev.LineWidth > 0 {
		line := path.Surface{Color: prev.LineColor}
		for lane := 1; lane < prev.Lanes; lane++ {
			f := float32(lane)/float32(prev.Lanes)*2 - 1 // -1..1 across the band
			o0 := f * h0
			o1 := f * h1
			p.submitBand(b, c0, r0, c1, r1,
				o0-prev.LineWidth/2, o0+prev.LineWidth/2,
				o1-next.LineWidth/2, o1+next.LineWidth/2,
				line, markingLift)
		}
	}
}

// submitBand emits one quad spanning lateral offsets [a0,b0] at the first
// point and [a1,b1] at the second, lifted vertically to layer markings.
func (p *Pipeline) submitBand(b *batch.Batch, c0, r0, c1, r1 math.Vec3, a0, b0, a1, b1 float32, surf path.Surface, lift float32) {
	up := math.Vec3{Y: lift}
	v00 := c0.Add(r0.Scale(a0)).Add(up)
	v01 := c0.Add(r0.Scale(b0)).Add(up)
	v10 := c1.Add(r1.Scale(a1)).Add(up)
	v11 := c1.Add(r1.Scale(b1)).Add(up)

	color := surf.Color
	if surf.Texture != 0 {
		color = [4]float32{1, 1, 1, 1}
	}

	verts := make([]float32, 0, 6*batch.VertexStride)
	verts = appendVertex(verts, v00, color, 0, 0)
	verts = appendVertex(verts, v01, color, 1, 0)
	verts = appendVertex(verts, v11, color, 1, 1)
	verts = appendVertex(verts, v00, color, 0, 0)
	verts = appendVertex(verts, v11, color, 1, 1)
	verts = appendVertex(verts, v10, color, 0, 1)

	err := b.Submit(batch.Command{
		Kind:     batch.KindRibbon,
		Pass:     batch.PassOpaque,
		Texture:  gpu.TextureID(surf.Texture),
		Blend:    gpu.BlendOpaque,
		Vertices: verts,
	})
	if err != nil {
		logger.Warn("dropping path band", zap.Error(err))
	}
}

// defaultSceneryDraw is the built-in scenery style: visuals render as
// billboards, every other variant is data-only. ctx is the owning pipeline.
func defaultSceneryDraw(ctx any, _ *batch.Batch, sc path.Scenery, pos math.Vec3) {
	p := ctx.(*Pipeline)
	switch v := sc.(type) {
	case path.Visual:
		err := p.DrawSprite(pos, v.Width, v.Height, gpu.TextureID(v.Sprite), [4]float32{1, 1, 1, 1})
		if err != nil {
			logger.Warn("dropping scenery sprite", zap.Error(err))
		}
	default:
		// Markers, junctions, portals and light sources have no intrinsic
		// visual; gameplay systems interpret them.
	}
}

// Ensure the defaults satisfy the style signatures.
var (
	_ style.PathDraw    = defaultPathDraw
	_ style.SceneryDraw = defaultSceneryDraw
)
