// Package pipeline is the root of the rendering pipeline: one context object
// wiring the path network, level store, style registry, light set, texture
// manager and batch renderer over a GPU device. All state is explicit; there
// are no package-level singletons, so independent instances can coexist.
package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/driftline/driftline/internal/engine/batch"
	"github.com/driftline/driftline/internal/engine/camera"
	"github.com/driftline/driftline/internal/engine/gpu"
	"github.com/driftline/driftline/internal/engine/level"
	"github.com/driftline/driftline/internal/engine/lighting"
	"github.com/driftline/driftline/internal/engine/path"
	"github.com/driftline/driftline/internal/engine/style"
	"github.com/driftline/driftline/internal/engine/texture"
	"github.com/driftline/driftline/internal/logger"
	"github.com/driftline/driftline/pkg/math"
)

// ErrFrameNotOpen is returned by draw operations outside a
// BeginFrame/EndFrame pair.
var ErrFrameNotOpen = errors.New("no frame open")

// Config sizes the pipeline.
type Config struct {
	Width  int
	Height int

	Batch batch.Config

	MaxLights       int
	MaxUploadLights int
	LightRelevance  float32

	// Default search radius for QueryJunction.
	JunctionRadius float32
}

// DefaultConfig returns a config with the engine defaults.
func DefaultConfig() Config {
	return Config{
		Width:  1280,
		Height: 720,
		Batch: batch.Config{
			InitialVertices: 4096,
			MaxVertices:     262144,
		},
		MaxLights:       256,
		MaxUploadLights: 32,
		LightRelevance:  0.05,
		JunctionRadius:  10.0,
	}
}

// Stats carries per-frame pipeline counters.
type Stats struct {
	Batch        batch.Stats
	ActiveLights int
	LightsDrawn  int
}

// Pipeline owns all world/rendering state for one engine instance.
type Pipeline struct {
	cfg      Config
	device   gpu.Device
	textures *texture.Manager

	network *path.Network
	levels  *level.Store
	styles  *style.Registry
	lights  *lighting.Registry
	batch   *batch.Batch

	camera      *camera.Camera
	lightsDrawn int
	inFrame     bool
	lightsSent  bool

	// Handles for level thing lights folded into the registry, keyed by
	// (level name, thing light id).
	thingLights map[thingLightKey]lighting.Handle
}

type thingLightKey struct {
	level string
	id    int
}

// New creates a pipeline over the given device and texture manager.
func New(cfg Config, device gpu.Device, textures *texture.Manager) (*Pipeline, error) {
	p := &Pipeline{
		cfg:         cfg,
		device:      device,
		textures:    textures,
		network:     path.NewNetwork(),
		levels:      level.NewStore(),
		lights:      lighting.NewRegistry(cfg.MaxLights),
		camera:      camera.New(),
		thingLights: make(map[thingLightKey]lighting.Handle),
	}

	b, err := batch.New(device, textures, cfg.Batch)
	if err != nil {
		return nil, fmt.Errorf("creating batch renderer: %w", err)
	}
	p.batch = b

	p.styles = style.NewRegistry(
		style.SceneryStyle{Draw: defaultSceneryDraw, Ctx: p},
		style.PathStyle{Draw: defaultPathDraw, Ctx: p},
	)

	logger.Info("pipeline created",
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("max_lights", cfg.MaxLights),
		zap.Int("batch_ceiling", cfg.Batch.MaxVertices),
	)
	return p, nil
}

// Network returns the path network.
func (p *Pipeline) Network() *path.Network { return p.network }

// Levels returns the level store.
func (p *Pipeline) Levels() *level.Store { return p.levels }

// Styles returns the style registry.
func (p *Pipeline) Styles() *style.Registry { return p.styles }

// Lights returns the light registry.
func (p *Pipeline) Lights() *lighting.Registry { return p.lights }

// Camera returns the view camera.
func (p *Pipeline) Camera() *camera.Camera { return p.camera }

// QueryJunction queries the nearest junction on a path using the configured
// default radius.
func (p *Pipeline) QueryJunction(name string, z float32) (path.JunctionInfo, error) {
	return p.network.QueryJunction(name, z, p.cfg.JunctionRadius)
}

// BeginFrame opens recording and uploads the view-projection matrix. Light
// upload is deferred to the first flush so lights folded in during draw
// calls still light the same frame.
func (p *Pipeline) BeginFrame() {
	p.inFrame = true
	p.lightsSent = false
	p.batch.Begin()

	aspect := float32(p.cfg.Width) / float32(p.cfg.Height)
	vp := p.camera.ViewProjection(aspect)
	p.device.SetViewProjection([16]float32(vp))
}

// uploadLights culls and uploads the light set once per frame.
func (p *Pipeline) uploadLights() {
	if p.lightsSent {
		return
	}
	p.lightsSent = true

	buf := p.lights.Cull(lighting.CullParams{
		CameraPos:     p.camera.Position,
		CameraForward: p.camera.Forward(),
		Relevance:     p.cfg.LightRelevance,
		MaxUpload:     p.cfg.MaxUploadLights,
	})
	p.lightsDrawn = buf.Count()
	p.device.UploadLights(buf.Positions(), buf.Colors(), buf.Directions(), buf.Params(), buf.Count())
}

// Flush forces a mid-frame flush of everything recorded so far, for callers
// that render in multiple passes.
func (p *Pipeline) Flush() error {
	p.uploadLights()
	return p.batch.Flush()
}

// EndFrame flushes remaining commands and closes the frame. Overflow is
// surfaced but non-fatal; the frame renders partially.
func (p *Pipeline) EndFrame() error {
	p.uploadLights()
	err := p.batch.End()
	p.lights.EndFrame()
	p.inFrame = false
	return err
}

// Stats returns the counters of the most recent frame.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Batch:        p.batch.Stats(),
		ActiveLights: p.lights.ActiveCount(),
		LightsDrawn:  p.lightsDrawn,
	}
}

// DrawSprite submits a camera-facing textured quad at a world position.
func (p *Pipeline) DrawSprite(pos math.Vec3, width, height float32, tex gpu.TextureID, tint [4]float32) error {
	if !p.inFrame {
		return ErrFrameNotOpen
	}
	fwd := p.camera.Forward()
	right := math.Vec3{Y: 1}.Cross(fwd).Normalize()
	if right.Length() == 0 {
		right = math.Vec3{X: 1}
	}
	up := fwd.Cross(right)

	halfW := right.Scale(width / 2)
	bl := pos.Sub(halfW)
	br := pos.Add(halfW)
	tl := bl.Add(up.Scale(height))
	tr := br.Add(up.Scale(height))

	verts := make([]float32, 0, 6*batch.VertexStride)
	verts = appendVertex(verts, bl, tint, 0, 1)
	verts = appendVertex(verts, br, tint, 1, 1)
	verts = appendVertex(verts, tr, tint, 1, 0)
	verts = appendVertex(verts, bl, tint, 0, 1)
	verts = appendVertex(verts, tr, tint, 1, 0)
	verts = appendVertex(verts, tl, tint, 0, 0)

	return p.batch.Submit(batch.Command{
		Kind:     batch.KindSprite,
		Pass:     batch.PassTransparent,
		Texture:  tex,
		Blend:    gpu.BlendAlpha,
		Depth:    p.camera.DepthOf(pos),
		Vertices: verts,
	})
}

// Particle is one camera-facing additive quad, submitted in groups.
type Particle struct {
	Position math.Vec3
	Size     float32
	Color    [4]float32
}

// DrawParticles submits a group of particles as one additive-blended
// command, depth-keyed on the group's centroid.
func (p *Pipeline) DrawParticles(particles []Particle, tex gpu.TextureID) error {
	if !p.inFrame {
		return ErrFrameNotOpen
	}
	if len(particles) == 0 {
		return nil
	}
	fwd := p.camera.Forward()
	right := math.Vec3{Y: 1}.Cross(fwd).Normalize()
	if right.Length() == 0 {
		right = math.Vec3{X: 1}
	}
	up := fwd.Cross(right)

	var centroid math.Vec3
	verts := make([]float32, 0, len(particles)*6*batch.VertexStride)
	for _, pt := range particles {
		centroid = centroid.Add(pt.Position)
		half := pt.Size / 2
		r := right.Scale(half)
		u := up.Scale(half)
		bl := pt.Position.Sub(r).Sub(u)
		br := pt.Position.Add(r).Sub(u)
		tl := pt.Position.Sub(r).Add(u)
		tr := pt.Position.Add(r).Add(u)

		verts = appendVertex(verts, bl, pt.Color, 0, 1)
		verts = appendVertex(verts, br, pt.Color, 1, 1)
		verts = appendVertex(verts, tr, pt.Color, 1, 0)
		verts = appendVertex(verts, bl, pt.Color, 0, 1)
		verts = appendVertex(verts, tr, pt.Color, 1, 0)
		verts = appendVertex(verts, tl, pt.Color, 0, 0)
	}
	centroid = centroid.Scale(1 / float32(len(particles)))

	return p.batch.Submit(batch.Command{
		Kind:     batch.KindSprite,
		Pass:     batch.PassTransparent,
		Texture:  tex,
		Blend:    gpu.BlendAdditive,
		Depth:    p.camera.DepthOf(centroid),
		Vertices: verts,
	})
}

// Mesh is an opaque CPU-side triangle mesh owned by a collaborator; the
// pipeline only reads it.
type Mesh struct {
	Vertices []math.Vec3
	Indices  []int
}

// DrawMesh submits an externally owned mesh with a world transform. A nil
// or empty mesh is skipped with a warning, not an error.
func (p *Pipeline) DrawMesh(m *Mesh, transform math.Mat4, tex gpu.TextureID, tint [4]float32) error {
	if !p.inFrame {
		return ErrFrameNotOpen
	}
	if m == nil || len(m.Indices) == 0 {
		logger.Warn("skipping nil or empty mesh")
		return nil
	}
	verts := make([]float32, 0, len(m.Indices)*batch.VertexStride)
	for _, idx := range m.Indices {
		if idx < 0 || idx >= len(m.Vertices) {
			logger.Warn("skipping mesh with dangling index", zap.Int("index", idx))
			return nil
		}
		world := transform.TransformPoint(m.Vertices[idx])
		verts = appendVertex(verts, world, tint, 0, 0)
	}
	return p.batch.Submit(batch.Command{
		Kind:     batch.KindMesh,
		Pass:     batch.PassOpaque,
		Texture:  tex,
		Blend:    gpu.BlendOpaque,
		Vertices: verts,
	})
}

// Destroy releases pipeline resources.
func (p *Pipeline) Destroy() {
	p.batch.Destroy()
	logger.Info("pipeline destroyed")
}

// appendVertex packs one vertex in batch.VertexStride layout.
func appendVertex(dst []float32, pos math.Vec3, color [4]float32, u, v float32) []float32 {
	return append(dst,
		pos.X, pos.Y, pos.Z,
		color[0], color[1], color[2], color[3],
		u, v,
	)
}
