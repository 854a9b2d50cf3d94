package demo

import (
	"image"
	"image/color"
	stdmath "math"

	"go.uber.org/zap"

	"github.com/driftline/driftline/internal/engine/gpu"
	"github.com/driftline/driftline/internal/engine/level"
	"github.com/driftline/driftline/internal/engine/lighting"
	"github.com/driftline/driftline/internal/engine/path"
	"github.com/driftline/driftline/internal/logger"
	"github.com/driftline/driftline/pkg/math"
)

const (
	mainPathLen  = 2000.0
	sidePathLen  = 800.0
	pointSpacing = 20.0
	lampSpacing  = 5 // points between street lamps
)

// buildWorld assembles the demo content: a main path that forks onto a side
// path, street lamps registered as dynamic lights, and a small lit room.
func (a *App) buildWorld() error {
	checker := a.textures.Register(checkerboard(64, 8))

	if err := a.buildPaths(); err != nil {
		return err
	}
	if err := a.buildRoom(checker); err != nil {
		return err
	}

	a.rider = newRider("main")
	return nil
}

func (a *App) buildPaths() error {
	net := a.pipe.Network()
	if err := net.Create("main"); err != nil {
		return err
	}
	if err := net.Create("side"); err != nil {
		return err
	}

	const forkZ = mainPathLen / 2

	i := 0
	for z := float32(0); z <= mainPathLen; z += pointSpacing {
		pt := path.Point{
			Z:       z,
			Width:   12,
			Lanes:   2,
			Surface: path.Surface{Color: [4]float32{0.25, 0.25, 0.27, 1}},

			RumbleColor: [4]float32{0.8, 0.2, 0.2, 1},
			RumbleWidth: 0.8,
			LineColor:   [4]float32{0.9, 0.9, 0.9, 1},
			LineWidth:   0.25,
		}
		// Gentle weave and a rise past the fork.
		pt.Lateral = 6 * sin32(z/300)
		if z > forkZ {
			pt.Vertical = (z - forkZ) * 0.02
		}

		if i%lampSpacing == 0 {
			pt.SceneryLeft = path.LightSource{
				Color:     [3]float32{1.0, 0.9, 0.7},
				Radius:    30,
				Intensity: 1.2,
			}
		}
		if z == forkZ {
			pt.SceneryRight = path.JunctionTrigger{
				Kind:  path.JunctionFork,
				Left:  path.Choice{PathName: "side", Z: 0},
				Straight: path.Choice{
					PathName: "main", Z: forkZ + pointSpacing,
				},
			}
		}

		if err := net.AddPoint("main", pt); err != nil {
			return err
		}
		i++
	}

	for z := float32(0); z <= sidePathLen; z += pointSpacing {
		pt := path.Point{
			Z:       z,
			Width:   8,
			Lanes:   1,
			Surface: path.Surface{Color: [4]float32{0.3, 0.28, 0.24, 1}},
			Lateral: -40 - z*0.1, // bends away from the main path
		}
		if err := net.AddPoint("side", pt); err != nil {
			return err
		}
	}

	// Street lamps double as dynamic lights; the scenery carries the
	// appearance, the registry carries the illumination.
	return a.registerPathLights("main")
}

// registerPathLights walks a path's light-source scenery and adds each one to
// the light registry at its world position.
func (a *App) registerPathLights(name string) error {
	pts, err := a.pipe.Network().Points(name)
	if err != nil {
		return err
	}
	added := 0
	for i := range pts {
		for _, sc := range []path.Scenery{pts[i].SceneryLeft, pts[i].SceneryRight, pts[i].SceneryOverhead} {
			ls, ok := sc.(path.LightSource)
			if !ok {
				continue
			}
			pos := math.Vec3{X: pts[i].Lateral - pts[i].Width/2, Y: pts[i].Vertical + 5, Z: pts[i].Z}
			_, err := a.pipe.Lights().Add(lighting.Light{
				Type:      lighting.Point,
				Position:  pos,
				Color:     ls.Color,
				Radius:    ls.Radius,
				Intensity: ls.Intensity,
				CullBias:  10,
			})
			if err != nil {
				logger.Warn("light registry full, remaining lamps unlit",
					zap.String("path", name), zap.Int("added", added))
				return nil
			}
			added++
		}
	}
	logger.Info("registered path lights", zap.String("path", name), zap.Int("count", added))
	return nil
}

func (a *App) buildRoom(tex gpu.TextureID) error {
	l, err := a.pipe.Levels().Create("roadhouse")
	if err != nil {
		return err
	}
	l.Position = math.Vec3{X: 30, Y: 0, Z: 200}

	corners := [][2]float32{{0, 0}, {20, 0}, {20, 20}, {12, 20}, {12, 12}, {0, 12}}
	idx := make([]int, len(corners))
	for i, c := range corners {
		idx[i] = l.AddVertex(level.Vertex{X: c[0], Z: c[1]})
	}

	for i := range idx {
		j := (i + 1) % len(idx)
		// Leave a doorway on the first wall.
		if i == 0 {
			continue
		}
		_, err := l.AddWall(level.Wall{
			Start: idx[i], End: idx[j],
			Floor: 0, Ceiling: 5,
			Texture:    uint32(tex),
			Brightness: 0.9,
		})
		if err != nil {
			return err
		}
	}

	if _, err := l.AddFlat(level.Flat{Vertices: idx, Height: 0, Brightness: 0.6}); err != nil {
		return err
	}
	if _, err := l.AddFlat(level.Flat{Vertices: idx, Height: 5, Brightness: 0.4}); err != nil {
		return err
	}

	// A lamp thing in the middle of the room; its light definition rides
	// along and is folded into the light set at draw time.
	const lampLight = 1
	err = l.SetLight(lampLight, lighting.Light{
		Type:      lighting.Point,
		Color:     [3]float32{0.9, 0.6, 0.3},
		Radius:    25,
		Intensity: 1.5,
	})
	if err != nil {
		return err
	}
	l.AddThing(level.Thing{
		Position:   math.Vec3{X: 10, Y: 1, Z: 10},
		Sprite:     uint32(tex),
		Scale:      1.5,
		Brightness: 1,
		LightID:    lampLight,
	})
	return nil
}

// checkerboard builds a procedural texture so the demo needs no asset files.
func checkerboard(size, cells int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := size / cells
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{200, 200, 200, 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.RGBA{80, 80, 90, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func sin32(x float32) float32 {
	return float32(stdmath.Sin(float64(x)))
}
