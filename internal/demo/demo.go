// Package demo implements the sample application: a procedurally built path
// network with a fork junction, a small interior level and dynamic lights,
// driven through the rendering pipeline in a classic frame loop.
package demo

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/internal/engine/batch"
	"github.com/driftline/driftline/internal/engine/gpu/gldevice"
	"github.com/driftline/driftline/internal/engine/input"
	"github.com/driftline/driftline/internal/engine/pipeline"
	"github.com/driftline/driftline/internal/engine/texture"
	"github.com/driftline/driftline/internal/engine/window"
	"github.com/driftline/driftline/internal/logger"
)

// App is the demo application instance.
type App struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	device   *gldevice.Device
	textures *texture.Manager
	pipe     *pipeline.Pipeline

	input *input.Input
	rider *rider
}

// New creates the demo. The window and GL context are created here; the
// pipeline is built on top of them.
func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	var err error
	a.window, err = window.New(window.Config{
		Title:      "Driftline",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	// GL device requires the context created by the window.
	a.device, err = gldevice.New(cfg.Graphics.Width, cfg.Graphics.Height)
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("creating GL device: %w", err)
	}

	a.textures = texture.NewManager(a.device.UploadTexture)

	a.pipe, err = pipeline.New(pipeline.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
		Batch: batch.Config{
			InitialVertices: cfg.Pipeline.BatchInitialVertices,
			MaxVertices:     cfg.Pipeline.BatchMaxVertices,
		},
		MaxLights:       cfg.Pipeline.MaxLights,
		MaxUploadLights: cfg.Pipeline.MaxUploadLights,
		LightRelevance:  cfg.Pipeline.LightRelevance,
		JunctionRadius:  cfg.Pipeline.JunctionRadius,
	}, a.device, a.textures)
	if err != nil {
		a.device.Close()
		a.window.Close()
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}

	a.input = input.New()

	if err := a.buildWorld(); err != nil {
		a.Close()
		return nil, fmt.Errorf("building demo world: %w", err)
	}

	logger.Info("demo initialized")
	return a, nil
}

// Run drives the frame loop until quit.
func (a *App) Run() error {
	a.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting frame loop")

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if a.input.Update() {
			break
		}
		for _, event := range a.input.Events() {
			switch event.Type {
			case input.EventWindowResize:
				a.device.Resize(event.Width, event.Height)
			case input.EventKeyDown:
				if event.Key == sdl.SCANCODE_ESCAPE {
					a.running = false
				}
			}
		}

		a.update(dt)

		if err := a.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			st := a.pipe.Stats()
			logger.Debug("frame stats",
				zap.Int("fps", frameCount),
				zap.Int("draw_calls", st.Batch.DrawCalls),
				zap.Int("vertices", st.Batch.Vertices),
				zap.Int("lights_drawn", st.LightsDrawn),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (a *App) update(dt float32) {
	a.rider.update(a, dt)

	cam := a.pipe.Camera()
	cam.Position = a.rider.cameraPos()
	cam.Yaw = a.rider.yaw
}

func (a *App) render() error {
	a.device.Clear()
	a.pipe.BeginFrame()

	for _, name := range a.pipe.Network().Names() {
		if err := a.pipe.DrawPath(name); err != nil {
			return err
		}
	}
	for _, name := range a.pipe.Levels().Names() {
		if err := a.pipe.DrawLevel(name); err != nil {
			return err
		}
	}

	return a.pipe.EndFrame()
}

// Close cleans up in reverse construction order.
func (a *App) Close() {
	logger.Info("closing demo")
	if a.pipe != nil {
		a.pipe.Destroy()
	}
	if a.device != nil {
		a.device.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
