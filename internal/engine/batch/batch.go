// Package batch implements the batched draw pipeline: commands are recorded
// in any order, stable-sorted by (pass, texture, depth), staged into a
// growing CPU buffer and flushed as one upload plus one draw per state run.
package batch

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/driftline/driftline/internal/engine/gpu"
	"github.com/driftline/driftline/internal/logger"
)

// Batch errors.
var (
	ErrBatchOverflow = errors.New("batch staging buffer ceiling reached")
	ErrNotRecording  = errors.New("batch is not recording")
)

// TextureResolver reports whether a texture handle is resolvable. A nil
// resolver accepts every handle.
type TextureResolver interface {
	ValidTexture(tex gpu.TextureID) bool
}

// State is the batch lifecycle state.
type State uint8

const (
	Idle State = iota
	Recording
	Flushing
)

// Stats carries per-frame renderer counters.
type Stats struct {
	Commands  int
	DrawCalls int
	Vertices  int
	Dropped   int
	Skipped   int
	FlushTime time.Duration
}

// Config sizes the staging buffer, in vertices.
type Config struct {
	InitialVertices int
	MaxVertices     int // hard ceiling; submissions beyond it are dropped
}

// Batch accumulates draw commands and flushes them through a gpu.Device.
type Batch struct {
	device   gpu.Device
	resolver TextureResolver
	cfg      Config

	state    State
	commands []Command
	staging  []float32
	buffer   gpu.BufferID

	pendingVerts int
	stats        Stats
}

// New creates a batch renderer over the given device.
func New(device gpu.Device, resolver TextureResolver, cfg Config) (*Batch, error) {
	if cfg.InitialVertices <= 0 {
		cfg.InitialVertices = 4096
	}
	if cfg.MaxVertices < cfg.InitialVertices {
		cfg.MaxVertices = cfg.InitialVertices
	}
	buf, err := device.CreateBuffer()
	if err != nil {
		return nil, fmt.Errorf("creating staging buffer: %w", err)
	}
	return &Batch{
		device:   device,
		resolver: resolver,
		cfg:      cfg,
		staging:  make([]float32, 0, cfg.InitialVertices*VertexStride),
		buffer:   buf,
	}, nil
}

// State returns the current lifecycle state.
func (b *Batch) State() State { return b.state }

// Stats returns the counters accumulated since Begin.
func (b *Batch) Stats() Stats { return b.stats }

// Begin opens recording for a new frame and resets the frame counters.
func (b *Batch) Begin() {
	b.state = Recording
	b.commands = b.commands[:0]
	b.pendingVerts = 0
	b.stats = Stats{}
}

// Submit records a command. The sort key is computed here. Commands with no
// vertices or an unresolvable texture are skipped with a warning; commands
// that would push the staging buffer past the hard ceiling are dropped with
// ErrBatchOverflow.
func (b *Batch) Submit(cmd Command) error {
	if b.state != Recording {
		return ErrNotRecording
	}
	if len(cmd.Vertices) == 0 || len(cmd.Vertices)%VertexStride != 0 {
		b.stats.Skipped++
		logger.Warn("skipping command with bad vertex data",
			zap.Int("kind", int(cmd.Kind)),
			zap.Int("floats", len(cmd.Vertices)),
		)
		return nil
	}
	if cmd.Texture != 0 && b.resolver != nil && !b.resolver.ValidTexture(cmd.Texture) {
		b.stats.Skipped++
		logger.Warn("skipping command with unknown texture",
			zap.Int("kind", int(cmd.Kind)),
			zap.Uint32("texture", uint32(cmd.Texture)),
		)
		return nil
	}

	verts := len(cmd.Vertices) / VertexStride
	if b.pendingVerts+verts > b.cfg.MaxVertices {
		b.stats.Dropped++
		return fmt.Errorf("submit %d vertices at %d/%d: %w",
			verts, b.pendingVerts, b.cfg.MaxVertices, ErrBatchOverflow)
	}

	cmd.key = cmd.sortKey()
	b.commands = append(b.commands, cmd)
	b.pendingVerts += verts
	b.stats.Commands++
	return nil
}

// Flush sorts the recorded commands, stages them into the CPU buffer,
// uploads once and issues one draw per run of identical (texture, blend)
// state. Recording resumes afterwards.
func (b *Batch) Flush() error {
	if b.state != Recording {
		return ErrNotRecording
	}
	b.state = Flushing
	defer func() { b.state = Recording }()

	start := time.Now()
	defer func() { b.stats.FlushTime += time.Since(start) }()

	if len(b.commands) == 0 {
		return nil
	}

	sort.SliceStable(b.commands, func(i, j int) bool {
		return b.commands[i].key < b.commands[j].key
	})

	// Stage all commands, remembering run boundaries.
	type run struct {
		texture gpu.TextureID
		blend   gpu.BlendMode
		first   int // vertex offset
		count   int
	}
	var runs []run
	b.staging = b.staging[:0]

	for i := range b.commands {
		cmd := &b.commands[i]
		verts := len(cmd.Vertices) / VertexStride
		first := len(b.staging) / VertexStride

		b.stage(cmd.Vertices)

		if n := len(runs); n > 0 && runs[n-1].texture == cmd.Texture && runs[n-1].blend == cmd.Blend {
			runs[n-1].count += verts
		} else {
			runs = append(runs, run{texture: cmd.Texture, blend: cmd.Blend, first: first, count: verts})
		}
		b.stats.Vertices += verts
	}

	b.device.UploadBuffer(b.buffer, b.staging)
	for _, r := range runs {
		b.device.BindTexture(r.texture)
		b.device.SetBlend(r.blend)
		b.device.Draw(b.buffer, r.first, r.count)
		b.stats.DrawCalls++
	}

	b.commands = b.commands[:0]
	b.pendingVerts = 0
	return nil
}

// stage appends vertex data, growing the staging buffer geometrically when
// capacity is exceeded. Growth copies existing contents; data is never
// truncated (the submit-time ceiling bounds the total).
func (b *Batch) stage(data []float32) {
	need := len(b.staging) + len(data)
	if need > cap(b.staging) {
		newCap := cap(b.staging)
		if newCap == 0 {
			newCap = b.cfg.InitialVertices * VertexStride
		}
		for newCap < need {
			newCap *= 2
		}
		ceiling := b.cfg.MaxVertices * VertexStride
		if newCap > ceiling {
			newCap = ceiling
		}
		grown := make([]float32, len(b.staging), newCap)
		copy(grown, b.staging)
		b.staging = grown
	}
	b.staging = append(b.staging, data...)
}

// End flushes any remaining commands and closes the frame.
func (b *Batch) End() error {
	if b.state != Recording {
		return ErrNotRecording
	}
	err := b.Flush()
	b.state = Idle
	if b.stats.Dropped > 0 {
		logger.Warn("frame dropped commands at batch ceiling",
			zap.Int("dropped", b.stats.Dropped),
			zap.Int("max_vertices", b.cfg.MaxVertices),
		)
	}
	return err
}

// Destroy releases the GPU buffer.
func (b *Batch) Destroy() {
	if b.buffer != 0 {
		b.device.DeleteBuffer(b.buffer)
		b.buffer = 0
	}
}
