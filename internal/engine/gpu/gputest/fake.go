// Package gputest provides a recording gpu.Device for tests.
package gputest

import "github.com/driftline/driftline/internal/engine/gpu"

// DrawCall records one Draw invocation with the state bound at the time.
type DrawCall struct {
	Buffer      gpu.BufferID
	First       int
	Count       int
	Texture     gpu.TextureID
	Blend       gpu.BlendMode
	UploadIndex int // index into Uploads of the buffer contents drawn from
}

// Upload records one buffer upload.
type Upload struct {
	Buffer gpu.BufferID
	Data   []float32
}

var _ gpu.Device = (*Device)(nil)

// Device records every command for later assertions.
type Device struct {
	Buffers    gpu.BufferID
	Uploads    []Upload
	Draws      []DrawCall
	LightCount int
	LightData  [][]float32
	ViewProj   [16]float32
	Target     uint32

	boundTexture gpu.TextureID
	blend        gpu.BlendMode
}

// New creates an empty recording device.
func New() *Device {
	return &Device{}
}

func (d *Device) CreateBuffer() (gpu.BufferID, error) {
	d.Buffers++
	return d.Buffers, nil
}

func (d *Device) UploadBuffer(id gpu.BufferID, data []float32) {
	cp := make([]float32, len(data))
	copy(cp, data)
	d.Uploads = append(d.Uploads, Upload{Buffer: id, Data: cp})
}

func (d *Device) DeleteBuffer(id gpu.BufferID) {}

func (d *Device) BindTexture(tex gpu.TextureID) {
	d.boundTexture = tex
}

func (d *Device) SetBlend(mode gpu.BlendMode) {
	d.blend = mode
}

func (d *Device) SetViewProjection(m [16]float32) {
	d.ViewProj = m
}

func (d *Device) UploadLights(positions, colors, directions, params []float32, count int) {
	d.LightCount = count
	d.LightData = [][]float32{positions, colors, directions, params}
}

func (d *Device) Draw(buf gpu.BufferID, firstVertex, vertexCount int) {
	d.Draws = append(d.Draws, DrawCall{
		Buffer:      buf,
		First:       firstVertex,
		Count:       vertexCount,
		Texture:     d.boundTexture,
		Blend:       d.blend,
		UploadIndex: len(d.Uploads) - 1,
	})
}

func (d *Device) BindRenderTarget(id uint32) {
	d.Target = id
}
