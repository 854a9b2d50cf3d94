// Package gpu defines the command layer the batch renderer talks to. The
// OpenGL implementation lives in gldevice; tests use the recording fake in
// gputest.
package gpu

// TextureID is an opaque GPU texture handle. Zero means "no texture".
type TextureID uint32

// BufferID is an opaque GPU vertex buffer handle.
type BufferID uint32

// BlendMode selects the fixed-function blend state for a draw run.
type BlendMode uint8

const (
	BlendOpaque BlendMode = iota
	BlendAlpha
	BlendAdditive
)

// Device exposes the GPU primitives the pipeline consumes: buffer
// allocation/upload, texture and blend binds, draws, light uniform upload
// and render target selection.
type Device interface {
	// CreateBuffer allocates a vertex buffer.
	CreateBuffer() (BufferID, error)

	// UploadBuffer replaces the buffer contents with data.
	UploadBuffer(id BufferID, data []float32)

	// DeleteBuffer frees a buffer.
	DeleteBuffer(id BufferID)

	// BindTexture binds a texture for subsequent draws.
	BindTexture(tex TextureID)

	// SetBlend switches the blend state.
	SetBlend(mode BlendMode)

	// SetViewProjection uploads the frame's view-projection matrix.
	SetViewProjection(m [16]float32)

	// UploadLights uploads the frame's light uniform block. positions and
	// colors are xyz triples, directions are (x, y, z, type) quads and
	// params are (radius, intensity, inner angle, outer angle) quads.
	UploadLights(positions, colors, directions, params []float32, count int)

	// Draw issues a non-indexed triangle draw from the bound buffer.
	Draw(buf BufferID, firstVertex, vertexCount int)

	// BindRenderTarget selects the output framebuffer; zero is the default.
	BindRenderTarget(id uint32)
}
