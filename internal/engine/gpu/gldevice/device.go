// Package gldevice implements gpu.Device over OpenGL 4.1 core. It must be
// constructed after a GL context exists on the calling thread.
package gldevice

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/driftline/driftline/internal/engine/gpu"
	"github.com/driftline/driftline/internal/logger"
)

// MaxShaderLights bounds the light uniform arrays; upload counts beyond it
// are clamped.
const MaxShaderLights = 32

var _ gpu.Device = (*Device)(nil)

// Device is the OpenGL implementation of gpu.Device.
type Device struct {
	program uint32
	vao     uint32

	whiteTex uint32

	uViewProj    int32
	uLightPos    int32
	uLightColor  int32
	uLightDir    int32
	uLightParams int32
	uLightCount  int32

	boundBuffer gpu.BufferID
}

// New initializes OpenGL state and the pipeline shader program.
func New(width, height int) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0.05, 0.05, 0.08, 1.0)

	d := &Device{}

	program, err := compileProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline shader: %w", err)
	}
	d.program = program
	d.uViewProj = uniform(program, "uViewProj")
	d.uLightPos = uniform(program, "uLightPos")
	d.uLightColor = uniform(program, "uLightColor")
	d.uLightDir = uniform(program, "uLightDir")
	d.uLightParams = uniform(program, "uLightParams")
	d.uLightCount = uniform(program, "uLightCount")

	gl.GenVertexArrays(1, &d.vao)
	d.whiteTex = createWhiteTexture()

	gl.UseProgram(d.program)
	return d, nil
}

// Close releases GL resources.
func (d *Device) Close() {
	logger.Info("closing GL device")
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
	}
	if d.whiteTex != 0 {
		gl.DeleteTextures(1, &d.whiteTex)
	}
	if d.program != 0 {
		gl.DeleteProgram(d.program)
	}
}

// Clear clears the color and depth buffers.
func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Resize updates the viewport.
func (d *Device) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// CreateBuffer allocates a vertex buffer.
func (d *Device) CreateBuffer() (gpu.BufferID, error) {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	if vbo == 0 {
		return 0, fmt.Errorf("glGenBuffers returned 0")
	}
	return gpu.BufferID(vbo), nil
}

// UploadBuffer replaces the contents of a vertex buffer.
func (d *Device) UploadBuffer(id gpu.BufferID, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(id))
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STREAM_DRAW)
	}
	d.boundBuffer = id
}

// DeleteBuffer frees a vertex buffer.
func (d *Device) DeleteBuffer(id gpu.BufferID) {
	vbo := uint32(id)
	gl.DeleteBuffers(1, &vbo)
}

// BindTexture binds a texture; handle 0 binds the built-in white texture so
// untextured geometry renders with its vertex color.
func (d *Device) BindTexture(tex gpu.TextureID) {
	gl.ActiveTexture(gl.TEXTURE0)
	if tex == 0 {
		gl.BindTexture(gl.TEXTURE_2D, d.whiteTex)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

// SetBlend switches the blend state.
func (d *Device) SetBlend(mode gpu.BlendMode) {
	switch mode {
	case gpu.BlendOpaque:
		gl.Disable(gl.BLEND)
		gl.DepthMask(true)
	case gpu.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
	case gpu.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
		gl.DepthMask(false)
	}
}

// SetViewProjection uploads the combined view-projection matrix.
func (d *Device) SetViewProjection(m [16]float32) {
	gl.UseProgram(d.program)
	gl.UniformMatrix4fv(d.uViewProj, 1, false, &m[0])
}

// UploadLights uploads the culled light set to the shader uniform arrays.
func (d *Device) UploadLights(positions, colors, directions, params []float32, count int) {
	if count > MaxShaderLights {
		count = MaxShaderLights
	}
	gl.UseProgram(d.program)
	gl.Uniform1i(d.uLightCount, int32(count))
	if count == 0 {
		return
	}
	gl.Uniform3fv(d.uLightPos, int32(count), &positions[0])
	gl.Uniform3fv(d.uLightColor, int32(count), &colors[0])
	gl.Uniform4fv(d.uLightDir, int32(count), &directions[0])
	gl.Uniform4fv(d.uLightParams, int32(count), &params[0])
}

// Draw issues one draw call from a previously uploaded buffer.
func (d *Device) Draw(buf gpu.BufferID, firstVertex, vertexCount int) {
	gl.UseProgram(d.program)
	gl.BindVertexArray(d.vao)
	if d.boundBuffer != buf {
		gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
		d.boundBuffer = buf
	}
	setVertexLayout()
	gl.DrawArrays(gl.TRIANGLES, int32(firstVertex), int32(vertexCount))
	gl.BindVertexArray(0)
}

// BindRenderTarget binds a framebuffer; 0 is the default backbuffer.
func (d *Device) BindRenderTarget(id uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, id)
}

// UploadTexture pushes decoded pixels to the GPU; it satisfies
// texture.Uploader.
func (d *Device) UploadTexture(rgba *image.RGBA) gpu.TextureID {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	b := rgba.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	return gpu.TextureID(tex)
}

// setVertexLayout declares the interleaved pos3/color4/uv2 layout over the
// currently bound buffer.
func setVertexLayout() {
	const stride = 9 * 4
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 7*4)
}

func createWhiteTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	pixel := []uint8{255, 255, 255, 255}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, 1, 1, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixel))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	return tex
}
