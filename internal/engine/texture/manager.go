// Package texture provides the reference-counted texture manager and image
// decoding utilities. Texture contents are owned here; the pipeline only
// reads handles.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"

	"github.com/driftline/driftline/internal/engine/gpu"
)

// ErrUnknownTexture is returned for handles the manager never issued or has
// already destroyed.
var ErrUnknownTexture = errors.New("unknown texture handle")

// Info describes a resolved texture.
type Info struct {
	ID     gpu.TextureID
	Width  int
	Height int
	Format string // "rgba8"
}

// Uploader pushes decoded pixels to the GPU and returns the texture id. The
// GL device provides the real one; tests substitute a counter.
type Uploader func(rgba *image.RGBA) gpu.TextureID

type entry struct {
	info Info
	refs int
}

// Manager issues texture handles, tracks reference counts and resolves
// handles for the batch renderer.
type Manager struct {
	upload  Uploader
	entries map[gpu.TextureID]*entry
}

// NewManager creates a manager that uploads through the given function.
func NewManager(upload Uploader) *Manager {
	return &Manager{
		upload:  upload,
		entries: make(map[gpu.TextureID]*entry),
	}
}

// Load decodes image data (PNG, BMP or TGA, chosen by the name's extension)
// and registers it with one reference.
func (m *Manager) Load(name string, data []byte) (gpu.TextureID, error) {
	var img image.Image
	var err error
	if strings.HasSuffix(strings.ToLower(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return 0, fmt.Errorf("decoding %s: %w", name, err)
	}
	return m.Register(toRGBA(img)), nil
}

// Register uploads decoded pixels and registers the texture with one
// reference.
func (m *Manager) Register(rgba *image.RGBA) gpu.TextureID {
	id := m.upload(rgba)
	b := rgba.Bounds()
	m.entries[id] = &entry{
		info: Info{ID: id, Width: b.Dx(), Height: b.Dy(), Format: "rgba8"},
		refs: 1,
	}
	return id
}

// Resolve returns the info for a handle.
func (m *Manager) Resolve(id gpu.TextureID) (Info, error) {
	e, ok := m.entries[id]
	if !ok {
		return Info{}, fmt.Errorf("texture %d: %w", id, ErrUnknownTexture)
	}
	return e.info, nil
}

// ValidTexture implements batch.TextureResolver.
func (m *Manager) ValidTexture(id gpu.TextureID) bool {
	_, ok := m.entries[id]
	return ok
}

// Retain increments a texture's reference count.
func (m *Manager) Retain(id gpu.TextureID) error {
	e, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("retain texture %d: %w", id, ErrUnknownTexture)
	}
	e.refs++
	return nil
}

// Release decrements a texture's reference count and drops the entry when it
// reaches zero.
func (m *Manager) Release(id gpu.TextureID) error {
	e, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("release texture %d: %w", id, ErrUnknownTexture)
	}
	e.refs--
	if e.refs <= 0 {
		delete(m.entries, id)
	}
	return nil
}

// Refs returns the current reference count, zero for unknown handles.
func (m *Manager) Refs(id gpu.TextureID) int {
	if e, ok := m.entries[id]; ok {
		return e.refs
	}
	return 0
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba
}
