// Package style maps scenery types and path names to user-assignable draw
// behavior. A style is a draw callback plus an opaque context value; lookup
// happens at draw time, never at registration.
package style

import (
	"github.com/driftline/driftline/internal/engine/batch"
	"github.com/driftline/driftline/internal/engine/path"
	"github.com/driftline/driftline/pkg/math"
)

// SceneryDraw renders one scenery attachment. ctx is the opaque value given
// at registration; pos is the attachment's world position.
type SceneryDraw func(ctx any, b *batch.Batch, sc path.Scenery, pos math.Vec3)

// PathDraw renders one path segment between two consecutive points.
type PathDraw func(ctx any, b *batch.Batch, prev, next *path.Point)

// SceneryStyle binds a draw callback to its context.
type SceneryStyle struct {
	Draw SceneryDraw
	Ctx  any
}

// PathStyle binds a path draw callback to its context.
type PathStyle struct {
	Draw PathDraw
	Ctx  any
}

// Registry holds the bounded scenery style table and the name-keyed path
// style map.
type Registry struct {
	scenery        [path.MaxSceneryTypes]SceneryStyle
	paths          map[string]PathStyle
	defaultScenery SceneryStyle
	defaultPath    PathStyle
}

// NewRegistry creates a registry with the given built-in defaults. Built-in
// scenery types are pre-registered to the default scenery style; user types
// start unbound and fall back to a no-op draw.
func NewRegistry(defaultScenery SceneryStyle, defaultPath PathStyle) *Registry {
	r := &Registry{
		paths:          make(map[string]PathStyle),
		defaultScenery: defaultScenery,
		defaultPath:    defaultPath,
	}
	for t := path.TypeID(0); t < path.UserTypeBase; t++ {
		r.scenery[t] = defaultScenery
	}
	return r
}

// RegisterScenery binds a style to a scenery type. The latest registration
// wins; overwriting a prior binding is not an error. Types outside the
// bounded table are ignored.
func (r *Registry) RegisterScenery(t path.TypeID, draw SceneryDraw, ctx any) {
	if int(t) >= len(r.scenery) {
		return
	}
	r.scenery[t] = SceneryStyle{Draw: draw, Ctx: ctx}
}

// SceneryStyle returns the style for a type. Unregistered user types get a
// no-op style rather than an error.
func (r *Registry) SceneryStyle(t path.TypeID) SceneryStyle {
	if int(t) >= len(r.scenery) {
		return SceneryStyle{Draw: nopSceneryDraw}
	}
	s := r.scenery[t]
	if s.Draw == nil {
		return SceneryStyle{Draw: nopSceneryDraw}
	}
	return s
}

// SetPathStyle binds a style to a path name. The path does not need to
// exist yet; the binding is resolved by name at draw time.
func (r *Registry) SetPathStyle(name string, s PathStyle) {
	r.paths[name] = s
}

// PathStyle returns the style bound to a path name, or the built-in default
// when none is set.
func (r *Registry) PathStyle(name string) PathStyle {
	if s, ok := r.paths[name]; ok && s.Draw != nil {
		return s
	}
	return r.defaultPath
}

func nopSceneryDraw(any, *batch.Batch, path.Scenery, math.Vec3) {}
