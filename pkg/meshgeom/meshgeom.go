// Package meshgeom provides the top-level mesh objects. Each owns a polygon
// soup and the data built from it, runs its builder once, and converts to
// the other representation on request.
package meshgeom

import (
	"errors"
	"fmt"

	"github.com/chazu/hemesh/pkg/buffer"
	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/convert"
	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/halfedge"
	"github.com/chazu/hemesh/pkg/kernel"
	"github.com/chazu/hemesh/pkg/measure"
)

var (
	// ErrAlreadyBuilt is returned by any BuildGeometry call after the
	// first, whether or not the first succeeded.
	ErrAlreadyBuilt = errors.New("meshgeom: geometry already built")

	// ErrNotBuilt is returned when built data is requested before
	// BuildGeometry succeeded.
	ErrNotBuilt = errors.New("meshgeom: geometry not built")
)

// ReferencedMeshGeometry is a polygon soup together with its half-edge
// mesh.
type ReferencedMeshGeometry struct {
	base *geometry.BasePolygonalGeometryData
	data *halfedge.ReferencedMeshGeometryData
	opts []config.Option

	attempted bool
}

// NewReferenced returns an unbuilt geometry owning a copy of base.
func NewReferenced(base *geometry.BasePolygonalGeometryData, opts ...config.Option) *ReferencedMeshGeometry {
	return &ReferencedMeshGeometry{base: base.Clone(), opts: opts}
}

// NewReferencedFromIO builds a half-edge geometry from an IO record.
func NewReferencedFromIO(io geometry.GeometryIOData, opts ...config.Option) (*ReferencedMeshGeometry, error) {
	g := &ReferencedMeshGeometry{base: geometry.FromIO(io), opts: opts}
	if err := g.BuildGeometry(); err != nil {
		return nil, err
	}
	return g, nil
}

// BuildGeometry runs the half-edge builder. It runs at most once; a failed
// build leaves the geometry unbuilt for good.
func (g *ReferencedMeshGeometry) BuildGeometry() error {
	if g.attempted {
		return ErrAlreadyBuilt
	}
	g.attempted = true
	data, err := halfedge.Build(g.base, g.opts...)
	if err != nil {
		return fmt.Errorf("meshgeom: %w", err)
	}
	g.data = data
	return nil
}

// IsBuilt reports whether BuildGeometry has succeeded.
func (g *ReferencedMeshGeometry) IsBuilt() bool { return g.data != nil }

// Base returns the owned polygon soup. Callers must not modify it.
func (g *ReferencedMeshGeometry) Base() *geometry.BasePolygonalGeometryData { return g.base }

// Data returns the built half-edge mesh.
func (g *ReferencedMeshGeometry) Data() (*halfedge.ReferencedMeshGeometryData, error) {
	if g.data == nil {
		return nil, ErrNotBuilt
	}
	return g.data, nil
}

// Measure returns a query evaluator over the built mesh.
func (g *ReferencedMeshGeometry) Measure() (*measure.Measure, error) {
	data, err := g.Data()
	if err != nil {
		return nil, err
	}
	return measure.New(data, g.opts...), nil
}

// ToIO exports the built mesh as an IO record.
func (g *ReferencedMeshGeometry) ToIO() (geometry.GeometryIOData, error) {
	data, err := g.Data()
	if err != nil {
		return geometry.GeometryIOData{}, err
	}
	base, err := convert.ReferencedToBase(data)
	if err != nil {
		return geometry.GeometryIOData{}, fmt.Errorf("meshgeom: %w", err)
	}
	return base.ToIO(), nil
}

// ToBuffer converts the built mesh into a built BufferMeshGeometry.
func (g *ReferencedMeshGeometry) ToBuffer() (*BufferMeshGeometry, error) {
	data, err := g.Data()
	if err != nil {
		return nil, err
	}
	base, err := convert.ReferencedToBase(data)
	if err != nil {
		return nil, fmt.Errorf("meshgeom: %w", err)
	}
	b := &BufferMeshGeometry{base: base, opts: g.opts}
	if err := b.BuildGeometry(); err != nil {
		return nil, err
	}
	return b, nil
}

// BufferMeshGeometry is a polygon soup together with its flat triangulated
// buffers.
type BufferMeshGeometry struct {
	base *geometry.BasePolygonalGeometryData
	data *buffer.BufferMeshGeometryData
	opts []config.Option

	attempted bool
}

// NewBuffer returns an unbuilt geometry owning a copy of base.
func NewBuffer(base *geometry.BasePolygonalGeometryData, opts ...config.Option) *BufferMeshGeometry {
	return &BufferMeshGeometry{base: base.Clone(), opts: opts}
}

// NewBufferFromIO builds a buffer geometry from an IO record.
func NewBufferFromIO(io geometry.GeometryIOData, opts ...config.Option) (*BufferMeshGeometry, error) {
	g := &BufferMeshGeometry{base: geometry.FromIO(io), opts: opts}
	if err := g.BuildGeometry(); err != nil {
		return nil, err
	}
	return g, nil
}

// BuildGeometry runs the buffer builder. It runs at most once.
func (g *BufferMeshGeometry) BuildGeometry() error {
	if g.attempted {
		return ErrAlreadyBuilt
	}
	g.attempted = true
	data, err := buffer.Build(g.base, g.opts...)
	if err != nil {
		return fmt.Errorf("meshgeom: %w", err)
	}
	g.data = data
	return nil
}

// IsBuilt reports whether BuildGeometry has succeeded.
func (g *BufferMeshGeometry) IsBuilt() bool { return g.data != nil }

// Base returns the owned polygon soup. Callers must not modify it.
func (g *BufferMeshGeometry) Base() *geometry.BasePolygonalGeometryData { return g.base }

// Data returns the built buffers.
func (g *BufferMeshGeometry) Data() (*buffer.BufferMeshGeometryData, error) {
	if g.data == nil {
		return nil, ErrNotBuilt
	}
	return g.data, nil
}

// ToIO exports the built buffers as an IO record.
func (g *BufferMeshGeometry) ToIO() (geometry.GeometryIOData, error) {
	data, err := g.Data()
	if err != nil {
		return geometry.GeometryIOData{}, err
	}
	base, err := convert.BufferToBase(data)
	if err != nil {
		return geometry.GeometryIOData{}, fmt.Errorf("meshgeom: %w", err)
	}
	return base.ToIO(), nil
}

// ToReferenced converts the built buffers into a built
// ReferencedMeshGeometry.
func (g *BufferMeshGeometry) ToReferenced() (*ReferencedMeshGeometry, error) {
	data, err := g.Data()
	if err != nil {
		return nil, err
	}
	base, err := convert.BufferToBase(data)
	if err != nil {
		return nil, fmt.Errorf("meshgeom: %w", err)
	}
	r := &ReferencedMeshGeometry{base: base, opts: g.opts}
	if err := r.BuildGeometry(); err != nil {
		return nil, err
	}
	return r, nil
}

// RenderMesh returns the built buffers as a float32 render mesh.
func (g *BufferMeshGeometry) RenderMesh() (*kernel.Mesh, error) {
	data, err := g.Data()
	if err != nil {
		return nil, err
	}
	return convert.ToRenderMesh(data), nil
}
