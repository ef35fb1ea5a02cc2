// Package buffer holds the flat, triangulated form of a polygon mesh:
// coordinate and index arrays ready for upload, plus the per-face triangle
// ranges needed to recover the original polygons.
package buffer

import (
	"errors"
	"fmt"

	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/triangulate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// ErrAlreadyBuilt is returned by a second call to Builder.Build.
var ErrAlreadyBuilt = errors.New("buffer: builder already used")

// BufferMeshGeometryData is a triangulated mesh in flat arrays.
type BufferMeshGeometryData struct {
	Name string
	// VertexCoords holds x, y, z per vertex.
	VertexCoords []float64
	// VertexNormalCoords is empty or holds x, y, z per vertex.
	VertexNormalCoords []float64
	// VertexIndices holds three vertex indices per triangle.
	VertexIndices []int
	// TriangulationIndices lists, per input face, its contiguous triangle
	// ids.
	TriangulationIndices [][]int
	PolyMeshType         geometry.PolyMeshType
}

// VertexCount returns the number of vertices.
func (d *BufferMeshGeometryData) VertexCount() int { return len(d.VertexCoords) / 3 }

// TriangleCount returns the number of triangles.
func (d *BufferMeshGeometryData) TriangleCount() int { return len(d.VertexIndices) / 3 }

// FaceCount returns the number of original polygons.
func (d *BufferMeshGeometryData) FaceCount() int { return len(d.TriangulationIndices) }

// HasNormals reports whether per-vertex normals are present.
func (d *BufferMeshGeometryData) HasNormals() bool { return len(d.VertexNormalCoords) > 0 }

// Position returns the position of vertex i.
func (d *BufferMeshGeometryData) Position(i int) v3.Vec {
	return v3.Vec{X: d.VertexCoords[3*i], Y: d.VertexCoords[3*i+1], Z: d.VertexCoords[3*i+2]}
}

// Normal returns the normal of vertex i. HasNormals must be true.
func (d *BufferMeshGeometryData) Normal(i int) v3.Vec {
	return v3.Vec{X: d.VertexNormalCoords[3*i], Y: d.VertexNormalCoords[3*i+1], Z: d.VertexNormalCoords[3*i+2]}
}

// Triangle returns the vertex indices of triangle id.
func (d *BufferMeshGeometryData) Triangle(id int) ([3]int, error) {
	if id < 0 || id >= d.TriangleCount() {
		return [3]int{}, fmt.Errorf("buffer: triangle %d: %w: %d triangles",
			geometry.ErrInputValidation, id, d.TriangleCount())
	}
	return [3]int{d.VertexIndices[3*id], d.VertexIndices[3*id+1], d.VertexIndices[3*id+2]}, nil
}

// GetPolygonIndicesFromTriangulation returns the triangle ids of face.
func (d *BufferMeshGeometryData) GetPolygonIndicesFromTriangulation(face int) ([]int, error) {
	if face < 0 || face >= d.FaceCount() {
		return nil, fmt.Errorf("buffer: face %d: %w: %d faces", geometry.ErrInputValidation, face, d.FaceCount())
	}
	return d.TriangulationIndices[face], nil
}

// ObtainTriangleVerticesFromTriangulationIndices returns the three
// positions of global triangle triangleID.
func ObtainTriangleVerticesFromTriangulationIndices(triangleID int, data *BufferMeshGeometryData) ([3]v3.Vec, error) {
	tri, err := data.Triangle(triangleID)
	if err != nil {
		return [3]v3.Vec{}, err
	}
	return [3]v3.Vec{data.Position(tri[0]), data.Position(tri[1]), data.Position(tri[2])}, nil
}

type builderState int

const (
	stateUnbuilt builderState = iota
	stateBuilding
	stateBuilt
)

// Builder turns one polygon soup into a BufferMeshGeometryData. A Builder
// runs once.
type Builder struct {
	base  *geometry.BasePolygonalGeometryData
	opts  config.Options
	state builderState
}

// NewBuilder returns a builder for base.
func NewBuilder(base *geometry.BasePolygonalGeometryData, opts ...config.Option) *Builder {
	return &Builder{base: base, opts: config.Resolve(opts...)}
}

// Build is shorthand for NewBuilder(base, opts...).Build().
func Build(base *geometry.BasePolygonalGeometryData, opts ...config.Option) (*BufferMeshGeometryData, error) {
	return NewBuilder(base, opts...).Build()
}

// Build validates the input, copies coordinates and normals, and
// triangulates every face, assigning consecutive triangle ids.
func (b *Builder) Build() (*BufferMeshGeometryData, error) {
	if b.state != stateUnbuilt {
		return nil, ErrAlreadyBuilt
	}
	b.state = stateBuilding
	defer func() { b.state = stateBuilt }()

	base := b.base
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("buffer: build: %w", err)
	}

	nv, nt := base.VertexCount(), base.TriangleCount()
	d := &BufferMeshGeometryData{
		Name:                 base.Name,
		VertexCoords:         make([]float64, 0, 3*nv),
		VertexIndices:        make([]int, 0, 3*nt),
		TriangulationIndices: make([][]int, base.FaceCount()),
		PolyMeshType:         base.PolyMeshType(),
	}
	for _, p := range base.Vertices {
		d.VertexCoords = append(d.VertexCoords, p.X, p.Y, p.Z)
	}
	if base.HasNormals() {
		d.VertexNormalCoords = make([]float64, 0, 3*nv)
		for _, n := range base.VertexNormals {
			d.VertexNormalCoords = append(d.VertexNormalCoords, n.X, n.Y, n.Z)
		}
	}

	var counter triangulate.Counter
	for f, face := range base.VertexIndices {
		tris, err := triangulate.Triangulate(base.FacePositions(f), b.opts.Tolerance)
		if err != nil {
			return nil, fmt.Errorf("buffer: build %q: %w", base.Name, geometry.NewFaceError(err, f, "triangulation"))
		}
		for _, t := range tris {
			d.VertexIndices = append(d.VertexIndices, face[t[0]], face[t[1]], face[t[2]])
		}
		d.TriangulationIndices[f] = counter.Assign(len(tris))
	}

	b.opts.Logger.Debug("built buffer mesh",
		zap.String("name", d.Name),
		zap.Int("vertices", d.VertexCount()),
		zap.Int("faces", d.FaceCount()),
		zap.Int("triangles", counter.Total()),
		zap.Stringer("type", d.PolyMeshType),
	)
	return d, nil
}
