// Package convert moves meshes between their three forms: the polygon soup
// (geometry.BasePolygonalGeometryData), the half-edge mesh
// (halfedge.ReferencedMeshGeometryData) and the flat triangulated buffer
// (buffer.BufferMeshGeometryData), plus the float32 render mesh of the
// kernel package.
package convert

import (
	"fmt"

	"github.com/chazu/hemesh/pkg/buffer"
	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/halfedge"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ReferencedToBase rebuilds the polygon soup of a half-edge mesh by walking
// each face loop from its seed.
func ReferencedToBase(ref *halfedge.ReferencedMeshGeometryData) (*geometry.BasePolygonalGeometryData, error) {
	d := &geometry.BasePolygonalGeometryData{
		Name:          ref.Name,
		Vertices:      make([]v3.Vec, 0, ref.Vertices.Len()),
		VertexIndices: make([][]int, 0, ref.Faces.Len()),
	}
	for _, v := range ref.Vertices.All() {
		d.Vertices = append(d.Vertices, v.Position())
	}
	for f := range ref.Faces.All() {
		vs, err := ref.FaceVertices(f)
		if err != nil {
			return nil, fmt.Errorf("convert: face %d: %w", f.Index(), err)
		}
		face := make([]int, len(vs))
		for i, v := range vs {
			face[i] = v.Index()
		}
		d.VertexIndices = append(d.VertexIndices, face)
	}
	if len(ref.VertexNormals) > 0 {
		d.VertexNormals = append([]v3.Vec(nil), ref.VertexNormals...)
	}
	return d, nil
}

// ReferencedToBuffer converts a half-edge mesh into buffer form.
func ReferencedToBuffer(ref *halfedge.ReferencedMeshGeometryData, opts ...config.Option) (*buffer.BufferMeshGeometryData, error) {
	base, err := ReferencedToBase(ref)
	if err != nil {
		return nil, err
	}
	return buffer.Build(base, opts...)
}

// BufferToBase recovers the polygon soup of a buffer mesh. Each face's
// polygon is the single cycle formed by the triangle edges its group does
// not share internally, started at the first corner of the group's first
// triangle.
func BufferToBase(buf *buffer.BufferMeshGeometryData) (*geometry.BasePolygonalGeometryData, error) {
	d := &geometry.BasePolygonalGeometryData{
		Name:          buf.Name,
		Vertices:      make([]v3.Vec, buf.VertexCount()),
		VertexIndices: make([][]int, buf.FaceCount()),
	}
	for i := range d.Vertices {
		d.Vertices[i] = buf.Position(i)
	}
	if buf.HasNormals() {
		d.VertexNormals = make([]v3.Vec, buf.VertexCount())
		for i := range d.VertexNormals {
			d.VertexNormals[i] = buf.Normal(i)
		}
	}
	for f, ids := range buf.TriangulationIndices {
		tris := make([][3]int, len(ids))
		for k, id := range ids {
			t, err := buf.Triangle(id)
			if err != nil {
				return nil, fmt.Errorf("convert: face %d: %w", f, err)
			}
			tris[k] = t
		}
		poly, err := polygonFromTriangles(tris)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", geometry.NewFaceError(err, f, "recovering polygon"))
		}
		d.VertexIndices[f] = poly
	}
	return d, nil
}

// BufferToReferenced converts a buffer mesh into a half-edge mesh.
func BufferToReferenced(buf *buffer.BufferMeshGeometryData, opts ...config.Option) (*halfedge.ReferencedMeshGeometryData, error) {
	base, err := BufferToBase(buf)
	if err != nil {
		return nil, err
	}
	return halfedge.Build(base, opts...)
}

type directedEdge struct {
	tail, head int
}

// polygonFromTriangles chains the unshared edges of a triangle group into
// one cycle.
func polygonFromTriangles(tris [][3]int) ([]int, error) {
	if len(tris) == 0 {
		return nil, fmt.Errorf("%w: no triangles", geometry.ErrTopology)
	}
	edges := make(map[directedEdge]bool, 3*len(tris))
	for _, t := range tris {
		for k := 0; k < 3; k++ {
			e := directedEdge{t[k], t[(k+1)%3]}
			if edges[e] {
				return nil, fmt.Errorf("%w: edge %d->%d used twice", geometry.ErrTopology, e.tail, e.head)
			}
			edges[e] = true
		}
	}

	next := make(map[int]int, len(tris)+2)
	for e := range edges {
		if edges[directedEdge{e.head, e.tail}] {
			continue // diagonal
		}
		if other, dup := next[e.tail]; dup {
			return nil, fmt.Errorf("%w: vertex %d starts two outer edges (to %d and %d)",
				geometry.ErrTopology, e.tail, other, e.head)
		}
		next[e.tail] = e.head
	}

	start := tris[0][0]
	poly := make([]int, 0, len(next))
	v := start
	for range next {
		poly = append(poly, v)
		w, ok := next[v]
		if !ok {
			return nil, fmt.Errorf("%w: outer edges break at vertex %d", geometry.ErrTopology, v)
		}
		if v = w; v == start {
			break
		}
	}
	if v != start || len(poly) != len(next) {
		return nil, fmt.Errorf("%w: outer edges do not form a single cycle", geometry.ErrTopology)
	}
	if len(poly) != len(tris)+2 {
		return nil, fmt.Errorf("%w: %d triangles cannot cover a %d-gon", geometry.ErrTopology, len(tris), len(poly))
	}
	return poly, nil
}
