package convert_test

import (
	"math"
	"testing"

	"github.com/chazu/hemesh/pkg/buffer"
	"github.com/chazu/hemesh/pkg/convert"
	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/halfedge"
	"github.com/chazu/hemesh/pkg/triangulate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures(t *testing.T) []*geometry.BasePolygonalGeometryData {
	t.Helper()
	grid, err := geometry.Grid(3, 2, 0.5)
	require.NoError(t, err)
	hex, err := geometry.RegularPolygon(7, 1)
	require.NoError(t, err)
	lshape := &geometry.BasePolygonalGeometryData{
		Name: "l-prism-cap",
		Vertices: []v3.Vec{
			{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}, {X: 3, Y: 0}, {X: 3, Y: 1},
		},
		VertexIndices: [][]int{{0, 1, 2, 3, 4, 5}, {1, 6, 7, 2}},
	}
	dart := &geometry.BasePolygonalGeometryData{
		Name:          "dart",
		Vertices:      []v3.Vec{{X: 0, Y: 0}, {X: 4, Y: 2}, {X: 0, Y: 4}, {X: 1, Y: 2}},
		VertexIndices: [][]int{{0, 1, 2, 3}},
	}
	return []*geometry.BasePolygonalGeometryData{
		geometry.Icosahedron(1),
		geometry.Icosahedron(1).WithoutFaces(0, 1),
		geometry.Box(1, 2, 3),
		grid, hex, lshape, dart,
	}
}

func faceArea(d *geometry.BasePolygonalGeometryData, f int) float64 {
	return triangulate.NewellNormal(d.FacePositions(f)).Length() / 2
}

func TestRoundTripReferencedBufferReferenced(t *testing.T) {
	for _, base := range fixtures(t) {
		t.Run(base.Name, func(t *testing.T) {
			ref, err := halfedge.Build(base)
			require.NoError(t, err)

			buf, err := convert.ReferencedToBuffer(ref)
			require.NoError(t, err)
			assert.Equal(t, base.TriangleCount(), buf.TriangleCount())
			assert.Equal(t, base.FaceCount(), buf.FaceCount())

			back, err := convert.BufferToReferenced(buf)
			require.NoError(t, err)
			assert.Equal(t, ref.Vertices.Len(), back.Vertices.Len())
			assert.Equal(t, ref.HalfEdges.Len(), back.HalfEdges.Len())
			assert.Equal(t, ref.Edges.Len(), back.Edges.Len())
			assert.Equal(t, ref.Faces.Len(), back.Faces.Len())
			assert.Equal(t, ref.BoundaryCycles.Len(), back.BoundaryCycles.Len())
			assert.Equal(t, ref.PolyMeshType, back.PolyMeshType)

			got, err := convert.ReferencedToBase(back)
			require.NoError(t, err)
			assert.Equal(t, base.VertexIndices, got.VertexIndices)
			for f := range base.VertexIndices {
				assert.InDelta(t, faceArea(base, f), faceArea(got, f), 1e-12, "face %d", f)
			}
		})
	}
}

func TestBufferToBaseRecoversInput(t *testing.T) {
	for _, base := range fixtures(t) {
		buf, err := buffer.Build(base)
		require.NoError(t, err)
		got, err := convert.BufferToBase(buf)
		require.NoError(t, err)
		assert.Equal(t, base.Vertices, got.Vertices, base.Name)
		assert.Equal(t, base.VertexIndices, got.VertexIndices, base.Name)
	}
}

func TestNormalsSurviveRoundTrip(t *testing.T) {
	base := geometry.Box(1, 1, 1)
	base.VertexNormals = make([]v3.Vec, base.VertexCount())
	for i, p := range base.Vertices {
		base.VertexNormals[i] = p.SubScalar(0.5).Normalize()
	}
	ref, err := halfedge.Build(base)
	require.NoError(t, err)
	buf, err := convert.ReferencedToBuffer(ref)
	require.NoError(t, err)
	back, err := convert.BufferToBase(buf)
	require.NoError(t, err)
	assert.Equal(t, base.VertexNormals, back.VertexNormals)
}

func TestBufferToBaseRejectsBrokenGroups(t *testing.T) {
	pts := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 5, 5, 0, 6, 5, 0, 5, 6, 0}
	tests := []struct {
		name    string
		indices []int
	}{
		{"disjoint triangles", []int{0, 1, 2, 3, 4, 5}},
		{"repeated triangle", []int{0, 1, 2, 0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &buffer.BufferMeshGeometryData{
				VertexCoords:         pts,
				VertexIndices:        tt.indices,
				TriangulationIndices: [][]int{{0, 1}},
			}
			_, err := convert.BufferToBase(buf)
			assert.ErrorIs(t, err, geometry.ErrTopology)
			var fe *geometry.FaceError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, 0, fe.Face)
		})
	}
}

func TestToRenderMeshComputesNormals(t *testing.T) {
	buf, err := buffer.Build(geometry.Box(2, 2, 2))
	require.NoError(t, err)
	m := convert.ToRenderMesh(buf)
	require.NoError(t, m.Validate())
	assert.Equal(t, buf.VertexCount(), m.VertexCount())
	assert.Equal(t, buf.TriangleCount(), m.TriangleCount())

	center := v3.Vec{X: 1, Y: 1, Z: 1}
	for i := 0; i < m.VertexCount(); i++ {
		n := v3.Vec{X: float64(m.Normals[3*i]), Y: float64(m.Normals[3*i+1]), Z: float64(m.Normals[3*i+2])}
		assert.InDelta(t, 1, n.Length(), 1e-6)
		assert.Greater(t, n.Dot(m.Position(i).Sub(center)), 0.0, "vertex %d normal points inward", i)
	}
}

// explode turns an indexed mesh into an unindexed soup, the shape marching
// cubes produces.
func explode(t *testing.T, base *geometry.BasePolygonalGeometryData) *geometry.BasePolygonalGeometryData {
	t.Helper()
	buf, err := buffer.Build(base)
	require.NoError(t, err)
	m := convert.ToRenderMesh(buf)
	out := &geometry.BasePolygonalGeometryData{Name: base.Name}
	for tri := 0; tri < m.TriangleCount(); tri++ {
		idx := m.Triangle(tri)
		face := make([]int, 3)
		for k, v := range idx {
			face[k] = len(out.Vertices)
			out.Vertices = append(out.Vertices, m.Position(int(v)))
		}
		out.VertexIndices = append(out.VertexIndices, face)
	}
	return out
}

func TestFromRenderMeshWelds(t *testing.T) {
	soup := explode(t, geometry.Icosahedron(2))
	buf, err := buffer.Build(soup)
	require.NoError(t, err)
	m := convert.ToRenderMesh(buf)
	require.Equal(t, 60, m.VertexCount())

	welded, err := convert.FromRenderMesh(m, 1e-5)
	require.NoError(t, err)
	assert.Equal(t, 12, welded.VertexCount())
	assert.Equal(t, 20, welded.FaceCount())
	assert.Len(t, welded.VertexNormals, 12)

	ref, err := halfedge.Build(welded)
	require.NoError(t, err)
	assert.True(t, ref.IsClosed())
	assert.Equal(t, 2, ref.EulerCharacteristic())
}

func TestFromRenderMeshDropsCollapsedTriangles(t *testing.T) {
	d := &geometry.BasePolygonalGeometryData{
		Vertices:      []v3.Vec{{}, {X: 1}, {Y: 1}, {X: 1e-9, Y: 1}},
		VertexIndices: [][]int{{0, 1, 2}, {1, 3, 2}},
	}
	buf, err := buffer.Build(d)
	require.NoError(t, err)
	welded, err := convert.FromRenderMesh(convert.ToRenderMesh(buf), 1e-6)
	require.NoError(t, err)
	assert.Equal(t, 3, welded.VertexCount())
	assert.Equal(t, [][]int{{0, 1, 2}}, welded.VertexIndices)
}

func TestFromRenderMeshErrors(t *testing.T) {
	buf, err := buffer.Build(geometry.Box(1, 1, 1))
	require.NoError(t, err)
	m := convert.ToRenderMesh(buf)

	_, err = convert.FromRenderMesh(m, 0)
	assert.ErrorIs(t, err, geometry.ErrToleranceViolation)
	_, err = convert.FromRenderMesh(m, math.NaN())
	assert.ErrorIs(t, err, geometry.ErrToleranceViolation)

	m.Indices[0] = 99
	_, err = convert.FromRenderMesh(m, 1e-6)
	assert.ErrorIs(t, err, geometry.ErrInputValidation)
}
