package convert

import (
	"fmt"
	"math"

	"github.com/chazu/hemesh/pkg/buffer"
	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ToRenderMesh narrows a buffer mesh to float32 arrays. Supplied vertex
// normals are copied; otherwise each vertex gets the normalized sum of the
// area-weighted normals of its triangles.
func ToRenderMesh(buf *buffer.BufferMeshGeometryData) *kernel.Mesh {
	m := &kernel.Mesh{
		Vertices: make([]float32, len(buf.VertexCoords)),
		Normals:  make([]float32, len(buf.VertexCoords)),
		Indices:  make([]uint32, len(buf.VertexIndices)),
		Name:     buf.Name,
	}
	for i, c := range buf.VertexCoords {
		m.Vertices[i] = float32(c)
	}
	for i, idx := range buf.VertexIndices {
		m.Indices[i] = uint32(idx)
	}

	if buf.HasNormals() {
		for i, c := range buf.VertexNormalCoords {
			m.Normals[i] = float32(c)
		}
		return m
	}
	for i, n := range AreaWeightedNormals(buf) {
		m.Normals[3*i] = float32(n.X)
		m.Normals[3*i+1] = float32(n.Y)
		m.Normals[3*i+2] = float32(n.Z)
	}
	return m
}

// AreaWeightedNormals returns a unit normal per vertex of buf, summing the
// cross products of its triangles. Vertices with no area around them get
// the zero vector.
func AreaWeightedNormals(buf *buffer.BufferMeshGeometryData) []v3.Vec {
	sums := make([]v3.Vec, buf.VertexCount())
	for id := 0; id < buf.TriangleCount(); id++ {
		t, _ := buf.Triangle(id)
		a, b, c := buf.Position(t[0]), buf.Position(t[1]), buf.Position(t[2])
		n := b.Sub(a).Cross(c.Sub(a))
		for _, v := range t {
			sums[v] = sums[v].Add(n)
		}
	}
	for i, n := range sums {
		if n.Length() > 0 {
			sums[i] = n.Normalize()
		}
	}
	return sums
}

// cellKey addresses one cube of the welding grid.
type cellKey [3]int64

// welder merges points closer than tol into one vertex. Points are hashed
// into cubes of side tol; a query inspects the 27 cubes around a point.
type welder struct {
	tol    float64
	cells  map[cellKey][]int
	points []v3.Vec
}

func (w *welder) key(p v3.Vec) cellKey {
	return cellKey{
		int64(math.Floor(p.X / w.tol)),
		int64(math.Floor(p.Y / w.tol)),
		int64(math.Floor(p.Z / w.tol)),
	}
}

// add returns the index of the welded vertex for p, creating one if no
// existing vertex lies within tol.
func (w *welder) add(p v3.Vec) int {
	k := w.key(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range w.cells[cellKey{k[0] + dx, k[1] + dy, k[2] + dz}] {
					if w.points[i].Sub(p).Length() <= w.tol {
						return i
					}
				}
			}
		}
	}
	i := len(w.points)
	w.points = append(w.points, p)
	w.cells[k] = append(w.cells[k], i)
	return i
}

// FromRenderMesh welds an indexed or unindexed triangle mesh into a polygon
// soup with shared vertices. Vertices within weld of an earlier vertex are
// merged into it; triangles that collapse under welding are dropped.
// Supplied normals are averaged over each welded vertex.
func FromRenderMesh(m *kernel.Mesh, weld float64) (*geometry.BasePolygonalGeometryData, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	if !(weld > 0) {
		return nil, fmt.Errorf("convert: weld %v: %w", weld, geometry.ErrToleranceViolation)
	}

	w := &welder{tol: weld, cells: make(map[cellKey][]int)}
	remap := make([]int, m.VertexCount())
	for i := range remap {
		remap[i] = w.add(m.Position(i))
	}

	d := &geometry.BasePolygonalGeometryData{
		Name:          m.Name,
		Vertices:      w.points,
		VertexIndices: make([][]int, 0, m.TriangleCount()),
	}
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		a, b, c := remap[tri[0]], remap[tri[1]], remap[tri[2]]
		if a == b || b == c || c == a {
			continue
		}
		d.VertexIndices = append(d.VertexIndices, []int{a, b, c})
	}

	if len(m.Normals) > 0 {
		sums := make([]v3.Vec, len(w.points))
		for i, target := range remap {
			n := v3.Vec{X: float64(m.Normals[3*i]), Y: float64(m.Normals[3*i+1]), Z: float64(m.Normals[3*i+2])}
			sums[target] = sums[target].Add(n)
		}
		for i, n := range sums {
			if n.Length() > 0 {
				sums[i] = n.Normalize()
			}
		}
		d.VertexNormals = sums
	}
	return d, nil
}
