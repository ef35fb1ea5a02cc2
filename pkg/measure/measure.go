// Package measure computes geometric quantities of half-edge meshes: face
// areas, normals and centers, vertex valence and dual areas, and the
// cotangent weights of the discrete Laplacian.
//
// Degenerate input yields a defined zero wherever one exists (the normal of
// a zero-area face, the cotangent across a boundary); only queries without
// such a value, like the circumcenter of collinear points, fail with
// geometry.ErrDegenerateGeometry.
package measure

import (
	"fmt"
	"math"

	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/halfedge"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Measure evaluates queries on one mesh with a fixed tolerance.
type Measure struct {
	mesh *halfedge.ReferencedMeshGeometryData
	tol  config.Tolerance
}

// New returns a Measure for mesh. Without options it uses the process-wide
// default tolerance.
func New(mesh *halfedge.ReferencedMeshGeometryData, opts ...config.Option) *Measure {
	return &Measure{mesh: mesh, tol: config.Resolve(opts...).Tolerance}
}

func triangleCross(t halfedge.Triangle) v3.Vec {
	a := t[0].MustGet().Position()
	b := t[1].MustGet().Position()
	c := t[2].MustGet().Position()
	return b.Sub(a).Cross(c.Sub(a))
}

// Area returns the area of a face, summed over its triangulation. Boundary
// cycles have zero area.
func (m *Measure) Area(f halfedge.LoopHandle) (float64, error) {
	lp, err := m.mesh.Loop(f)
	if err != nil {
		return 0, fmt.Errorf("measure: area: %w", err)
	}
	var area float64
	for _, t := range lp.Triangulation() {
		area += triangleCross(t).Length() / 2
	}
	return area, nil
}

// Normal returns the unit normal of a face: the area-weighted average of
// its triangle normals. Degenerate faces and boundary cycles yield the zero
// vector.
func (m *Measure) Normal(f halfedge.LoopHandle) (v3.Vec, error) {
	lp, err := m.mesh.Loop(f)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("measure: normal: %w", err)
	}
	var sum v3.Vec
	for _, t := range lp.Triangulation() {
		sum = sum.Add(triangleCross(t))
	}
	return m.unit(sum), nil
}

func (m *Measure) unit(v v3.Vec) v3.Vec {
	if v.Length() < m.tol.Normal {
		return v3.Vec{}
	}
	return v.Normalize()
}

// Barycenter returns the mean of a face's vertex positions.
func (m *Measure) Barycenter(f halfedge.LoopHandle) (v3.Vec, error) {
	pts, err := m.mesh.FacePositions(f)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("measure: barycenter: %w", err)
	}
	var sum v3.Vec
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.DivScalar(float64(len(pts))), nil
}

// Circumcenter returns the center of the circle through a triangular
// face's vertices. Other faces fail with geometry.ErrInputValidation; a
// collinear triangle fails with geometry.ErrDegenerateGeometry.
func (m *Measure) Circumcenter(f halfedge.LoopHandle) (v3.Vec, error) {
	lp, err := m.mesh.Loop(f)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("measure: circumcenter: %w", err)
	}
	pts, err := m.mesh.FacePositions(f)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("measure: circumcenter: %w", err)
	}
	if lp.IsBoundary() || len(pts) != 3 {
		return v3.Vec{}, fmt.Errorf("measure: circumcenter: %w: loop %d has %d vertices, need a triangular face",
			geometry.ErrInputValidation, f.Index(), len(pts))
	}
	a := pts[0]
	u, v := pts[1].Sub(a), pts[2].Sub(a)
	w := u.Cross(v)
	w2 := w.Length2()
	if math.Sqrt(w2) < m.tol.Normal {
		return v3.Vec{}, fmt.Errorf("measure: circumcenter: %w: face %d is collinear",
			geometry.ErrDegenerateGeometry, f.Index())
	}
	num := v.Cross(w).MulScalar(u.Length2()).Add(w.Cross(u).MulScalar(v.Length2()))
	return a.Add(num.DivScalar(2 * w2)), nil
}

// Valence returns the number of edges at a vertex, boundary edges
// included. An isolated vertex has valence zero.
func (m *Measure) Valence(v halfedge.VertexHandle) (int, error) {
	out, err := m.mesh.OutgoingHalfEdges(v)
	if err != nil {
		return 0, fmt.Errorf("measure: valence: %w", err)
	}
	return len(out), nil
}

// CotangentWeight returns the cotangent of the angle opposite h in the
// triangle of h's face that contains h. It is zero for boundary half-edges
// and for degenerate triangles.
func (m *Measure) CotangentWeight(h halfedge.HalfEdgeHandle) (float64, error) {
	he, err := m.mesh.HalfEdge(h)
	if err != nil {
		return 0, fmt.Errorf("measure: cotangent: %w", err)
	}
	if he.IsBoundary() {
		return 0, nil
	}
	tail := he.Tail()
	head, err := m.mesh.Head(h)
	if err != nil {
		return 0, fmt.Errorf("measure: cotangent: %w", err)
	}
	for _, t := range he.Face().MustGet().Triangulation() {
		for k := 0; k < 3; k++ {
			if t[k] != tail || t[(k+1)%3] != head {
				continue
			}
			c := t[(k+2)%3].MustGet().Position()
			ca := tail.MustGet().Position().Sub(c)
			cb := head.MustGet().Position().Sub(c)
			cross := ca.Cross(cb).Length()
			if cross < m.tol.Normal {
				return 0, nil
			}
			return ca.Dot(cb) / cross, nil
		}
	}
	return 0, fmt.Errorf("measure: cotangent: %w: half-edge %d is in no triangle of its face",
		geometry.ErrTopology, h.Index())
}

// EdgeCotangentWeight returns half the sum of the cotangent weights of an
// edge's two half-edges, the usual weight of the cotangent Laplacian.
func (m *Measure) EdgeCotangentWeight(e halfedge.EdgeHandle) (float64, error) {
	ed, err := m.mesh.Edges.Get(e)
	if err != nil {
		return 0, fmt.Errorf("measure: edge cotangent: %w", err)
	}
	h := ed.HalfEdge()
	a, err := m.CotangentWeight(h)
	if err != nil {
		return 0, err
	}
	b, err := m.CotangentWeight(h.MustGet().Opposite())
	if err != nil {
		return 0, err
	}
	return (a + b) / 2, nil
}

// incidentFaces returns the faces around v, each once, in fan order.
func (m *Measure) incidentFaces(v halfedge.VertexHandle) ([]halfedge.FaceHandle, error) {
	out, err := m.mesh.OutgoingHalfEdges(v)
	if err != nil {
		return nil, err
	}
	var faces []halfedge.FaceHandle
	seen := make(map[halfedge.FaceHandle]bool, len(out))
	for _, h := range out {
		he := h.MustGet()
		if he.IsBoundary() || seen[he.Face()] {
			continue
		}
		seen[he.Face()] = true
		faces = append(faces, he.Face())
	}
	return faces, nil
}

// DualNeighborhoodArea returns one third of the total area of the
// triangles incident to v, taken from the triangulations of its faces.
func (m *Measure) DualNeighborhoodArea(v halfedge.VertexHandle) (float64, error) {
	faces, err := m.incidentFaces(v)
	if err != nil {
		return 0, fmt.Errorf("measure: dual area: %w", err)
	}
	var area float64
	for _, f := range faces {
		for _, t := range f.MustGet().Triangulation() {
			if t[0] == v || t[1] == v || t[2] == v {
				area += triangleCross(t).Length() / 2
			}
		}
	}
	return area / 3, nil
}

// VertexNormal returns the unit area-weighted average of the normals of
// the faces around v, or the zero vector if they cancel or v is isolated.
func (m *Measure) VertexNormal(v halfedge.VertexHandle) (v3.Vec, error) {
	faces, err := m.incidentFaces(v)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("measure: vertex normal: %w", err)
	}
	var sum v3.Vec
	for _, f := range faces {
		for _, t := range f.MustGet().Triangulation() {
			sum = sum.Add(triangleCross(t))
		}
	}
	return m.unit(sum), nil
}

// EdgeLength returns the distance between an edge's endpoints.
func (m *Measure) EdgeLength(e halfedge.EdgeHandle) (float64, error) {
	ed, err := m.mesh.Edges.Get(e)
	if err != nil {
		return 0, fmt.Errorf("measure: edge length: %w", err)
	}
	h := ed.HalfEdge()
	head, err := m.mesh.Head(h)
	if err != nil {
		return 0, fmt.Errorf("measure: edge length: %w", err)
	}
	a := h.MustGet().Tail().MustGet().Position()
	return head.MustGet().Position().Sub(a).Length(), nil
}

// TotalArea returns the summed area of all faces.
func (m *Measure) TotalArea() float64 {
	var total float64
	for f := range m.mesh.Faces.All() {
		a, _ := m.Area(f)
		total += a
	}
	return total
}

// BoundingBox returns the axis-aligned box around all vertices.
func (m *Measure) BoundingBox() sdf.Box3 {
	pts := make([]v3.Vec, 0, m.mesh.Vertices.Len())
	for _, v := range m.mesh.Vertices.All() {
		pts = append(pts, v.Position())
	}
	return geometry.BoundingBox(pts)
}
