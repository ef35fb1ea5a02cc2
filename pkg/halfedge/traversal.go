package halfedge

import (
	"fmt"

	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/handle"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Loop resolves a face or boundary-cycle handle of m.
func (m *ReferencedMeshGeometryData) Loop(l LoopHandle) (*Loop, error) {
	var (
		lp  *Loop
		err error
	)
	switch l.Owner() {
	case m.Faces:
		lp, err = m.Faces.Get(l)
	case m.BoundaryCycles:
		lp, err = m.BoundaryCycles.Get(l)
	case nil:
		err = fmt.Errorf("%w: nil loop handle", handle.ErrOutOfRange)
	default:
		err = handle.ErrForeignHandle
	}
	if err != nil {
		return nil, fmt.Errorf("halfedge: loop %v: %w", l, err)
	}
	return lp, nil
}

// HalfEdge resolves a half-edge handle of m.
func (m *ReferencedMeshGeometryData) HalfEdge(h HalfEdgeHandle) (*HalfEdge, error) {
	he, err := m.HalfEdges.Get(h)
	if err != nil {
		return nil, fmt.Errorf("halfedge: half-edge %v: %w", h, err)
	}
	return he, nil
}

// Vertex resolves a vertex handle of m.
func (m *ReferencedMeshGeometryData) Vertex(v VertexHandle) (*Vertex, error) {
	vx, err := m.Vertices.Get(v)
	if err != nil {
		return nil, fmt.Errorf("halfedge: vertex %v: %w", v, err)
	}
	return vx, nil
}

// Head returns the vertex h points to.
func (m *ReferencedMeshGeometryData) Head(h HalfEdgeHandle) (VertexHandle, error) {
	he, err := m.HalfEdge(h)
	if err != nil {
		return VertexHandle{}, err
	}
	return he.next.MustGet().tail, nil
}

// Prev returns the half-edge whose Next is h.
func (m *ReferencedMeshGeometryData) Prev(h HalfEdgeHandle) (HalfEdgeHandle, error) {
	if _, err := m.HalfEdge(h); err != nil {
		return HalfEdgeHandle{}, err
	}
	cur := h
	for range m.HalfEdges.Len() {
		next := cur.MustGet().next
		if next == h {
			return cur, nil
		}
		cur = next
	}
	return HalfEdgeHandle{}, fmt.Errorf("halfedge: prev of %v: %w: loop does not close", h, geometry.ErrTopology)
}

// FaceHalfEdges returns the half-edges of a face or boundary cycle in Next
// order, starting at its seed.
func (m *ReferencedMeshGeometryData) FaceHalfEdges(l LoopHandle) ([]HalfEdgeHandle, error) {
	lp, err := m.Loop(l)
	if err != nil {
		return nil, err
	}
	var out []HalfEdgeHandle
	h := lp.halfEdge
	for range m.HalfEdges.Len() {
		out = append(out, h)
		h = h.MustGet().next
		if h == lp.halfEdge {
			return out, nil
		}
	}
	return nil, fmt.Errorf("halfedge: loop %v: %w: does not close", l, geometry.ErrTopology)
}

// FaceVertices returns the tail vertices of the loop's half-edges.
func (m *ReferencedMeshGeometryData) FaceVertices(l LoopHandle) ([]VertexHandle, error) {
	hs, err := m.FaceHalfEdges(l)
	if err != nil {
		return nil, err
	}
	vs := make([]VertexHandle, len(hs))
	for i, h := range hs {
		vs[i] = h.MustGet().tail
	}
	return vs, nil
}

// FacePositions returns the positions of the loop's vertices.
func (m *ReferencedMeshGeometryData) FacePositions(l LoopHandle) ([]v3.Vec, error) {
	vs, err := m.FaceVertices(l)
	if err != nil {
		return nil, err
	}
	pts := make([]v3.Vec, len(vs))
	for i, v := range vs {
		pts[i] = v.MustGet().position
	}
	return pts, nil
}

// OutgoingHalfEdges returns the half-edges leaving v, boundary half-edges
// included, in Opposite().Next() order starting at the vertex seed. It is
// empty for an isolated vertex.
func (m *ReferencedMeshGeometryData) OutgoingHalfEdges(v VertexHandle) ([]HalfEdgeHandle, error) {
	vx, err := m.Vertex(v)
	if err != nil {
		return nil, err
	}
	seed := vx.halfEdge
	if seed.IsNil() {
		return nil, nil
	}
	var out []HalfEdgeHandle
	h := seed
	for range m.HalfEdges.Len() {
		out = append(out, h)
		h = h.MustGet().opposite.MustGet().next
		if h == seed {
			return out, nil
		}
	}
	return nil, fmt.Errorf("halfedge: vertex %v: %w: fan does not close", v, geometry.ErrTopology)
}

// IsBoundaryVertex reports whether v lies on a boundary cycle.
func (m *ReferencedMeshGeometryData) IsBoundaryVertex(v VertexHandle) (bool, error) {
	hs, err := m.OutgoingHalfEdges(v)
	if err != nil {
		return false, err
	}
	for _, h := range hs {
		if h.MustGet().boundary {
			return true, nil
		}
	}
	return false, nil
}

// EulerCharacteristic returns V - E + F, counting faces only.
func (m *ReferencedMeshGeometryData) EulerCharacteristic() int {
	return m.Vertices.Len() - m.Edges.Len() + m.Faces.Len()
}

// IsClosed reports whether the mesh has no boundary.
func (m *ReferencedMeshGeometryData) IsClosed() bool {
	return m.BoundaryCycles.Len() == 0
}
