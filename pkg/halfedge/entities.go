package halfedge

import (
	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/handle"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Handle aliases for the entity arenas.
type (
	VertexHandle   = handle.Handle[Vertex]
	HalfEdgeHandle = handle.Handle[HalfEdge]
	EdgeHandle     = handle.Handle[Edge]
	LoopHandle     = handle.Handle[Loop]
	FaceHandle     = LoopHandle
)

// Vertex is a mesh vertex.
type Vertex struct {
	position v3.Vec
	halfEdge HalfEdgeHandle
	index    int
}

// Position returns the vertex position.
func (v *Vertex) Position() v3.Vec { return v.position }

// HalfEdge returns one outgoing half-edge, or the nil handle for an
// isolated vertex. For a vertex touching any face it is a face half-edge.
func (v *Vertex) HalfEdge() HalfEdgeHandle { return v.halfEdge }

// Index returns the vertex's position in the input record.
func (v *Vertex) Index() int { return v.index }

// HalfEdge is one directed side of an edge.
type HalfEdge struct {
	tail     VertexHandle
	next     HalfEdgeHandle
	opposite HalfEdgeHandle
	loop     LoopHandle
	edge     EdgeHandle
	index    int
	boundary bool
}

// Tail returns the vertex the half-edge starts at.
func (h *HalfEdge) Tail() VertexHandle { return h.tail }

// Next returns the following half-edge of the same loop.
func (h *HalfEdge) Next() HalfEdgeHandle { return h.next }

// Opposite returns the half-edge running the other way along the same edge.
func (h *HalfEdge) Opposite() HalfEdgeHandle { return h.opposite }

// Loop returns the face or boundary cycle the half-edge belongs to. Check
// IsBoundary to know which arena it points into.
func (h *HalfEdge) Loop() LoopHandle { return h.loop }

// Face is Loop under the name used for interior half-edges.
func (h *HalfEdge) Face() FaceHandle { return h.loop }

// Edge returns the undirected edge.
func (h *HalfEdge) Edge() EdgeHandle { return h.edge }

// Index returns the half-edge's arena index.
func (h *HalfEdge) Index() int { return h.index }

// IsBoundary reports whether the half-edge lies in a boundary cycle.
func (h *HalfEdge) IsBoundary() bool { return h.boundary }

// Edge is an undirected edge.
type Edge struct {
	halfEdge HalfEdgeHandle
	index    int
}

// HalfEdge returns the canonical half-edge, which is always a face
// half-edge.
func (e *Edge) HalfEdge() HalfEdgeHandle { return e.halfEdge }

// Index returns the edge's arena index.
func (e *Edge) Index() int { return e.index }

// Triangle is a triple of vertex handles.
type Triangle [3]VertexHandle

// Loop is a closed chain of half-edges: either a face of the input or a
// boundary cycle closing an open border.
type Loop struct {
	halfEdge      HalfEdgeHandle
	triangulation []Triangle
	index         int
	boundary      bool
}

// Face is a Loop stored in the Faces arena.
type Face = Loop

// BoundaryCycle is a Loop stored in the BoundaryCycles arena. It has an
// empty triangulation and zero area.
type BoundaryCycle = Loop

// HalfEdge returns the seed half-edge of the loop.
func (l *Loop) HalfEdge() HalfEdgeHandle { return l.halfEdge }

// Triangulation returns the face's triangles, wound like the face. It is
// empty for boundary cycles.
func (l *Loop) Triangulation() []Triangle { return l.triangulation }

// Index returns the loop's arena index.
func (l *Loop) Index() int { return l.index }

// IsBoundary reports whether the loop is a boundary cycle.
func (l *Loop) IsBoundary() bool { return l.boundary }

// ReferencedMeshGeometryData is a built half-edge mesh.
type ReferencedMeshGeometryData struct {
	Name           string
	Vertices       *handle.Arena[Vertex]
	HalfEdges      *handle.Arena[HalfEdge]
	Edges          *handle.Arena[Edge]
	Faces          *handle.Arena[Face]
	BoundaryCycles *handle.Arena[BoundaryCycle]
	VertexNormals  []v3.Vec
	PolyMeshType   geometry.PolyMeshType
	TriangleCount  int
}
