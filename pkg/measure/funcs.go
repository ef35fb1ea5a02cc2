package measure

import (
	"github.com/chazu/hemesh/pkg/halfedge"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// The functions below evaluate a single query with the process-wide default
// tolerance.

// Area returns the area of face f of mesh.
func Area(mesh *halfedge.ReferencedMeshGeometryData, f halfedge.LoopHandle) (float64, error) {
	return New(mesh).Area(f)
}

// Normal returns the unit normal of face f of mesh.
func Normal(mesh *halfedge.ReferencedMeshGeometryData, f halfedge.LoopHandle) (v3.Vec, error) {
	return New(mesh).Normal(f)
}

// Barycenter returns the vertex mean of face f of mesh.
func Barycenter(mesh *halfedge.ReferencedMeshGeometryData, f halfedge.LoopHandle) (v3.Vec, error) {
	return New(mesh).Barycenter(f)
}

// Circumcenter returns the circumcenter of triangular face f of mesh.
func Circumcenter(mesh *halfedge.ReferencedMeshGeometryData, f halfedge.LoopHandle) (v3.Vec, error) {
	return New(mesh).Circumcenter(f)
}

// Valence returns the number of edges at vertex v of mesh.
func Valence(mesh *halfedge.ReferencedMeshGeometryData, v halfedge.VertexHandle) (int, error) {
	return New(mesh).Valence(v)
}

// CotangentWeight returns the cotangent of the angle opposite h.
func CotangentWeight(mesh *halfedge.ReferencedMeshGeometryData, h halfedge.HalfEdgeHandle) (float64, error) {
	return New(mesh).CotangentWeight(h)
}

// EdgeCotangentWeight returns the cotangent Laplacian weight of edge e.
func EdgeCotangentWeight(mesh *halfedge.ReferencedMeshGeometryData, e halfedge.EdgeHandle) (float64, error) {
	return New(mesh).EdgeCotangentWeight(e)
}

// DualNeighborhoodArea returns the barycentric dual area of vertex v.
func DualNeighborhoodArea(mesh *halfedge.ReferencedMeshGeometryData, v halfedge.VertexHandle) (float64, error) {
	return New(mesh).DualNeighborhoodArea(v)
}

// VertexNormal returns the area-weighted normal at vertex v.
func VertexNormal(mesh *halfedge.ReferencedMeshGeometryData, v halfedge.VertexHandle) (v3.Vec, error) {
	return New(mesh).VertexNormal(v)
}

// EdgeLength returns the length of edge e.
func EdgeLength(mesh *halfedge.ReferencedMeshGeometryData, e halfedge.EdgeHandle) (float64, error) {
	return New(mesh).EdgeLength(e)
}

// TotalArea returns the summed face area of mesh.
func TotalArea(mesh *halfedge.ReferencedMeshGeometryData) float64 {
	return New(mesh).TotalArea()
}

// BoundingBox returns the axis-aligned box around mesh.
func BoundingBox(mesh *halfedge.ReferencedMeshGeometryData) sdf.Box3 {
	return New(mesh).BoundingBox()
}
