package geometry

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// PolyMeshType classifies a mesh by the arity of its faces.
type PolyMeshType int

const (
	General       PolyMeshType = iota // mixed or larger polygons
	Triangular                        // every face has three vertices
	Quadrilateral                     // every face has four vertices
)

func (t PolyMeshType) String() string {
	switch t {
	case General:
		return "general"
	case Triangular:
		return "triangular"
	case Quadrilateral:
		return "quadrilateral"
	default:
		return fmt.Sprintf("PolyMeshType(%d)", int(t))
	}
}

// ClassifyFaces returns the PolyMeshType of a list of face vertex counts.
// An empty list is General.
func ClassifyFaces(sizes []int) PolyMeshType {
	if len(sizes) == 0 {
		return General
	}
	first := sizes[0]
	for _, n := range sizes[1:] {
		if n != first {
			return General
		}
	}
	switch first {
	case 3:
		return Triangular
	case 4:
		return Quadrilateral
	}
	return General
}

// BasePolygonalGeometryData is a polygon soup: positions plus per-face
// vertex-index lists. It seeds exactly one builder run.
type BasePolygonalGeometryData struct {
	Name          string   `json:"name"`
	Vertices      []v3.Vec `json:"vertices"`
	VertexIndices [][]int  `json:"vertex_indices"`           // each face lists >= 3 vertex indices
	VertexNormals []v3.Vec `json:"vertex_normals,omitempty"` // empty or one per vertex
}

// VertexCount returns the number of positions.
func (d *BasePolygonalGeometryData) VertexCount() int {
	return len(d.Vertices)
}

// FaceCount returns the number of faces.
func (d *BasePolygonalGeometryData) FaceCount() int {
	return len(d.VertexIndices)
}

// HasNormals reports whether per-vertex normals are present.
func (d *BasePolygonalGeometryData) HasNormals() bool {
	return len(d.VertexNormals) > 0
}

// TriangleCount returns Σ(n−2) over all faces, the number of triangles a
// full triangulation produces. Faces with fewer than three vertices count
// as zero.
func (d *BasePolygonalGeometryData) TriangleCount() int {
	total := 0
	for _, f := range d.VertexIndices {
		if len(f) >= 3 {
			total += len(f) - 2
		}
	}
	return total
}

// PolyMeshType classifies the faces of d.
func (d *BasePolygonalGeometryData) PolyMeshType() PolyMeshType {
	sizes := make([]int, len(d.VertexIndices))
	for i, f := range d.VertexIndices {
		sizes[i] = len(f)
	}
	return ClassifyFaces(sizes)
}

// FacePositions returns the positions of face f in order.
func (d *BasePolygonalGeometryData) FacePositions(f int) []v3.Vec {
	face := d.VertexIndices[f]
	pts := make([]v3.Vec, len(face))
	for i, vi := range face {
		pts[i] = d.Vertices[vi]
	}
	return pts
}

// BoundingBox returns the axis-aligned box enclosing all positions. An
// empty record yields the zero box.
func (d *BasePolygonalGeometryData) BoundingBox() sdf.Box3 {
	return BoundingBox(d.Vertices)
}

// BoundingBox returns the axis-aligned box enclosing pts.
func BoundingBox(pts []v3.Vec) sdf.Box3 {
	if len(pts) == 0 {
		return sdf.Box3{}
	}
	bb := sdf.Box3{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		bb.Min = bb.Min.Min(p)
		bb.Max = bb.Max.Max(p)
	}
	return bb
}

// Clone returns a deep copy of d.
func (d *BasePolygonalGeometryData) Clone() *BasePolygonalGeometryData {
	c := &BasePolygonalGeometryData{
		Name:          d.Name,
		Vertices:      append([]v3.Vec(nil), d.Vertices...),
		VertexIndices: make([][]int, len(d.VertexIndices)),
	}
	for i, f := range d.VertexIndices {
		c.VertexIndices[i] = append([]int(nil), f...)
	}
	if len(d.VertexNormals) > 0 {
		c.VertexNormals = append([]v3.Vec(nil), d.VertexNormals...)
	}
	return c
}

// Validate checks the record for input errors. Every failure is of class
// ErrInputValidation; face-level failures are *FaceError values.
func (d *BasePolygonalGeometryData) Validate() error {
	if d == nil {
		return fmt.Errorf("geometry: %w: nil record", ErrInputValidation)
	}
	if len(d.VertexNormals) != 0 && len(d.VertexNormals) != len(d.Vertices) {
		return fmt.Errorf("geometry: %w: %d normals for %d vertices",
			ErrInputValidation, len(d.VertexNormals), len(d.Vertices))
	}
	for i, p := range d.Vertices {
		if !finite(p) {
			return fmt.Errorf("geometry: %w: vertex %d has non-finite position %v",
				ErrInputValidation, i, p)
		}
	}
	nv := len(d.Vertices)
	for f, face := range d.VertexIndices {
		if len(face) < 3 {
			return faceErrorf(ErrInputValidation, f, "%d vertices, need at least 3", len(face))
		}
		seen := make(map[int]struct{}, len(face))
		for _, vi := range face {
			if vi < 0 || vi >= nv {
				return faceErrorf(ErrInputValidation, f, "vertex index %d out of range [0,%d)", vi, nv)
			}
			if _, dup := seen[vi]; dup {
				return faceErrorf(ErrInputValidation, f, "vertex %d appears more than once", vi)
			}
			seen[vi] = struct{}{}
		}
	}
	return nil
}

func finite(p v3.Vec) bool {
	for _, c := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// GeometryIOData is the record exchanged with the IO layer. It is a
// structural subset of BasePolygonalGeometryData.
type GeometryIOData struct {
	Name          string
	Vertices      []v3.Vec
	VertexIndices [][]int
	VertexNormals []v3.Vec
}

// FromIO converts an IO record into a polygon soup. Slices are copied so
// the caller keeps ownership of io.
func FromIO(io GeometryIOData) *BasePolygonalGeometryData {
	return (&BasePolygonalGeometryData{
		Name:          io.Name,
		Vertices:      io.Vertices,
		VertexIndices: io.VertexIndices,
		VertexNormals: io.VertexNormals,
	}).Clone()
}

// ToIO converts d into an IO record sharing no memory with d.
func (d *BasePolygonalGeometryData) ToIO() GeometryIOData {
	c := d.Clone()
	return GeometryIOData{
		Name:          c.Name,
		Vertices:      c.Vertices,
		VertexIndices: c.VertexIndices,
		VertexNormals: c.VertexNormals,
	}
}
