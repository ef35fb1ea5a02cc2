package kernel

import (
	"fmt"
	"math"

	"github.com/chazu/hemesh/pkg/geometry"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // name of the mesh this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Position returns vertex i widened to float64.
func (m *Mesh) Position(i int) v3.Vec {
	return v3.Vec{X: float64(m.Vertices[3*i]), Y: float64(m.Vertices[3*i+1]), Z: float64(m.Vertices[3*i+2])}
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

// Validate checks array lengths, index ranges and that every coordinate is
// finite.
func (m *Mesh) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("kernel: mesh %q: %w: %d vertex floats", m.Name, geometry.ErrInputValidation, len(m.Vertices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("kernel: mesh %q: %w: %d normal floats for %d vertex floats",
			m.Name, geometry.ErrInputValidation, len(m.Normals), len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("kernel: mesh %q: %w: %d indices", m.Name, geometry.ErrInputValidation, len(m.Indices))
	}
	for i, c := range m.Vertices {
		if f := float64(c); math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("kernel: mesh %q: %w: vertex %d is not finite", m.Name, geometry.ErrInputValidation, i/3)
		}
	}
	nv := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= nv {
			return fmt.Errorf("kernel: mesh %q: %w: triangle %d references vertex %d of %d",
				m.Name, geometry.ErrInputValidation, i/3, idx, nv)
		}
	}
	return nil
}
