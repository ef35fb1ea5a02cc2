package geometry

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// icosahedronFaces lists the 20 faces of the unit icosahedron with
// outward counter-clockwise winding.
var icosahedronFaces = [20][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// Icosahedron returns a closed icosahedron centered at the origin with the
// given edge length: 12 vertices, 20 triangular faces.
func Icosahedron(edge float64) *BasePolygonalGeometryData {
	t := (1 + math.Sqrt(5)) / 2
	s := edge / 2 // the canonical coordinates have edge length 2
	raw := []v3.Vec{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	d := &BasePolygonalGeometryData{Name: "icosahedron"}
	for _, p := range raw {
		d.Vertices = append(d.Vertices, p.MulScalar(s))
	}
	for _, f := range icosahedronFaces {
		d.VertexIndices = append(d.VertexIndices, []int{f[0], f[1], f[2]})
	}
	return d
}

// Box returns an axis-aligned box with its minimum corner at the origin:
// 8 vertices, 6 outward-facing quads.
func Box(x, y, z float64) *BasePolygonalGeometryData {
	return &BasePolygonalGeometryData{
		Name: "box",
		Vertices: []v3.Vec{
			{}, {X: x}, {X: x, Y: y}, {Y: y},
			{Z: z}, {X: x, Z: z}, {X: x, Y: y, Z: z}, {Y: y, Z: z},
		},
		VertexIndices: [][]int{
			{0, 3, 2, 1}, // bottom
			{4, 5, 6, 7}, // top
			{0, 1, 5, 4}, // front
			{2, 3, 7, 6}, // back
			{0, 4, 7, 3}, // left
			{1, 2, 6, 5}, // right
		},
	}
}

// Grid returns an open rows×cols sheet of quads in the XY plane facing +Z.
func Grid(rows, cols int, spacing float64) (*BasePolygonalGeometryData, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("geometry: grid: %w: %dx%d cells", ErrInputValidation, rows, cols)
	}
	d := &BasePolygonalGeometryData{Name: fmt.Sprintf("grid-%dx%d", rows, cols)}
	stride := cols + 1
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			d.Vertices = append(d.Vertices, v3.Vec{X: float64(c) * spacing, Y: float64(r) * spacing})
		}
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v00 := r*stride + c
			d.VertexIndices = append(d.VertexIndices, []int{v00, v00 + 1, v00 + stride + 1, v00 + stride})
		}
	}
	return d, nil
}

// RegularPolygon returns a single n-gon face of the given circumradius in
// the XY plane, wound counter-clockwise about +Z.
func RegularPolygon(n int, radius float64) (*BasePolygonalGeometryData, error) {
	if n < 3 {
		return nil, fmt.Errorf("geometry: polygon: %w: %d sides", ErrInputValidation, n)
	}
	d := &BasePolygonalGeometryData{Name: fmt.Sprintf("polygon-%d", n)}
	face := make([]int, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		d.Vertices = append(d.Vertices, v3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)})
		face[i] = i
	}
	d.VertexIndices = [][]int{face}
	return d, nil
}

// WithoutFaces returns a copy of d with the listed faces removed. Vertices
// are kept, so removed faces may leave isolated vertices behind.
func (d *BasePolygonalGeometryData) WithoutFaces(faces ...int) *BasePolygonalGeometryData {
	drop := make(map[int]bool, len(faces))
	for _, f := range faces {
		drop[f] = true
	}
	c := d.Clone()
	kept := c.VertexIndices[:0]
	for i, f := range c.VertexIndices {
		if !drop[i] {
			kept = append(kept, f)
		}
	}
	c.VertexIndices = kept
	return c
}
