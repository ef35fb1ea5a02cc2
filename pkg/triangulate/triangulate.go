// Package triangulate splits a single planar-ish polygon into triangles.
//
// Triangles are returned as triples of local vertex indices (positions in
// the input slice), wound the same way as the polygon. For polygons of four
// or more vertices the first triangle always starts with the polygon edge
// 0→1, so the polygon's first corner can be recovered from its
// triangulation.
package triangulate

import (
	"fmt"
	"math"

	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/geometry"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle holds three local vertex indices.
type Triangle [3]int

// Triangulate returns len(points)-2 triangles covering the polygon.
//
// Triangles and quads are split directly. Larger polygons are projected
// onto the plane of their Newell normal and ear clipped, loosening the ear
// test up to tol.MaxTriangulationRetries times before failing with
// geometry.ErrDegenerateGeometry. A polygon whose area vanishes in every
// plane is fanned from vertex 0.
func Triangulate(points []v3.Vec, tol config.Tolerance) ([]Triangle, error) {
	n := len(points)
	switch {
	case n < 3:
		return nil, fmt.Errorf("triangulate: %w: polygon has %d vertices", geometry.ErrInputValidation, n)
	case n == 3:
		return []Triangle{{0, 1, 2}}, nil
	case n == 4:
		return canonical(quad(points, tol)), nil
	}

	scaled := relative(points, tol)
	normal := NewellNormal(points)
	if normal.Length() < scaled.Normal {
		normal = v3.Vec{}
	}
	poly := Project(points, normal)
	if math.Abs(signedArea2(poly)) <= scaled.Area {
		return Fan(n), nil
	}
	tris, err := earClip(poly, scaled)
	if err != nil {
		return nil, err
	}
	return canonical(tris), nil
}

// relative returns tol with its area-like thresholds scaled by the squared
// diagonal of the points' bounding box, so that the same polygon splits the
// same way at any size.
func relative(points []v3.Vec, tol config.Tolerance) config.Tolerance {
	d2 := geometry.BoundingBox(points).Size().Length2()
	tol.Area *= d2
	tol.Normal *= d2
	return tol
}

// Fan returns the fan triangulation (0,i,i+1) of an n-gon.
func Fan(n int) []Triangle {
	if n < 3 {
		return nil
	}
	tris := make([]Triangle, 0, n-2)
	for i := 1; i < n-1; i++ {
		tris = append(tris, Triangle{0, i, i + 1})
	}
	return tris
}

// quad splits a quadrilateral along the diagonal whose two triangles both
// face along the polygon normal, preferring 0–2. A bow-tie where neither
// split qualifies takes the shorter diagonal, 0–2 on ties.
func quad(p []v3.Vec, tol config.Tolerance) []Triangle {
	tol = relative(p, tol)
	n := NewellNormal(p)
	if n.Length() < tol.Normal {
		n = v3.Vec{}
	} else {
		n = n.Normalize()
	}
	facing := func(a, b, c int) bool {
		return p[b].Sub(p[a]).Cross(p[c].Sub(p[a])).Dot(n) > tol.Area
	}
	splitA := []Triangle{{0, 1, 2}, {0, 2, 3}}
	splitB := []Triangle{{1, 2, 3}, {1, 3, 0}}
	switch {
	case facing(0, 1, 2) && facing(0, 2, 3):
		return splitA
	case facing(1, 2, 3) && facing(1, 3, 0):
		return splitB
	case p[2].Sub(p[0]).Length2() <= p[3].Sub(p[1]).Length2():
		return splitA
	default:
		return splitB
	}
}

// canonical moves the triangle holding polygon edge 0→1 to the front and
// rotates it to (0,1,x).
func canonical(tris []Triangle) []Triangle {
	for k, t := range tris {
		for r := 0; r < 3; r++ {
			if t[r] == 0 && t[(r+1)%3] == 1 {
				copy(tris[1:k+1], tris[:k])
				tris[0] = Triangle{0, 1, t[(r+2)%3]}
				return tris
			}
		}
	}
	return tris
}

// NewellNormal returns the Newell normal of a polygon. Its length is twice
// the polygon's vector area, so it is not normalized.
func NewellNormal(points []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, a := range points {
		b := points[(i+1)%len(points)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// Project maps points into 2D coordinates on the plane through points[0]
// perpendicular to normal. The basis (u, w) satisfies u×w = normal, so a
// polygon wound counter-clockwise about normal stays counter-clockwise. A
// zero normal falls back to the coordinate plane across which the points'
// bounding box is thinnest.
func Project(points []v3.Vec, normal v3.Vec) []v2.Vec {
	if len(points) == 0 {
		return nil
	}
	if normal.Length2() == 0 {
		bb := geometry.BoundingBox(points)
		ext := bb.Max.Sub(bb.Min)
		normal = thinnestAxis(ext).Unit()
	}
	nn := normal.Normalize()
	helper := v3.Vec{X: 1}
	if math.Abs(nn.X) > 0.9 {
		helper = v3.Vec{Y: 1}
	}
	u := helper.Cross(nn).Normalize()
	w := nn.Cross(u)

	origin := points[0]
	out := make([]v2.Vec, len(points))
	for i, p := range points {
		d := p.Sub(origin)
		out[i] = v2.Vec{X: d.Dot(u), Y: d.Dot(w)}
	}
	return out
}

func thinnestAxis(ext v3.Vec) geometry.Axis3 {
	switch {
	case ext.X <= ext.Y && ext.X <= ext.Z:
		return geometry.AxisX
	case ext.Y <= ext.Z:
		return geometry.AxisY
	default:
		return geometry.AxisZ
	}
}

// IsATriangle reports whether tris is the triangulation of a triangle.
func IsATriangle(tris []Triangle) bool {
	return len(tris) == 1
}

// IsAQuadrilateral reports whether tris is the triangulation of a quad.
func IsAQuadrilateral(tris []Triangle) bool {
	return len(tris) == 2
}

// Counter hands out consecutive global triangle ids across the faces of a
// mesh.
type Counter struct {
	next int
}

// Assign reserves n ids and returns them in order.
func (c *Counter) Assign(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = c.next + i
	}
	c.next += n
	return ids
}

// Total returns the number of ids handed out so far.
func (c *Counter) Total() int {
	return c.next
}
