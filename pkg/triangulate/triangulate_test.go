package triangulate

import (
	"math"
	"reflect"
	"testing"

	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/geometry"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xy(coords ...float64) []v3.Vec {
	pts := make([]v3.Vec, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		pts = append(pts, v3.Vec{X: coords[i], Y: coords[i+1]})
	}
	return pts
}

func scale(pts []v3.Vec, k float64) []v3.Vec {
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		out[i] = p.MulScalar(k)
	}
	return out
}

func triArea(p []v3.Vec, t Triangle) float64 {
	return p[t[1]].Sub(p[t[0]]).Cross(p[t[2]].Sub(p[t[0]])).Length() / 2
}

// checkCover asserts that tris is a proper triangulation of p: n-2
// triangles, each wound along the polygon normal, whose areas sum to the
// polygon area.
func checkCover(t *testing.T, p []v3.Vec, tris []Triangle) {
	t.Helper()
	require.Len(t, tris, len(p)-2)
	n := NewellNormal(p)
	var sum float64
	for i, tri := range tris {
		c := p[tri[1]].Sub(p[tri[0]]).Cross(p[tri[2]].Sub(p[tri[0]]))
		if c.Dot(n) < -1e-12 {
			t.Errorf("triangle %d %v winds against the polygon", i, tri)
		}
		sum += triArea(p, tri)
	}
	if want := n.Length() / 2; math.Abs(sum-want) > 1e-9*math.Max(1, want) {
		t.Errorf("triangle areas sum to %g, polygon area %g", sum, want)
	}
}

func TestTriangleAndQuads(t *testing.T) {
	tol := config.DefaultTolerance()
	tests := []struct {
		name string
		pts  []v3.Vec
		want []Triangle
	}{
		{"triangle", xy(0, 0, 1, 0, 0, 1), []Triangle{{0, 1, 2}}},
		{"square", xy(0, 0, 1, 0, 1, 1, 0, 1), []Triangle{{0, 1, 2}, {0, 2, 3}}},
		// Reflex corner at vertex 3 rules out the 0–2 diagonal.
		{"dart", xy(0, 0, 4, 2, 0, 4, 1, 2), []Triangle{{0, 1, 3}, {1, 2, 3}}},
		// Reflex corner at vertex 2 keeps 0–2.
		{"dart reflex at 2", xy(0, 0, 2, -2, 1, 0, 2, 2), []Triangle{{0, 1, 2}, {0, 2, 3}}},
		{"small dart", scale(xy(0, 0, 4, 2, 0, 4, 1, 2), 1e-4), []Triangle{{0, 1, 3}, {1, 2, 3}}},
		{"tiny dart", scale(xy(0, 0, 4, 2, 0, 4, 1, 2), 1e-7), []Triangle{{0, 1, 3}, {1, 2, 3}}},
		{"huge dart", scale(xy(0, 0, 4, 2, 0, 4, 1, 2), 1e6), []Triangle{{0, 1, 3}, {1, 2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Triangulate(tt.pts, tol)
			require.NoError(t, err)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Triangulate = %v, want %v", got, tt.want)
			}
			checkCover(t, tt.pts, got)
		})
	}
}

func TestNonPlanarQuadTakesShorterDiagonal(t *testing.T) {
	// A twisted quad: neither split has both triangles facing the normal.
	pts := []v3.Vec{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: 1}, {X: 3, Y: 1}}
	got, err := Triangulate(pts, config.DefaultTolerance())
	require.NoError(t, err)
	// Diagonal 1–3 has length 1, 0–2 has length 1: tie goes to 0–2.
	assert.Equal(t, []Triangle{{0, 1, 2}, {0, 2, 3}}, got)

	pts[2] = v3.Vec{X: 0, Y: 2}
	got, err = Triangulate(pts, config.DefaultTolerance())
	require.NoError(t, err)
	assert.Equal(t, []Triangle{{0, 1, 3}, {1, 2, 3}}, got)
}

func TestPolygons(t *testing.T) {
	tol := config.DefaultTolerance()
	star := make([]v3.Vec, 10)
	for i := range star {
		r := 1.0
		if i%2 == 1 {
			r = 0.4
		}
		a := 2 * math.Pi * float64(i) / 10
		star[i] = v3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	hex, err := geometry.RegularPolygon(6, 2)
	require.NoError(t, err)

	tests := []struct {
		name string
		pts  []v3.Vec
	}{
		{"convex hexagon", hex.Vertices},
		{"L shape", xy(0, 0, 2, 0, 2, 1, 1, 1, 1, 2, 0, 2)},
		{"L shape clockwise", xy(0, 2, 1, 2, 1, 1, 2, 1, 2, 0, 0, 0)},
		{"U shape", xy(0, 0, 3, 0, 3, 3, 2, 3, 2, 1, 1, 1, 1, 3, 0, 3)},
		{"collinear midpoints", xy(0, 0, 1, 0, 2, 0, 2, 1, 2, 2, 1, 2, 0, 2, 0, 1)},
		{"star", star},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Triangulate(tt.pts, tol)
			require.NoError(t, err)
			checkCover(t, tt.pts, got)
			assert.Equal(t, 0, got[0][0])
			assert.Equal(t, 1, got[0][1])
		})
	}
}

func TestScaledPolygonsAreClipped(t *testing.T) {
	u := xy(0, 0, 3, 0, 3, 3, 2, 3, 2, 1, 1, 1, 1, 3, 0, 3)
	for _, k := range []float64{1e-3, 1e-7, 1e5} {
		pts := scale(u, k)
		got, err := Triangulate(pts, config.DefaultTolerance())
		require.NoError(t, err, "scale %g", k)
		assert.NotEqual(t, Fan(len(pts)), got, "scale %g", k)
		checkCover(t, pts, got)
	}
}

func TestTiltedPolygon(t *testing.T) {
	d := &geometry.BasePolygonalGeometryData{
		Vertices:      xy(0, 0, 2, 0, 2, 1, 1, 1, 1, 2, 0, 2),
		VertexIndices: [][]int{{0, 1, 2, 3, 4, 5}},
	}
	require.NoError(t, d.Rotate(v3.Vec{X: 1, Y: 1, Z: 1}.Normalize(), 1.1, config.DefaultTolerance()))
	got, err := Triangulate(d.Vertices, config.DefaultTolerance())
	require.NoError(t, err)
	checkCover(t, d.Vertices, got)
}

func TestDeterministic(t *testing.T) {
	pts := xy(0, 0, 3, 0, 3, 3, 2, 3, 2, 1, 1, 1, 1, 3, 0, 3)
	first, err := Triangulate(pts, config.DefaultTolerance())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Triangulate(pts, config.DefaultTolerance())
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestCollapsedPolygonFans(t *testing.T) {
	pts := xy(0, 0, 1, 0, 2, 0, 3, 0, 4, 0)
	got, err := Triangulate(pts, config.DefaultTolerance())
	require.NoError(t, err)
	assert.Equal(t, Fan(5), got)
	assert.Equal(t, v3.Vec{}, NewellNormal(pts))
}

func TestTooFewPoints(t *testing.T) {
	_, err := Triangulate(xy(0, 0, 1, 0), config.DefaultTolerance())
	assert.ErrorIs(t, err, geometry.ErrInputValidation)
}

func TestProjectKeepsWinding(t *testing.T) {
	pts := []v3.Vec{{Z: 1}, {Y: 1, Z: 1}, {Y: 1, Z: 2}, {Z: 2}} // in the plane x=0
	n := NewellNormal(pts)
	require.Greater(t, n.X, 0.0)
	proj := Project(pts, n)
	assert.Greater(t, signedArea2(proj), 0.0)
	assert.InDelta(t, 2.0, signedArea2(proj), 1e-12)
	assert.Equal(t, 0.0, proj[0].X)
	assert.Equal(t, 0.0, proj[0].Y)
}

func TestCounterAndPredicates(t *testing.T) {
	var c Counter
	assert.Equal(t, []int{0}, c.Assign(1))
	assert.Equal(t, []int{1, 2}, c.Assign(2))
	assert.Equal(t, []int{3, 4, 5}, c.Assign(3))
	assert.Equal(t, 6, c.Total())

	assert.True(t, IsATriangle(Fan(3)))
	assert.True(t, IsAQuadrilateral(Fan(4)))
	assert.False(t, IsAQuadrilateral(Fan(5)))
}
