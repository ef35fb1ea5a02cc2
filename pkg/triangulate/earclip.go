package triangulate

import (
	"fmt"
	"slices"

	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/geometry"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Ear test levels, tried in order until one yields an ear.
const (
	levelStrict    = iota // convex ear, proper diagonal
	levelLoose            // collinear ears and touching diagonals accepted
	levelUnchecked        // any non-reflex corner, containment ignored
)

type earClipper struct {
	pts []v2.Vec
	eps float64
}

// earClip triangulates a counter-clockwise 2D polygon. At every step it
// clips the ear with the shortest closing diagonal.
func earClip(pts []v2.Vec, tol config.Tolerance) ([]Triangle, error) {
	e := earClipper{pts: pts, eps: tol.Area}
	if signedArea2(pts) < 0 {
		// Wound clockwise in the projection plane; mirror it.
		mirrored := make([]v2.Vec, len(pts))
		for i, p := range pts {
			mirrored[i] = v2.Vec{X: p.X, Y: -p.Y}
		}
		e.pts = mirrored
	}

	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}
	tris := make([]Triangle, 0, len(pts)-2)
	for len(idx) > 3 {
		k := -1
		for level := 0; level < tol.MaxTriangulationRetries && k < 0; level++ {
			k = e.bestEar(idx, level)
		}
		if k < 0 {
			return nil, fmt.Errorf("triangulate: %w: no ear among %d remaining vertices after %d passes",
				geometry.ErrDegenerateGeometry, len(idx), tol.MaxTriangulationRetries)
		}
		m := len(idx)
		k1 := (k + 1) % m
		tris = append(tris, Triangle{idx[k], idx[k1], idx[(k+2)%m]})
		idx = slices.Delete(idx, k1, k1+1)
	}
	return append(tris, Triangle{idx[0], idx[1], idx[2]}), nil
}

// bestEar returns the position k in idx such that corner idx[k+1] is an ear
// at the given level, choosing the shortest diagonal idx[k]–idx[k+2]. It
// returns -1 when there is none.
func (e *earClipper) bestEar(idx []int, level int) int {
	m := len(idx)
	best, bestLen := -1, 0.0
	for k := 0; k < m; k++ {
		a, b, c := idx[k], idx[(k+1)%m], idx[(k+2)%m]
		var ok bool
		switch level {
		case levelStrict:
			ok = e.left(a, b, c) && e.inCone(idx, k, (k+2)%m, false) && e.diagonalie(idx, k, (k+2)%m, false)
		case levelLoose:
			ok = e.leftOn(a, b, c) && e.inCone(idx, k, (k+2)%m, true) && e.diagonalie(idx, k, (k+2)%m, true)
		default:
			ok = e.leftOn(a, b, c)
		}
		if !ok {
			continue
		}
		d := e.pts[c].Sub(e.pts[a])
		if l := d.X*d.X + d.Y*d.Y; best < 0 || l < bestLen {
			best, bestLen = k, l
		}
	}
	return best
}

// inCone reports whether the diagonal from position i to position j lies
// inside the polygon's angle at i.
func (e *earClipper) inCone(idx []int, i, j int, loose bool) bool {
	m := len(idx)
	pi, pj := idx[i], idx[j]
	next, prev := idx[(i+1)%m], idx[(i+m-1)%m]
	if e.leftOn(prev, pi, next) {
		if loose {
			return e.leftOn(pi, pj, prev) && e.leftOn(pj, pi, next)
		}
		return e.left(pi, pj, prev) && e.left(pj, pi, next)
	}
	// reflex corner
	return !(e.leftOn(pi, pj, next) && e.leftOn(pj, pi, prev))
}

// diagonalie reports whether segment idx[i]–idx[j] crosses no polygon edge
// that is not incident to either end.
func (e *earClipper) diagonalie(idx []int, i, j int, loose bool) bool {
	m := len(idx)
	d0, d1 := idx[i], idx[j]
	for k := 0; k < m; k++ {
		k1 := (k + 1) % m
		if k == i || k1 == i || k == j || k1 == j {
			continue
		}
		p0, p1 := idx[k], idx[k1]
		if e.same(d0, p0) || e.same(d1, p0) || e.same(d0, p1) || e.same(d1, p1) {
			continue
		}
		if loose {
			if e.intersectProp(d0, d1, p0, p1) {
				return false
			}
		} else if e.intersect(d0, d1, p0, p1) {
			return false
		}
	}
	return true
}

func (e *earClipper) intersect(a, b, c, d int) bool {
	return e.intersectProp(a, b, c, d) ||
		e.between(a, b, c) || e.between(a, b, d) ||
		e.between(c, d, a) || e.between(c, d, b)
}

// intersectProp reports a proper crossing: the segments share a single
// interior point.
func (e *earClipper) intersectProp(a, b, c, d int) bool {
	if e.collinear(a, b, c) || e.collinear(a, b, d) || e.collinear(c, d, a) || e.collinear(c, d, b) {
		return false
	}
	return e.left(a, b, c) != e.left(a, b, d) && e.left(c, d, a) != e.left(c, d, b)
}

// between reports whether c lies on the closed segment ab.
func (e *earClipper) between(a, b, c int) bool {
	if !e.collinear(a, b, c) {
		return false
	}
	pa, pb, pc := e.pts[a], e.pts[b], e.pts[c]
	ab := pb.Sub(pa)
	return dot2(pc.Sub(pa), ab) >= 0 && dot2(pc.Sub(pb), ab) <= 0
}

func (e *earClipper) same(a, b int) bool {
	return e.pts[a] == e.pts[b]
}

func (e *earClipper) area2(a, b, c int) float64 {
	return cross2(e.pts[b].Sub(e.pts[a]), e.pts[c].Sub(e.pts[a]))
}

func (e *earClipper) left(a, b, c int) bool      { return e.area2(a, b, c) > e.eps }
func (e *earClipper) leftOn(a, b, c int) bool    { return e.area2(a, b, c) >= -e.eps }
func (e *earClipper) collinear(a, b, c int) bool { return !e.left(a, b, c) && e.leftOn(a, b, c) }

func cross2(a, b v2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

func dot2(a, b v2.Vec) float64 {
	return a.X*b.X + a.Y*b.Y
}

// signedArea2 returns twice the signed area of a 2D polygon, positive when
// it winds counter-clockwise.
func signedArea2(pts []v2.Vec) float64 {
	var s float64
	for i, a := range pts {
		s += cross2(a, pts[(i+1)%len(pts)])
	}
	return s
}
