package halfedge

import (
	"fmt"

	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/triangulate"
)

// ValidationError describes a broken connectivity invariant.
type ValidationError struct {
	Entity  string // "vertex", "half-edge", "edge", "face" or "boundary cycle"
	Index   int
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.Index, e.Message)
}

// ValidationWarning describes a geometric degeneracy that does not break
// connectivity.
type ValidationWarning struct {
	Entity  string
	Index   int
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("%s %d: %s", w.Entity, w.Index, w.Message)
}

// ValidationResult bundles the findings of all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether no errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks a built mesh. Tier 1 verifies connectivity invariants and
// reports errors; tier 2 reports zero-area faces and zero-length edges as
// warnings. It never mutates m.
func Validate(m *ReferencedMeshGeometryData, opts ...config.Option) ValidationResult {
	tol := config.Resolve(opts...).Tolerance
	var r ValidationResult
	// Later checks walk Next and Opposite, so they need sound links.
	if r.Errors = validateHalfEdges(m); len(r.Errors) > 0 {
		return r
	}
	r.Errors = append(r.Errors, validateLoops(m)...)
	r.Errors = append(r.Errors, validateEdges(m)...)
	r.Errors = append(r.Errors, validateVertices(m)...)
	if len(r.Errors) == 0 {
		r.Warnings = append(r.Warnings, validateGeometry(m, tol)...)
	}
	return r
}

func herr(i int, format string, args ...any) ValidationError {
	return ValidationError{Entity: "half-edge", Index: i, Message: fmt.Sprintf(format, args...)}
}

// validateHalfEdges checks the per-half-edge links.
func validateHalfEdges(m *ReferencedMeshGeometryData) []ValidationError {
	var errs []ValidationError
	for h, he := range m.HalfEdges.All() {
		i := h.Index()
		if he.index != i {
			errs = append(errs, herr(i, "stored index %d", he.index))
		}
		opp, err := m.HalfEdges.Get(he.opposite)
		if err != nil {
			errs = append(errs, herr(i, "opposite: %v", err))
			continue
		}
		next, err := m.HalfEdges.Get(he.next)
		if err != nil {
			errs = append(errs, herr(i, "next: %v", err))
			continue
		}
		if _, err := m.Vertices.Get(he.tail); err != nil {
			errs = append(errs, herr(i, "tail: %v", err))
			continue
		}
		if he.opposite == h {
			errs = append(errs, herr(i, "is its own opposite"))
		}
		if opp.opposite != h {
			errs = append(errs, herr(i, "opposite of opposite is %v", opp.opposite))
		}
		if opp.tail != next.tail {
			errs = append(errs, herr(i, "opposite starts at %v, head is %v", opp.tail, next.tail))
		}
		if opp.edge != he.edge {
			errs = append(errs, herr(i, "edge %v differs from opposite's %v", he.edge, opp.edge))
		}
		if he.boundary && opp.boundary {
			errs = append(errs, herr(i, "boundary half-edge has a boundary opposite"))
		}
		if next.loop != he.loop {
			errs = append(errs, herr(i, "next belongs to loop %v, not %v", next.loop, he.loop))
		}
		want := m.Faces
		if he.boundary {
			want = m.BoundaryCycles
		}
		if he.loop.Owner() != want {
			errs = append(errs, herr(i, "loop handle is in the wrong arena"))
		}
	}
	return errs
}

// validateLoops checks that every face and boundary cycle closes and that
// together they cover every half-edge exactly once.
func validateLoops(m *ReferencedMeshGeometryData) []ValidationError {
	var errs []ValidationError
	seen := make([]bool, m.HalfEdges.Len())
	check := func(entity string, l LoopHandle, lp *Loop) {
		hs, err := m.FaceHalfEdges(l)
		if err != nil {
			errs = append(errs, ValidationError{Entity: entity, Index: l.Index(), Message: err.Error()})
			return
		}
		for _, h := range hs {
			if seen[h.Index()] {
				errs = append(errs, ValidationError{Entity: entity, Index: l.Index(),
					Message: fmt.Sprintf("half-edge %d already belongs to another loop", h.Index())})
			}
			seen[h.Index()] = true
			if h.MustGet().loop != l {
				errs = append(errs, ValidationError{Entity: entity, Index: l.Index(),
					Message: fmt.Sprintf("half-edge %d points at loop %v", h.Index(), h.MustGet().loop)})
			}
		}
		if lp.boundary {
			if len(lp.triangulation) != 0 {
				errs = append(errs, ValidationError{Entity: entity, Index: l.Index(), Message: "boundary cycle has triangles"})
			}
		} else if len(lp.triangulation) != len(hs)-2 {
			errs = append(errs, ValidationError{Entity: entity, Index: l.Index(),
				Message: fmt.Sprintf("%d triangles for %d vertices", len(lp.triangulation), len(hs))})
		}
	}
	for l, lp := range m.Faces.All() {
		if lp.boundary {
			errs = append(errs, ValidationError{Entity: "face", Index: l.Index(), Message: "flagged as boundary"})
		}
		check("face", l, lp)
	}
	for l, lp := range m.BoundaryCycles.All() {
		if !lp.boundary {
			errs = append(errs, ValidationError{Entity: "boundary cycle", Index: l.Index(), Message: "not flagged as boundary"})
		}
		check("boundary cycle", l, lp)
	}
	for i, ok := range seen {
		if !ok {
			errs = append(errs, herr(i, "belongs to no loop"))
		}
	}
	return errs
}

// validateEdges checks that each edge's canonical half-edge points back at
// it and lies in a face.
func validateEdges(m *ReferencedMeshGeometryData) []ValidationError {
	var errs []ValidationError
	for e, ed := range m.Edges.All() {
		he, err := m.HalfEdges.Get(ed.halfEdge)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{Entity: "edge", Index: e.Index(), Message: err.Error()})
		case he.edge != e:
			errs = append(errs, ValidationError{Entity: "edge", Index: e.Index(),
				Message: fmt.Sprintf("canonical half-edge points at edge %v", he.edge)})
		case he.boundary:
			errs = append(errs, ValidationError{Entity: "edge", Index: e.Index(), Message: "canonical half-edge is a boundary half-edge"})
		}
	}
	if want := m.HalfEdges.Len(); 2*m.Edges.Len() != want {
		errs = append(errs, ValidationError{Entity: "edge", Index: -1,
			Message: fmt.Sprintf("%d edges for %d half-edges", m.Edges.Len(), want)})
	}
	return errs
}

// validateVertices checks seeds and that each vertex's fan closes.
func validateVertices(m *ReferencedMeshGeometryData) []ValidationError {
	var errs []ValidationError
	for v, vx := range m.Vertices.All() {
		if vx.halfEdge.IsNil() {
			continue
		}
		he, err := m.HalfEdges.Get(vx.halfEdge)
		if err != nil {
			errs = append(errs, ValidationError{Entity: "vertex", Index: v.Index(), Message: err.Error()})
			continue
		}
		if he.tail != v {
			errs = append(errs, ValidationError{Entity: "vertex", Index: v.Index(),
				Message: fmt.Sprintf("seed half-edge %d starts at %v", vx.halfEdge.Index(), he.tail)})
			continue
		}
		if _, err := m.OutgoingHalfEdges(v); err != nil {
			errs = append(errs, ValidationError{Entity: "vertex", Index: v.Index(), Message: err.Error()})
		}
	}
	return errs
}

// validateGeometry warns about faces with no area and edges with no length.
func validateGeometry(m *ReferencedMeshGeometryData, tol config.Tolerance) []ValidationWarning {
	var warnings []ValidationWarning
	for l := range m.Faces.All() {
		pts, err := m.FacePositions(l)
		if err != nil {
			continue
		}
		if n := triangulate.NewellNormal(pts); n.Length()/2 <= tol.Area {
			warnings = append(warnings, ValidationWarning{Entity: "face", Index: l.Index(), Message: "zero area"})
		}
	}
	for e, ed := range m.Edges.All() {
		h := ed.halfEdge.MustGet()
		a := h.tail.MustGet().position
		b := h.next.MustGet().tail.MustGet().position
		if b.Sub(a).Length() <= tol.Length {
			warnings = append(warnings, ValidationWarning{Entity: "edge", Index: e.Index(), Message: "zero length"})
		}
	}
	return warnings
}
