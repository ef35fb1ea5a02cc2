package halfedge

import (
	"strings"
	"testing"

	"github.com/chazu/hemesh/pkg/geometry"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func buildBox(t *testing.T) *ReferencedMeshGeometryData {
	t.Helper()
	m, err := Build(geometry.Box(1, 1, 1))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

// hasError reports whether errs holds a finding about entity whose message
// contains substr.
func hasError(errs []ValidationError, entity, substr string) bool {
	for _, e := range errs {
		if e.Entity == entity && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateBuiltMeshes(t *testing.T) {
	for _, d := range []*geometry.BasePolygonalGeometryData{
		geometry.Icosahedron(1),
		geometry.Icosahedron(1).WithoutFaces(0, 10),
		geometry.Box(2, 1, 1),
	} {
		m, err := Build(d)
		if err != nil {
			t.Fatalf("%s: Build: %v", d.Name, err)
		}
		r := Validate(m)
		if !r.OK() || len(r.Warnings) != 0 {
			t.Errorf("%s: errors %v warnings %v", d.Name, r.Errors, r.Warnings)
		}
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(m *ReferencedMeshGeometryData)
		entity  string
		substr  string
	}{
		{
			name: "broken opposite",
			corrupt: func(m *ReferencedMeshGeometryData) {
				m.HalfEdges.Slot(0).opposite = m.HalfEdges.At(5)
			},
			entity: "half-edge",
			substr: "opposite of opposite",
		},
		{
			name: "self opposite",
			corrupt: func(m *ReferencedMeshGeometryData) {
				m.HalfEdges.Slot(2).opposite = m.HalfEdges.At(2)
			},
			entity: "half-edge",
			substr: "its own opposite",
		},
		{
			name: "foreign next",
			corrupt: func(m *ReferencedMeshGeometryData) {
				other := buildBox(t)
				m.HalfEdges.Slot(1).next = other.HalfEdges.At(2)
			},
			entity: "half-edge",
			substr: "next",
		},
		{
			name: "wrong seed",
			corrupt: func(m *ReferencedMeshGeometryData) {
				m.Vertices.Slot(0).halfEdge = m.HalfEdges.At(1)
			},
			entity: "vertex",
			substr: "seed half-edge",
		},
		{
			name: "edge points elsewhere",
			corrupt: func(m *ReferencedMeshGeometryData) {
				m.Edges.Slot(0).halfEdge = m.Edges.At(1).MustGet().halfEdge
			},
			entity: "edge",
			substr: "canonical half-edge points at edge",
		},
		{
			name: "missing triangles",
			corrupt: func(m *ReferencedMeshGeometryData) {
				m.Faces.Slot(0).triangulation = nil
			},
			entity: "face",
			substr: "0 triangles for 4 vertices",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := buildBox(t)
			tt.corrupt(m)
			r := Validate(m)
			if !hasError(r.Errors, tt.entity, tt.substr) {
				t.Fatalf("want %s error containing %q, got %v", tt.entity, tt.substr, r.Errors)
			}
		})
	}
}

func TestValidateWarnsOnDegenerateGeometry(t *testing.T) {
	d := &geometry.BasePolygonalGeometryData{
		Vertices:      []v3.Vec{{}, {X: 1}, {X: 2}, {Y: 1}},
		VertexIndices: [][]int{{0, 1, 2}, {0, 3, 1}},
	}
	m, err := Build(d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r := Validate(m)
	if !r.OK() {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	if len(r.Warnings) != 1 || r.Warnings[0].Entity != "face" || r.Warnings[0].Index != 0 {
		t.Fatalf("warnings = %v, want one zero-area face 0", r.Warnings)
	}
}
