package tessellate_test

import (
	"errors"
	"testing"

	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/tessellate"
)

// soups is a Source backed by a slice.
type soups []*geometry.BasePolygonalGeometryData

func (s soups) Meshes() []*geometry.BasePolygonalGeometryData { return s }

func hexagon(t *testing.T) *geometry.BasePolygonalGeometryData {
	t.Helper()
	d, err := geometry.RegularPolygon(6, 1)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestNilSource(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil)
	if err != nil {
		t.Fatal(err)
	}
	if meshes != nil {
		t.Errorf("expected no meshes, got %d", len(meshes))
	}
}

func TestSingleBox(t *testing.T) {
	meshes, err := tessellate.Tessellate(soups{geometry.Box(1, 2, 3)})
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	m := meshes[0]
	if m.Name != "box" {
		t.Errorf("Name = %q, want box", m.Name)
	}
	if m.VertexCount() != 8 {
		t.Errorf("VertexCount = %d, want 8", m.VertexCount())
	}
	if m.TriangleCount() != 12 {
		t.Errorf("TriangleCount = %d, want 12", m.TriangleCount())
	}
	if len(m.Normals) != len(m.Vertices) {
		t.Errorf("normals length %d, want %d", len(m.Normals), len(m.Vertices))
	}
	if err := m.Validate(); err != nil {
		t.Errorf("render mesh invalid: %v", err)
	}
}

func TestOrderAndNames(t *testing.T) {
	unnamed := hexagon(t)
	unnamed.Name = ""
	empty := &geometry.BasePolygonalGeometryData{Name: "empty"}

	meshes, err := tessellate.Tessellate(soups{geometry.Icosahedron(1), empty, unnamed})
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if meshes[0].Name != "icosahedron" {
		t.Errorf("mesh 0 name = %q", meshes[0].Name)
	}
	if meshes[1].Name != "mesh-2" {
		t.Errorf("mesh 1 name = %q, want mesh-2", meshes[1].Name)
	}
	if got := tessellate.TriangleCount(meshes); got != 20+4 {
		t.Errorf("TriangleCount = %d, want 24", got)
	}
}

func TestDoesNotMutateSource(t *testing.T) {
	box := geometry.Box(1, 1, 1)
	before := box.Clone()
	if _, err := tessellate.Tessellate(soups{box}); err != nil {
		t.Fatal(err)
	}
	for i, f := range box.VertexIndices {
		for k, v := range f {
			if before.VertexIndices[i][k] != v {
				t.Fatalf("face %d changed: %v -> %v", i, before.VertexIndices[i], f)
			}
		}
	}
}

func TestInvalidSoup(t *testing.T) {
	bad := &geometry.BasePolygonalGeometryData{
		Name:          "bad",
		Vertices:      hexagon(t).Vertices,
		VertexIndices: [][]int{{0, 1, 9}},
	}
	_, err := tessellate.Tessellate(soups{bad})
	if !errors.Is(err, geometry.ErrInputValidation) {
		t.Fatalf("expected ErrInputValidation, got %v", err)
	}
}
