package kernel

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/hemesh/pkg/geometry"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleAccess(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2, 2, 3, 0},
	}
	if got := m.TriangleCount(); got != 2 {
		t.Fatalf("TriangleCount() = %d, want 2", got)
	}
	if got := m.Triangle(1); got != [3]uint32{2, 3, 0} {
		t.Errorf("Triangle(1) = %v, want [2 3 0]", got)
	}
	if p := m.Position(2); p.X != 1 || p.Y != 1 || p.Z != 0 {
		t.Errorf("Position(2) = %v", p)
	}
	if m.IsEmpty() {
		t.Error("IsEmpty() = true for non-empty mesh")
	}
	if !(&Mesh{}).IsEmpty() {
		t.Error("IsEmpty() = false for empty mesh")
	}
}

func TestMeshValidate(t *testing.T) {
	valid := func() *Mesh {
		return &Mesh{
			Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
			Indices:  []uint32{0, 1, 2},
		}
	}
	tests := []struct {
		name   string
		mutate func(m *Mesh)
	}{
		{"ragged vertices", func(m *Mesh) { m.Vertices = m.Vertices[:8] }},
		{"normal count", func(m *Mesh) { m.Normals = m.Normals[:3] }},
		{"ragged indices", func(m *Mesh) { m.Indices = m.Indices[:2] }},
		{"index out of range", func(m *Mesh) { m.Indices[2] = 3 }},
		{"nan vertex", func(m *Mesh) { m.Vertices[4] = float32(math.NaN()) }},
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate() on valid mesh = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			if err := m.Validate(); !errors.Is(err, geometry.ErrInputValidation) {
				t.Errorf("Validate() = %v, want ErrInputValidation", err)
			}
		})
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) (Solid, error) {
	return &stubSolid{maxBB: [3]float64{x, y, z}}, nil
}

func (k *stubKernel) Sphere(r float64) (Solid, error) {
	return &stubSolid{minBB: [3]float64{-r, -r, -r}, maxBB: [3]float64{r, r, r}}, nil
}

func (k *stubKernel) Cylinder(height, radius float64) (Solid, error) {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -height / 2},
		maxBB: [3]float64{radius, radius, height / 2},
	}, nil
}

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, err := k.Box(10, 20, 30)
	if err != nil {
		t.Fatal(err)
	}
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Box min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{10, 20, 30} {
		t.Errorf("Box max = %v, want [10 20 30]", max)
	}
}
