package geometry

import (
	"math"
	"testing"

	"github.com/chazu/hemesh/pkg/config"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecNear(t *testing.T, want, got v3.Vec) {
	t.Helper()
	if got.Sub(want).Length() > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTranslate(t *testing.T) {
	d := Box(1, 1, 1)
	d.Translate(v3.Vec{X: 1, Y: -1, Z: 2})
	vecNear(t, v3.Vec{X: 1, Y: -1, Z: 2}, d.Vertices[0])
	vecNear(t, v3.Vec{X: 2, Y: 0, Z: 3}, d.Vertices[6])
}

func TestRotateAbout(t *testing.T) {
	d := Box(1, 1, 1)
	d.VertexNormals = make([]v3.Vec, d.VertexCount())
	for i := range d.VertexNormals {
		d.VertexNormals[i] = v3.Vec{X: 1}
	}
	require.NoError(t, d.RotateAbout(AxisZ, math.Pi/2))
	vecNear(t, v3.Vec{Y: 1}, d.Vertices[1])
	vecNear(t, v3.Vec{Y: 1}, d.VertexNormals[0])
}

func TestRotateRejectsNonUnitAxis(t *testing.T) {
	d := Box(1, 1, 1)
	before := d.Clone()
	err := d.Rotate(v3.Vec{Z: 2}, math.Pi/3, config.DefaultTolerance())
	assert.ErrorIs(t, err, ErrToleranceViolation)
	assert.Equal(t, before, d)
}

func TestScale(t *testing.T) {
	d := Box(1, 1, 1)
	d.VertexNormals = make([]v3.Vec, d.VertexCount())
	for i := range d.VertexNormals {
		d.VertexNormals[i] = v3.Vec{X: 1, Y: 1}.Normalize()
	}
	require.NoError(t, d.Scale(v3.Vec{X: 2, Y: 1, Z: 1}, config.DefaultTolerance()))
	vecNear(t, v3.Vec{X: 2, Y: 1, Z: 1}, d.Vertices[6])
	// Normals follow the inverse transpose and stay unit length.
	vecNear(t, v3.Vec{X: 0.5, Y: 1}.Normalize(), d.VertexNormals[0])
}

func TestTransformRejectsSingular(t *testing.T) {
	d := Icosahedron(1)
	before := d.Clone()
	err := d.Transform(mgl64.Scale3D(1, 0, 1), config.DefaultTolerance())
	assert.ErrorIs(t, err, ErrToleranceViolation)
	assert.Equal(t, before, d)
}

func TestTransformAffine(t *testing.T) {
	d := Box(1, 1, 1)
	m := mgl64.Translate3D(1, 2, 3).Mul4(mgl64.HomogRotate3DZ(math.Pi))
	require.NoError(t, d.Transform(m, config.DefaultTolerance()))
	vecNear(t, v3.Vec{X: 0, Y: 2, Z: 3}, d.Vertices[1])
}
