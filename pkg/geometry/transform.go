package geometry

import (
	"fmt"
	"math"

	"github.com/chazu/hemesh/pkg/config"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

func toMgl(v v3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) v3.Vec {
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// Translate moves every position by d. Normals are unaffected.
func (d *BasePolygonalGeometryData) Translate(delta v3.Vec) {
	for i := range d.Vertices {
		d.Vertices[i] = d.Vertices[i].Add(delta)
	}
}

// Transform applies the affine matrix m to positions and the inverse
// transpose of its linear part to normals. A singular matrix is rejected
// with ErrToleranceViolation and leaves d unchanged.
func (d *BasePolygonalGeometryData) Transform(m mgl64.Mat4, tol config.Tolerance) error {
	linear := m.Mat3()
	if math.Abs(linear.Det()) <= tol.Area {
		return fmt.Errorf("geometry: transform: %w: singular matrix (det %g)",
			ErrToleranceViolation, linear.Det())
	}
	normalMat := linear.Inv().Transpose()

	for i, p := range d.Vertices {
		d.Vertices[i] = fromMgl(mgl64.TransformCoordinate(toMgl(p), m))
	}
	for i, n := range d.VertexNormals {
		tn := normalMat.Mul3x1(toMgl(n))
		if l := tn.Len(); l > tol.Normal {
			tn = tn.Mul(1 / l)
		}
		d.VertexNormals[i] = fromMgl(tn)
	}
	return nil
}

// Rotate rotates positions and normals by angle radians about axis through
// the origin. axis must be unit length within tol.Unit; otherwise d is left
// unchanged and ErrToleranceViolation is returned.
func (d *BasePolygonalGeometryData) Rotate(axis v3.Vec, angle float64, tol config.Tolerance) error {
	if dev := math.Abs(axis.Length() - 1); dev > tol.Unit {
		return fmt.Errorf("geometry: rotate: %w: axis %v has length %g",
			ErrToleranceViolation, axis, axis.Length())
	}
	q := mgl64.QuatRotate(angle, toMgl(axis))
	for i, p := range d.Vertices {
		d.Vertices[i] = fromMgl(q.Rotate(toMgl(p)))
	}
	for i, n := range d.VertexNormals {
		d.VertexNormals[i] = fromMgl(q.Rotate(toMgl(n)))
	}
	return nil
}

// RotateAbout rotates d by angle radians about a coordinate axis.
func (d *BasePolygonalGeometryData) RotateAbout(a Axis3, angle float64) error {
	if !a.Valid() {
		return fmt.Errorf("geometry: rotate: %w: invalid axis %s", ErrInputValidation, a)
	}
	return d.Rotate(a.Unit(), angle, config.DefaultTolerance())
}

// Scale multiplies positions component-wise by s. Normals are transformed
// by the inverse scale and renormalized. A zero component is rejected with
// ErrToleranceViolation.
func (d *BasePolygonalGeometryData) Scale(s v3.Vec, tol config.Tolerance) error {
	return d.Transform(mgl64.Scale3D(s.X, s.Y, s.Z), tol)
}
