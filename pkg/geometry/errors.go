package geometry

import (
	"errors"
	"fmt"
)

// Error classes shared by every package of the kernel. Callers branch on
// them with errors.Is; producers wrap them with context using %w.
var (
	// ErrInputValidation covers malformed input records: out-of-range
	// vertex indices, faces with fewer than three vertices, a normal count
	// that does not match the vertex count.
	ErrInputValidation = errors.New("invalid input geometry")

	// ErrTopology covers connectivity that cannot be represented as a
	// manifold half-edge mesh, and triangle groups that do not close into a
	// single boundary cycle.
	ErrTopology = errors.New("inconsistent topology")

	// ErrDegenerateGeometry is returned only when a degeneracy cannot be
	// resolved to a defined zero result, e.g. a polygon that no ear test
	// accepts or the circumcenter of collinear points.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrToleranceViolation is returned by mutators that received a value
	// outside the configured tolerance. The receiver is left unchanged.
	ErrToleranceViolation = errors.New("tolerance violation")
)

// FaceError attaches the offending face index to an error class.
type FaceError struct {
	Face   int
	Reason string
	Err    error
}

func (e *FaceError) Error() string {
	return fmt.Sprintf("face %d: %s: %v", e.Face, e.Reason, e.Err)
}

func (e *FaceError) Unwrap() error {
	return e.Err
}

// faceErrorf builds a FaceError of class err.
func faceErrorf(err error, face int, format string, args ...any) error {
	return &FaceError{Face: face, Reason: fmt.Sprintf(format, args...), Err: err}
}

// NewFaceError returns a *FaceError of class err for face.
func NewFaceError(err error, face int, format string, args ...any) error {
	return faceErrorf(err, face, format, args...)
}
