package geometry

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Axis3 names one coordinate axis of 3D space. It is deliberately not
// convertible to or from indices of other dimensionalities.
type Axis3 int

const (
	AxisX Axis3 = iota
	AxisY
	AxisZ
)

func (a Axis3) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis3(%d)", int(a))
	}
}

// Valid reports whether a is one of the three named axes.
func (a Axis3) Valid() bool {
	return a == AxisX || a == AxisY || a == AxisZ
}

// Unit returns the unit vector along a.
func (a Axis3) Unit() v3.Vec {
	switch a {
	case AxisX:
		return v3.Vec{X: 1}
	case AxisY:
		return v3.Vec{Y: 1}
	case AxisZ:
		return v3.Vec{Z: 1}
	}
	return v3.Vec{}
}

// Component returns the coordinate of v along a.
func (a Axis3) Component(v v3.Vec) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	}
	return 0
}

// ParseAxis3 converts "x", "y" or "z" to an Axis3.
func ParseAxis3(s string) (Axis3, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("%w: invalid axis %q, expected x, y, or z", ErrInputValidation, s)
}

// DominantAxis returns the axis along which v has the largest magnitude.
// Ties resolve toward X, then Y.
func DominantAxis(v v3.Vec) Axis3 {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case ax >= ay && ax >= az:
		return AxisX
	case ay >= az:
		return AxisY
	default:
		return AxisZ
	}
}
