// Package config holds the numeric tolerances and build options shared by
// the mesh builders and query utilities.
//
// Every operation that needs a tolerance accepts one explicitly through
// Options. Callers that do not care use the process-wide default, which can
// be read with Default and replaced with SetDefault.
package config

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// Default tolerance values.
const (
	DefaultLength                  = 1e-9
	DefaultArea                    = 1e-12
	DefaultNormal                  = 1e-12
	DefaultUnit                    = 1e-6
	DefaultWeld                    = 1e-6
	DefaultMaxTriangulationRetries = 3
)

// ErrInvalidTolerance is returned when a Tolerance carries a negative, NaN
// or otherwise unusable value.
var ErrInvalidTolerance = errors.New("config: invalid tolerance")

// Tolerance groups the thresholds used by geometric predicates.
type Tolerance struct {
	Length float64 `json:"length"` // positions closer than this are coincident
	Area   float64 `json:"area"`   // triangles below this area are degenerate
	Normal float64 `json:"normal"` // accumulated normals shorter than this are zero
	Unit   float64 `json:"unit"`   // allowed deviation of a unit vector's length from 1
	Weld   float64 `json:"weld"`   // vertex welding distance for unindexed soups

	// MaxTriangulationRetries bounds how many progressively looser ear
	// tests the polygon triangulator tries before giving up.
	MaxTriangulationRetries int `json:"max_triangulation_retries"`
}

// DefaultTolerance returns the built-in tolerance set.
func DefaultTolerance() Tolerance {
	return Tolerance{
		Length:                  DefaultLength,
		Area:                    DefaultArea,
		Normal:                  DefaultNormal,
		Unit:                    DefaultUnit,
		Weld:                    DefaultWeld,
		MaxTriangulationRetries: DefaultMaxTriangulationRetries,
	}
}

// Validate reports whether every field holds a usable value.
func (t Tolerance) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"length", t.Length},
		{"area", t.Area},
		{"normal", t.Normal},
		{"unit", t.Unit},
		{"weld", t.Weld},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidTolerance, f.name, f.v)
		}
	}
	if t.MaxTriangulationRetries < 1 {
		return fmt.Errorf("%w: max_triangulation_retries = %d, must be at least 1",
			ErrInvalidTolerance, t.MaxTriangulationRetries)
	}
	return nil
}

var (
	mu      sync.RWMutex
	current = DefaultTolerance()
)

// Default returns the process-wide tolerance.
func Default() Tolerance {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetDefault replaces the process-wide tolerance. An invalid tolerance is
// rejected and the previous value stays in place.
func SetDefault(t Tolerance) error {
	if err := t.Validate(); err != nil {
		return err
	}
	mu.Lock()
	current = t
	mu.Unlock()
	return nil
}

// ResetDefault restores the built-in process-wide tolerance.
func ResetDefault() {
	mu.Lock()
	current = DefaultTolerance()
	mu.Unlock()
}
