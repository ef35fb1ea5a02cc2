package engine

import (
	"errors"
	"fmt"

	"github.com/chazu/hemesh/pkg/geometry"
)

// ErrDuplicateMesh is returned when a script defines two meshes with the
// same name.
var ErrDuplicateMesh = errors.New("engine: duplicate mesh name")

// ErrUnknownMesh is returned when a script refers to a mesh that was never
// defined.
var ErrUnknownMesh = errors.New("engine: unknown mesh")

// Scene is the output of an evaluation: the named polygon soups a script
// defined, in definition order.
type Scene struct {
	meshes []*geometry.BasePolygonalGeometryData
	byName map[string]int
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{byName: make(map[string]int)}
}

// Add appends m under m.Name.
func (s *Scene) Add(m *geometry.BasePolygonalGeometryData) error {
	if m.Name == "" {
		return fmt.Errorf("engine: %w: mesh has no name", geometry.ErrInputValidation)
	}
	if _, ok := s.byName[m.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateMesh, m.Name)
	}
	s.byName[m.Name] = len(s.meshes)
	s.meshes = append(s.meshes, m)
	return nil
}

// replace swaps the mesh stored under name for m, keeping its position.
func (s *Scene) replace(name string, m *geometry.BasePolygonalGeometryData) error {
	i, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMesh, name)
	}
	m.Name = name
	s.meshes[i] = m
	return nil
}

// Lookup returns the mesh named name, or nil.
func (s *Scene) Lookup(name string) *geometry.BasePolygonalGeometryData {
	if i, ok := s.byName[name]; ok {
		return s.meshes[i]
	}
	return nil
}

// Len returns the number of meshes.
func (s *Scene) Len() int { return len(s.meshes) }

// Meshes returns the meshes in definition order. The slice is a copy; the
// records are shared.
func (s *Scene) Meshes() []*geometry.BasePolygonalGeometryData {
	return append([]*geometry.BasePolygonalGeometryData(nil), s.meshes...)
}

// Names returns the mesh names in definition order.
func (s *Scene) Names() []string {
	names := make([]string, len(s.meshes))
	for i, m := range s.meshes {
		names[i] = m.Name
	}
	return names
}

// Lint reports suspicious but buildable meshes: meshes without faces and
// vertices no face references.
func (s *Scene) Lint() []EvalWarning {
	var warnings []EvalWarning
	for _, m := range s.meshes {
		if m.FaceCount() == 0 {
			warnings = append(warnings, EvalWarning{Mesh: m.Name, Message: "mesh has no faces"})
			continue
		}
		used := make([]bool, m.VertexCount())
		for _, f := range m.VertexIndices {
			for _, v := range f {
				if v >= 0 && v < len(used) {
					used[v] = true
				}
			}
		}
		unused := 0
		for _, u := range used {
			if !u {
				unused++
			}
		}
		if unused > 0 {
			warnings = append(warnings, EvalWarning{
				Mesh:    m.Name,
				Message: fmt.Sprintf("%d vertices are not referenced by any face", unused),
			})
		}
	}
	return warnings
}
