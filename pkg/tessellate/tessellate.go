// Package tessellate triangulates the polygon soups of a scene and produces
// render meshes. One mesh is produced per polygon soup.
package tessellate

import (
	"fmt"

	"github.com/chazu/hemesh/pkg/buffer"
	"github.com/chazu/hemesh/pkg/config"
	"github.com/chazu/hemesh/pkg/convert"
	"github.com/chazu/hemesh/pkg/geometry"
	"github.com/chazu/hemesh/pkg/kernel"
	"go.uber.org/zap"
)

// Source supplies the polygon soups to tessellate, in output order.
type Source interface {
	Meshes() []*geometry.BasePolygonalGeometryData
}

// Tessellate builds the buffer form of every soup in src and narrows it to
// a render mesh. Soups without faces are skipped. The tessellator is
// read-only and never mutates the source.
func Tessellate(src Source, opts ...config.Option) ([]*kernel.Mesh, error) {
	if src == nil {
		return nil, nil
	}
	log := config.Resolve(opts...).Logger

	var meshes []*kernel.Mesh
	for i, m := range src.Meshes() {
		if m.FaceCount() == 0 {
			log.Debug("skipping mesh without faces", zap.String("mesh", m.Name))
			continue
		}
		buf, err := buffer.Build(m, opts...)
		if err != nil {
			return nil, fmt.Errorf("tessellate: mesh %q: %w", meshName(m, i), err)
		}
		rm := convert.ToRenderMesh(buf)
		rm.Name = meshName(m, i)
		meshes = append(meshes, rm)
	}
	log.Debug("tessellated scene", zap.Int("meshes", len(meshes)), zap.Int("triangles", TriangleCount(meshes)))
	return meshes, nil
}

// TriangleCount sums the triangles of meshes.
func TriangleCount(meshes []*kernel.Mesh) int {
	n := 0
	for _, m := range meshes {
		n += m.TriangleCount()
	}
	return n
}

// meshName prefers the soup's name and falls back to its position.
func meshName(m *geometry.BasePolygonalGeometryData, i int) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("mesh-%d", i)
}
