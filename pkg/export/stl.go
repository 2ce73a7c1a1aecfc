// Package export writes kernel meshes to STL files.
package export

import (
	"errors"
	"fmt"

	"github.com/hschendel/stl"

	"github.com/chazu/abenics/pkg/kernel"
)

// WriteSTL writes the mesh to path as a binary STL solid.
func WriteSTL(path string, m *kernel.Mesh) error {
	if m == nil || m.IsEmpty() {
		return errors.New("export: empty mesh")
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("export: index count %d is not a multiple of 3", len(m.Indices))
	}

	solid := stl.Solid{
		Name:      m.Name,
		Triangles: make([]stl.Triangle, 0, m.TriangleCount()),
	}
	for t := 0; t < m.TriangleCount(); t++ {
		var tri stl.Triangle
		for j := 0; j < 3; j++ {
			idx := int(m.Indices[t*3+j])
			if idx*3+2 >= len(m.Vertices) {
				return fmt.Errorf("export: triangle %d references vertex %d out of range", t, idx)
			}
			tri.Vertices[j] = stl.Vec3{
				m.Vertices[idx*3],
				m.Vertices[idx*3+1],
				m.Vertices[idx*3+2],
			}
		}
		// Face normals are flat per vertex; use the first vertex's.
		n := int(m.Indices[t*3])
		if n*3+2 < len(m.Normals) {
			tri.Normal = stl.Vec3{m.Normals[n*3], m.Normals[n*3+1], m.Normals[n*3+2]}
		}
		solid.Triangles = append(solid.Triangles, tri)
	}

	return solid.WriteFile(path)
}
