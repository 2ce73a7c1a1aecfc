// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"

	"github.com/chazu/abenics/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// sdfxProfile wraps an sdf.SDF2 to implement kernel.Profile.
type sdfxProfile struct {
	s sdf.SDF2
}

// Bounds returns the axis-aligned bounding box of the sketch region.
func (p *sdfxProfile) Bounds() (min, max [2]float64) {
	bb := p.s.BoundingBox()
	min = [2]float64{bb.Min.X, bb.Min.Y}
	max = [2]float64{bb.Max.X, bb.Max.Y}
	return min, max
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap2 extracts the underlying sdf.SDF2 from a kernel.Profile.
func unwrap2(p kernel.Profile) sdf.SDF2 {
	return p.(*sdfxProfile).s
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// toV2 converts a gonum r2 point loop into sdfx polygon vertices.
func toV2(points []r2.Vec) []v2.Vec {
	verts := make([]v2.Vec, len(points))
	for i, p := range points {
		verts[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	return verts
}

// ProfileFromPoints creates a closed polygon region from the point loop.
func (k *SdfxKernel) ProfileFromPoints(points []r2.Vec) (kernel.Profile, error) {
	if len(points) < 3 {
		return nil, &kernel.Error{Op: "profile", Err: errors.New("need at least 3 points")}
	}
	s, err := sdf.Polygon2D(toV2(points))
	if err != nil {
		return nil, &kernel.Error{Op: "profile", Err: err}
	}
	return &sdfxProfile{s: s}, nil
}

// RingProfile creates an annular region: the outer loop minus the bore loop.
func (k *SdfxKernel) RingProfile(outer, bore []r2.Vec) (kernel.Profile, error) {
	if len(outer) < 3 || len(bore) < 3 {
		return nil, &kernel.Error{Op: "ring profile", Err: errors.New("need at least 3 points per loop")}
	}
	so, err := sdf.Polygon2D(toV2(outer))
	if err != nil {
		return nil, &kernel.Error{Op: "ring profile", Err: fmt.Errorf("outer loop: %w", err)}
	}
	sb, err := sdf.Polygon2D(toV2(bore))
	if err != nil {
		return nil, &kernel.Error{Op: "ring profile", Err: fmt.Errorf("bore loop: %w", err)}
	}
	return &sdfxProfile{s: sdf.Difference2D(so, sb)}, nil
}

// Revolve sweeps the profile a full turn about the sketch Y axis.
func (k *SdfxKernel) Revolve(p kernel.Profile) (kernel.Solid, error) {
	s, err := sdf.Revolve3D(unwrap2(p))
	if err != nil {
		return nil, &kernel.Error{Op: "revolve", Err: err}
	}
	return wrap(s), nil
}

// Extrude sweeps the profile symmetrically along Z by height.
func (k *SdfxKernel) Extrude(p kernel.Profile, height float64) (kernel.Solid, error) {
	if height <= 0 {
		return nil, &kernel.Error{Op: "extrude", Err: fmt.Errorf("height %v must be positive", height)}
	}
	return wrap(sdf.Extrude3D(unwrap2(p), height)), nil
}

// rotation returns the rotation matrix for angle radians about axis.
func rotation(axis kernel.Axis, angle float64) sdf.M44 {
	switch axis {
	case kernel.AxisX:
		return sdf.RotateX(angle)
	case kernel.AxisY:
		return sdf.RotateY(angle)
	default:
		return sdf.RotateZ(angle)
	}
}

// Rotate rotates a solid by angle (radians) about an axis through the origin.
func (k *SdfxKernel) Rotate(s kernel.Solid, axis kernel.Axis, angle float64) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), rotation(axis, angle)))
}

// RotateAbout rotates a solid about an axis-parallel line through center.
func (k *SdfxKernel) RotateAbout(s kernel.Solid, axis kernel.Axis, angle float64, center r3.Vec) kernel.Solid {
	c := v3.Vec{X: center.X, Y: center.Y, Z: center.Z}
	m := sdf.Translate3d(c).Mul(rotation(axis, angle)).Mul(sdf.Translate3d(v3.Vec{X: -c.X, Y: -c.Y, Z: -c.Z}))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Translate moves a solid by v.
func (k *SdfxKernel) Translate(s kernel.Solid, v r3.Vec) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(v3.Vec{X: v.X, Y: v.Y, Z: v.Z})))
}

// Subtract returns target minus tool.
func (k *SdfxKernel) Subtract(target, tool kernel.Solid) (kernel.Solid, error) {
	return wrap(sdf.Difference3D(unwrap(target), unwrap(tool))), nil
}

// Intersect returns the common volume of a and b.
func (k *SdfxKernel) Intersect(a, b kernel.Solid) (kernel.Solid, error) {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b))), nil
}

// Delete releases a solid. Signed distance fields hold no kernel-side
// resources, so this is a no-op; the handle is reclaimed by the GC.
func (k *SdfxKernel) Delete(s kernel.Solid) {}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(defaultMeshCells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
