// Package kernel defines the abstract geometry kernel interface the gear
// generators drive. Implementations (sdfx, manifold) provide profile,
// sweep, and boolean operations behind this interface, so the
// deterministic gear math stays independently testable with a mock.
//
// The kernel is treated as a synchronous, single-threaded resource: at
// most one mutation is in flight at a time, and callers must not issue
// concurrent calls against the same handle.
package kernel

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Axis identifies a principal rotation axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Profile is an opaque handle to a closed 2D sketch region.
// Implementations wrap their internal representation.
type Profile interface {
	// Bounds returns the axis-aligned bounding box of the region.
	Bounds() (min, max [2]float64)
}

// Solid is an opaque handle to a geometry kernel solid. Solids are owned
// by the kernel; the core never mutates them directly, only requests
// operations that return new handles.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the capability set the gear generator consumes.
type Kernel interface {
	// ProfileFromPoints creates a closed sketch region from an ordered,
	// non-self-intersecting point loop (implicit closing edge).
	ProfileFromPoints(points []r2.Vec) (Profile, error)

	// RingProfile creates an annular sketch region from an outer loop
	// with a hole loop.
	RingProfile(outer, bore []r2.Vec) (Profile, error)

	// Revolve sweeps the profile a full turn about the Y axis of the
	// sketch plane; the profile must lie in the +X half plane.
	Revolve(p Profile) (Solid, error)

	// Extrude sweeps the profile symmetrically along Z by height.
	Extrude(p Profile, height float64) (Solid, error)

	// Rotate returns s rotated by angle (radians) about the given axis
	// through the origin.
	Rotate(s Solid, axis Axis, angle float64) Solid

	// RotateAbout rotates s about an axis-parallel line through center.
	RotateAbout(s Solid, axis Axis, angle float64, center r3.Vec) Solid

	// Translate moves s by v.
	Translate(s Solid, v r3.Vec) Solid

	// Subtract removes the tool volume from the target.
	Subtract(target, tool Solid) (Solid, error)

	// Intersect returns the common volume of a and b.
	Intersect(a, b Solid) (Solid, error)

	// Delete releases a solid the caller no longer needs.
	Delete(s Solid)

	// ToMesh converts a solid to a triangle mesh.
	ToMesh(s Solid) (*Mesh, error)
}
