package engrave

import (
	"context"
	"math"

	"github.com/chazu/abenics/pkg/gear"
	"github.com/chazu/abenics/pkg/kernel"
)

// Output bundles the finished gear pair. When a run is cancelled, Drive
// is nil and StepsDone reports how many cuts completed.
type Output struct {
	Drive     kernel.Solid
	Ring      kernel.Solid
	StepsDone int
	Cancelled bool
}

// buildDriveGearFrom turns a precomputed half-gear profile into the
// finished CS-Gear: the revolved blank intersected with a copy revolved
// about the orthogonal axis, which carves the crossing tooth grooves.
func buildDriveGearFrom(kern kernel.Kernel, points gear.Profile) (kernel.Solid, error) {
	profile, err := kern.ProfileFromPoints(points)
	if err != nil {
		return nil, err
	}
	ball, err := kern.Revolve(profile)
	if err != nil {
		return nil, err
	}
	cross, err := kern.Revolve(profile)
	if err != nil {
		return nil, err
	}
	// The quarter turn is about the working axis Y, so the second
	// groove family circles X while the first circles Z.
	cross = kern.Rotate(cross, kernel.AxisY, math.Pi/2)
	return kern.Intersect(ball, cross)
}

// BuildDriveGear generates the finished CS drive gear solid.
func BuildDriveGear(kern kernel.Kernel, ps *gear.ParameterSet) (kernel.Solid, error) {
	points, err := gear.HalfGearProfile(ps, gear.VariantDrive)
	if err != nil {
		return nil, err
	}
	return buildDriveGearFrom(kern, points)
}

// profileResult carries a concurrently computed profile.
type profileResult struct {
	points gear.Profile
	err    error
}

// Generate produces both gears of the pair. The drive-gear profile is
// pure math and is computed concurrently with the engrave run; all
// kernel calls stay on this goroutine, since the kernel is a
// single-threaded resource.
func Generate(ctx context.Context, kern kernel.Kernel, ps *gear.ParameterSet) (*Output, error) {
	driveCh := make(chan profileResult, 1)
	go func() {
		points, err := gear.HalfGearProfile(ps, gear.VariantDrive)
		driveCh <- profileResult{points: points, err: err}
	}()

	stepper := NewStepper(ps, kern)
	res, err := stepper.Run(ctx)
	if err != nil {
		return nil, err
	}
	if stepper.State() == StateCancelled {
		return &Output{Ring: res.Ring, StepsDone: res.StepsDone, Cancelled: true}, nil
	}

	drive := <-driveCh
	if drive.err != nil {
		return nil, drive.err
	}
	driveSolid, err := buildDriveGearFrom(kern, drive.points)
	if err != nil {
		return nil, err
	}

	return &Output{Drive: driveSolid, Ring: res.Ring, StepsDone: res.StepsDone}, nil
}
