package engrave

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/abenics/pkg/gear"
	"github.com/chazu/abenics/pkg/kernel"
)

// fakeProfile and fakeSolid are inert handles for the fake kernel.
type fakeProfile struct{}

func (fakeProfile) Bounds() (min, max [2]float64) { return }

type fakeSolid struct{ id int }

func (*fakeSolid) BoundingBox() (min, max [3]float64) { return }

// fakeKernel records every operation so tests can verify call sequences
// and cumulative rotations without real geometry.
type fakeKernel struct {
	nextID int

	profiles    int
	rings       int
	revolves    int
	extrudes    int
	subtracts   int
	intersects  int
	deletes     int
	translates  int
	rotates     map[kernel.Axis]float64 // cumulative Rotate angle per axis
	rotateAbout map[kernel.Axis]float64 // cumulative RotateAbout angle per axis
	lastCenter  r3.Vec

	// failSubtractAt makes the Nth Subtract call fail (0-based); -1 never fails.
	failSubtractAt int
}

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		rotates:        make(map[kernel.Axis]float64),
		rotateAbout:    make(map[kernel.Axis]float64),
		failSubtractAt: -1,
	}
}

func (k *fakeKernel) solid() *fakeSolid {
	k.nextID++
	return &fakeSolid{id: k.nextID}
}

func (k *fakeKernel) ProfileFromPoints(points []r2.Vec) (kernel.Profile, error) {
	k.profiles++
	return fakeProfile{}, nil
}

func (k *fakeKernel) RingProfile(outer, bore []r2.Vec) (kernel.Profile, error) {
	k.rings++
	return fakeProfile{}, nil
}

func (k *fakeKernel) Revolve(p kernel.Profile) (kernel.Solid, error) {
	k.revolves++
	return k.solid(), nil
}

func (k *fakeKernel) Extrude(p kernel.Profile, height float64) (kernel.Solid, error) {
	k.extrudes++
	return k.solid(), nil
}

func (k *fakeKernel) Rotate(s kernel.Solid, axis kernel.Axis, angle float64) kernel.Solid {
	k.rotates[axis] += angle
	return k.solid()
}

func (k *fakeKernel) RotateAbout(s kernel.Solid, axis kernel.Axis, angle float64, center r3.Vec) kernel.Solid {
	k.rotateAbout[axis] += angle
	k.lastCenter = center
	return k.solid()
}

func (k *fakeKernel) Translate(s kernel.Solid, v r3.Vec) kernel.Solid {
	k.translates++
	return k.solid()
}

func (k *fakeKernel) Subtract(target, tool kernel.Solid) (kernel.Solid, error) {
	if k.subtracts == k.failSubtractAt {
		return nil, errors.New("subtract exploded")
	}
	k.subtracts++
	return k.solid(), nil
}

func (k *fakeKernel) Intersect(a, b kernel.Solid) (kernel.Solid, error) {
	k.intersects++
	return k.solid(), nil
}

func (k *fakeKernel) Delete(s kernel.Solid) { k.deletes++ }

func (k *fakeKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	return &kernel.Mesh{}, nil
}

func testParams(t *testing.T) *gear.ParameterSet {
	t.Helper()
	ps, err := gear.Derive(gear.Params{
		PressureAngle: 20 * math.Pi / 180,
		Module:        1.0,
		Backlash:      0.05,
		Thickness:     4.0,
		BoreDiameter:  4.0,
		TeethDrive:    20,
		GearRatio:     2.0,
		Steps:         12,
	})
	if err != nil {
		t.Fatal(err)
	}
	return ps
}

func TestStepperRun(t *testing.T) {
	ps := testParams(t)
	k := newFakeKernel()
	st := NewStepper(ps, k)

	if st.State() != StateInit {
		t.Fatalf("state = %s, want init", st.State())
	}

	res, err := st.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.State() != StateDone {
		t.Errorf("state = %s, want done", st.State())
	}
	if res.StepsDone != ps.Steps {
		t.Errorf("StepsDone = %d, want %d", res.StepsDone, ps.Steps)
	}
	if res.Ring == nil {
		t.Error("Ring is nil after a successful run")
	}

	// One subtraction per step, and the ring swept one full turn while
	// the cutter advanced 1/ratio as far, the opposite way.
	if k.subtracts != ps.Steps {
		t.Errorf("subtracts = %d, want %d", k.subtracts, ps.Steps)
	}
	if got := k.rotateAbout[kernel.AxisY]; math.Abs(got+2*math.Pi) > 1e-9 {
		t.Errorf("cumulative ring rotation = %v, want -2*pi", got)
	}
	if got := k.rotates[kernel.AxisY]; math.Abs(got-2*math.Pi/ps.GearRatio) > 1e-9 {
		t.Errorf("cumulative cutter rotation = %v, want 2*pi/ratio", got)
	}
	// The cutter is a body of revolution about Z; stepping it about Z
	// would leave the cut unchanged.
	if got := k.rotates[kernel.AxisZ]; got != 0 {
		t.Errorf("cutter stepped about Z by %v, want no Z rotation", got)
	}
	if k.lastCenter.X != ps.CenterDistance || k.lastCenter.Y != 0 || k.lastCenter.Z != 0 {
		t.Errorf("ring rotates about %+v, want (%v, 0, 0)", k.lastCenter, ps.CenterDistance)
	}

	// The cutter is released once the run completes.
	if k.deletes != 1 {
		t.Errorf("deletes = %d, want 1", k.deletes)
	}
}

func TestStepperBlankOrientation(t *testing.T) {
	ps := testParams(t)
	k := newFakeKernel()
	st := NewStepper(ps, k)

	if _, err := st.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The blank is tipped a quarter turn so its axis lands on Y, then
	// pushed out to the center distance.
	// Rotate accumulates the blank's pi/2 about X plus nothing else on X.
	if got := k.rotates[kernel.AxisX]; math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("cumulative X rotation = %v, want pi/2", got)
	}
	if k.translates != 1 {
		t.Errorf("translates = %d, want 1", k.translates)
	}
	if k.extrudes != 1 || k.revolves != 1 || k.rings != 1 {
		t.Errorf("init ops: extrudes=%d revolves=%d rings=%d, want 1 each", k.extrudes, k.revolves, k.rings)
	}
}

func TestStepperCancellation(t *testing.T) {
	ps := testParams(t)
	k := newFakeKernel()
	st := NewStepper(ps, k)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := st.Run(ctx)
	if err != nil {
		t.Fatalf("cancelled run returned error: %v", err)
	}
	if st.State() != StateCancelled {
		t.Errorf("state = %s, want cancelled", st.State())
	}
	if res.StepsDone != 0 {
		t.Errorf("StepsDone = %d, want 0", res.StepsDone)
	}
	if res.Ring == nil {
		t.Error("partial result must keep the ring")
	}
	if k.subtracts != 0 {
		t.Errorf("subtracts = %d, want 0 after immediate cancellation", k.subtracts)
	}
}

func TestStepperSubtractFailure(t *testing.T) {
	ps := testParams(t)
	k := newFakeKernel()
	k.failSubtractAt = 5
	st := NewStepper(ps, k)

	res, err := st.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StepError, got %T: %v", err, err)
	}
	if se.Step != 5 {
		t.Errorf("failing step = %d, want 5", se.Step)
	}
	if res == nil || res.StepsDone != 5 {
		t.Fatalf("partial result = %+v, want 5 completed steps", res)
	}
	if res.Ring == nil {
		t.Error("partial result must keep the ring")
	}
}

func TestStepperRunOnce(t *testing.T) {
	ps := testParams(t)
	st := NewStepper(ps, newFakeKernel())
	if _, err := st.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Run(context.Background()); err == nil {
		t.Fatal("expected error on second Run")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateInit, "init"},
		{StateCutting, "cutting"},
		{StateDone, "done"},
		{StateCancelled, "cancelled"},
		{State(42), "State(42)"},
	}
	for _, tc := range tests {
		if got := tc.s.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tc.s), got, tc.want)
		}
	}
}
