// Package engrave carves the MP-Gear ring by rotating a drive-gear
// shaped cutter against it in discrete steps, approximating the
// continuous spherical meshing cut with a finite number of boolean
// subtractions.
package engrave

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/abenics/pkg/gear"
	"github.com/chazu/abenics/pkg/kernel"
)

// State is the stepper lifecycle state.
type State int

const (
	StateInit State = iota
	StateCutting
	StateDone
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateCutting:
		return "cutting"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// StepError reports a kernel failure during a cutting step. The step
// index identifies the first failing rotation; the operation is
// deterministic, so it is never retried automatically.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("engrave: step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Result is the outcome of a stepper run. After a kernel failure or a
// cancellation, Ring holds the partial solid from the completed steps so
// the caller can inspect or resume; it is never silently discarded.
type Result struct {
	Ring      kernel.Solid
	StepsDone int
}

// Stepper drives the engrave sequence: Init builds the cutter and ring
// blank, then each cutting step rotates both gears in lock-step and
// subtracts the cutter from the ring. Steps are strictly sequential;
// each subtraction depends on the ring surviving the previous one.
type Stepper struct {
	ps   *gear.ParameterSet
	kern kernel.Kernel

	state  State
	step   int
	cutter kernel.Solid
	ring   kernel.Solid
}

// NewStepper returns a stepper in the Init state. The kernel is used
// exclusively by this stepper until Run returns.
func NewStepper(ps *gear.ParameterSet, kern kernel.Kernel) *Stepper {
	return &Stepper{ps: ps, kern: kern}
}

// State returns the current lifecycle state.
func (st *Stepper) State() State { return st.state }

// StepIndex returns the index of the cutting step most recently entered.
func (st *Stepper) StepIndex() int { return st.step }

// ringCenter is the MP-Gear center: offset along X so the pitch surfaces
// of the two gears touch at a single shared pitch point.
func (st *Stepper) ringCenter() r3.Vec {
	return r3.Vec{X: st.ps.CenterDistance}
}

// init builds the cutter solid (cutter-variant half gear revolved about
// Z; the revolved body is rotationally symmetric about Z, so its spur
// working axis is Y) and the ring blank (extruded annulus re-oriented so
// its axis is Y, parallel to the cutter's working axis).
func (st *Stepper) init() error {
	cutterPts, err := gear.HalfGearProfile(st.ps, gear.VariantCutter)
	if err != nil {
		return err
	}
	ringPts, err := gear.Ring(st.ps, 0)
	if err != nil {
		return err
	}

	cutterProfile, err := st.kern.ProfileFromPoints(cutterPts)
	if err != nil {
		return err
	}
	cutter, err := st.kern.Revolve(cutterProfile)
	if err != nil {
		return err
	}

	ringProfile, err := st.kern.RingProfile(ringPts.Outer, ringPts.Bore)
	if err != nil {
		return err
	}
	blank, err := st.kern.Extrude(ringProfile, st.ps.Thickness)
	if err != nil {
		return err
	}
	blank = st.kern.Rotate(blank, kernel.AxisX, math.Pi/2)
	blank = st.kern.Translate(blank, st.ringCenter())

	st.cutter = cutter
	st.ring = blank
	return nil
}

// Run executes the full engrave sequence. Cancellation is checked at the
// top of every cutting step; a cancelled run returns the partial result
// with a nil error and leaves the stepper in the Cancelled state.
func (st *Stepper) Run(ctx context.Context) (*Result, error) {
	if st.state != StateInit {
		return nil, fmt.Errorf("engrave: stepper already run (state %s)", st.state)
	}
	if err := st.init(); err != nil {
		return nil, err
	}

	steps := st.ps.Steps
	ringStep := 2 * math.Pi / float64(steps)
	cutterStep := ringStep / st.ps.GearRatio
	center := st.ringCenter()

	st.state = StateCutting
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			st.state = StateCancelled
			return &Result{Ring: st.ring, StepsDone: i}, nil
		default:
		}
		st.step = i

		carved, err := st.kern.Subtract(st.ring, st.cutter)
		if err != nil {
			return &Result{Ring: st.ring, StepsDone: i}, &StepError{Step: i, Err: err}
		}
		st.ring = carved

		// Advance both gears in lock-step about their parallel working
		// axes, opposite senses as an external pair. The ring sweeps a
		// full turn over the run so every pocket of its rim is carved;
		// the cutter advances 1/gearRatio as fast. Rotating the cutter
		// about its revolve axis Z would be a no-op.
		st.cutter = st.kern.Rotate(st.cutter, kernel.AxisY, cutterStep)
		st.ring = st.kern.RotateAbout(st.ring, kernel.AxisY, -ringStep, center)
	}

	st.state = StateDone
	st.kern.Delete(st.cutter)
	st.cutter = nil
	return &Result{Ring: st.ring, StepsDone: steps}, nil
}
