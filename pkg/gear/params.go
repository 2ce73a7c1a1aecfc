package gear

import (
	"fmt"
	"math"
)

// DefaultFlankSamples is the number of points sampled along one involute
// flank when Params.FlankSamples is zero. Fewer samples leave visible
// facets after the revolve, so this is also the enforced minimum.
const DefaultFlankSamples = 20

// Params is the raw caller-facing input. All lengths are millimeters,
// all angles radians. A Params value is inert until passed to Derive.
type Params struct {
	PressureAngle float64 // involute pressure angle, (0, pi/2)
	Module        float64 // tooth size scale, > 0
	Backlash      float64 // mating clearance, >= 0 and < Module
	Thickness     float64 // MP-Gear body thickness, > 0
	BoreDiameter  float64 // MP-Gear center hole, > 0
	TeethDrive    int     // SH/CS-Gear tooth count, >= 4
	GearRatio     float64 // drive teeth / driven teeth, > 0
	Steps         int     // engrave rotation steps, >= 4

	// FlankSamples is the per-flank sample count. Zero selects
	// DefaultFlankSamples; values below the default are rejected.
	FlankSamples int
}

// ParameterSet is a validated Params plus every derived constant the
// generators need. It is immutable after Derive returns it.
type ParameterSet struct {
	Params

	// Drive gear (SH/CS-Gear).
	PitchDiameterDrive float64
	BaseDiameterDrive  float64
	RootDiameterDrive  float64
	TipDiameterDrive   float64
	PitchAngleDrive    float64 // angular pitch, 2*pi/TeethDrive

	// Driven ring gear (MP-Gear).
	TeethDriven         int
	PitchDiameterDriven float64
	RootDiameterDriven  float64
	TipDiameterDriven   float64

	// CenterDistance places the ring center so the two pitch surfaces
	// share a single pitch point: a drive rotation of theta advances
	// the ring by theta/GearRatio.
	CenterDistance float64
}

// addendum and dedendum coefficients for the standard full-depth tooth.
const (
	addendumCoeff = 1.0
	dedendumCoeff = 1.25
)

// Derive validates p and computes all derived constants. This is the only
// validation point in the system; every invariant violation surfaces here
// as a ValidationError.
func Derive(p Params) (*ParameterSet, error) {
	if p.PressureAngle <= 0 || p.PressureAngle >= math.Pi/2 {
		return nil, ValidationError{
			Code:    "PRESSURE_ANGLE_RANGE",
			Field:   "PressureAngle",
			Message: fmt.Sprintf("pressure angle %.4f rad must be in (0, pi/2)", p.PressureAngle),
		}
	}
	if p.Module <= 0 {
		return nil, ValidationError{
			Code:    "MODULE_NOT_POSITIVE",
			Field:   "Module",
			Message: fmt.Sprintf("module %.4f must be positive", p.Module),
		}
	}
	if p.Backlash < 0 {
		return nil, ValidationError{
			Code:    "BACKLASH_NEGATIVE",
			Field:   "Backlash",
			Message: fmt.Sprintf("backlash %.4f must be non-negative", p.Backlash),
		}
	}
	if p.Backlash >= p.Module {
		return nil, ValidationError{
			Code:    "BACKLASH_TOO_LARGE",
			Field:   "Backlash",
			Message: fmt.Sprintf("backlash %.4f must be smaller than the module %.4f", p.Backlash, p.Module),
		}
	}
	if p.Thickness <= 0 {
		return nil, ValidationError{
			Code:    "THICKNESS_NOT_POSITIVE",
			Field:   "Thickness",
			Message: fmt.Sprintf("thickness %.4f must be positive", p.Thickness),
		}
	}
	if p.BoreDiameter <= 0 {
		return nil, ValidationError{
			Code:    "BORE_NOT_POSITIVE",
			Field:   "BoreDiameter",
			Message: fmt.Sprintf("bore diameter %.4f must be positive", p.BoreDiameter),
		}
	}
	if p.TeethDrive < 4 {
		return nil, ValidationError{
			Code:    "TEETH_TOO_FEW",
			Field:   "TeethDrive",
			Message: fmt.Sprintf("drive gear needs at least 4 teeth, got %d", p.TeethDrive),
		}
	}
	if p.GearRatio <= 0 {
		return nil, ValidationError{
			Code:    "GEAR_RATIO_NOT_POSITIVE",
			Field:   "GearRatio",
			Message: fmt.Sprintf("gear ratio %.4f must be positive", p.GearRatio),
		}
	}
	if p.Steps < 4 {
		return nil, ValidationError{
			Code:    "STEPS_TOO_FEW",
			Field:   "Steps",
			Message: fmt.Sprintf("engrave stepping needs at least 4 steps, got %d", p.Steps),
		}
	}
	if p.FlankSamples == 0 {
		p.FlankSamples = DefaultFlankSamples
	}
	if p.FlankSamples < DefaultFlankSamples {
		return nil, ValidationError{
			Code:    "FLANK_SAMPLES_TOO_FEW",
			Field:   "FlankSamples",
			Message: fmt.Sprintf("flank needs at least %d samples, got %d", DefaultFlankSamples, p.FlankSamples),
		}
	}

	// Driven tooth count is rounded to the nearest integer. The ratio is
	// then re-derived from the integer counts so the meshing constraint
	// holds exactly.
	teethDriven := int(math.Round(float64(p.TeethDrive) / p.GearRatio))
	if teethDriven < 4 {
		return nil, ValidationError{
			Code:    "DRIVEN_TEETH_TOO_FEW",
			Field:   "GearRatio",
			Message: fmt.Sprintf("driven gear resolves to %d teeth, need at least 4", teethDriven),
		}
	}
	ratio := float64(p.TeethDrive) / float64(teethDriven)
	p.GearRatio = ratio

	ps := &ParameterSet{Params: p}

	dedendum := dedendumCoeff * p.Module
	addendum := addendumCoeff * p.Module

	ps.PitchDiameterDrive = p.Module * float64(p.TeethDrive)
	ps.BaseDiameterDrive = ps.PitchDiameterDrive * math.Cos(p.PressureAngle)
	ps.RootDiameterDrive = ps.PitchDiameterDrive - 2*dedendum
	ps.TipDiameterDrive = ps.PitchDiameterDrive + 2*addendum
	ps.PitchAngleDrive = 2 * math.Pi / float64(p.TeethDrive)

	ps.TeethDriven = teethDriven
	ps.PitchDiameterDriven = ps.PitchDiameterDrive / ratio
	ps.RootDiameterDriven = ps.PitchDiameterDriven - 2*dedendum
	ps.TipDiameterDriven = ps.PitchDiameterDriven + 2*addendum

	ps.CenterDistance = 0.5 * (ps.PitchDiameterDrive + ps.PitchDiameterDriven)

	if ps.RootDiameterDrive <= 0 {
		return nil, ValidationError{
			Code:    "ROOT_DIAMETER_NOT_POSITIVE",
			Field:   "Module",
			Message: fmt.Sprintf("drive root diameter %.4f collapses below zero", ps.RootDiameterDrive),
		}
	}
	if p.BoreDiameter >= ps.RootDiameterDriven {
		return nil, ValidationError{
			Code:    "BORE_TOO_LARGE",
			Field:   "BoreDiameter",
			Message: fmt.Sprintf("bore diameter %.4f must be smaller than the driven root diameter %.4f",
				p.BoreDiameter, ps.RootDiameterDriven),
		}
	}

	return ps, nil
}
