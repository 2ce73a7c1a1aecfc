package gear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Variant selects which gear a curve or profile is generated for.
type Variant int

const (
	// VariantDrive is the SH/CS drive gear; the backlash allowance
	// narrows its tooth thickness.
	VariantDrive Variant = iota
	// VariantCutter is the engraving cutter; its tooth is widened by the
	// same allowance so the carved ring gains the clearance.
	VariantCutter
)

func (v Variant) String() string {
	switch v {
	case VariantDrive:
		return "drive"
	case VariantCutter:
		return "cutter"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ToothCurve is one flank of a tooth, ordered base to tip. Curves are
// value slices regenerated from the ParameterSet on every call; they are
// never cached across parameter edits.
type ToothCurve []r2.Vec

// SphereCurve is a flank mapped onto the drive gear's tip sphere,
// ordered base to tip.
type SphereCurve []r3.Vec

// involutePoint returns the point of the involute of the circle with
// radius baseRadius at distance r from the center, r >= baseRadius.
// The involute is anchored so it leaves the base circle on the +X axis.
func involutePoint(baseRadius, r float64) r2.Vec {
	side := math.Sqrt(r*r - baseRadius*baseRadius)
	alpha := side / baseRadius
	theta := alpha - math.Acos(baseRadius/r)
	return r2.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// rotate2 rotates p about the origin by angle.
func rotate2(p r2.Vec, angle float64) r2.Vec {
	c, s := math.Cos(angle), math.Sin(angle)
	return r2.Vec{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// mirror2 reflects p about the X axis.
func mirror2(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X, Y: -p.Y}
}

// backlashAngle is the angular allowance at the pitch circle for the
// configured linear backlash, split over the four flank contacts of a
// mating pair.
func backlashAngle(ps *ParameterSet) float64 {
	return 0.25 * ps.Backlash / (0.5 * ps.PitchDiameterDrive)
}

// flankRotation returns the rotation that puts the tooth centerline on
// the +X axis, with the flank on the negative-angle side. The drive
// variant rotates the flank toward the centerline (thinner tooth), the
// cutter variant away from it (wider tooth).
func flankRotation(ps *ParameterSet, v Variant) float64 {
	pitchPoint := involutePoint(0.5*ps.BaseDiameterDrive, 0.5*ps.PitchDiameterDrive)
	pitchPointAngle := math.Atan2(pitchPoint.Y, pitchPoint.X)
	halfTooth := 0.5 * math.Pi / float64(ps.TeethDrive)

	ba := backlashAngle(ps)
	if v == VariantCutter {
		ba = -ba
	}
	return -(halfTooth + pitchPointAngle - ba)
}

// Flank generates one involute flank of the drive gear in the tooth
// centerline frame. Points run from the base circle (or the root circle,
// when the root lies outside the base) out to the tip circle, with
// strictly increasing radius.
func Flank(ps *ParameterSet, v Variant) (ToothCurve, error) {
	rb := 0.5 * ps.BaseDiameterDrive
	rt := 0.5 * ps.TipDiameterDrive
	r0 := math.Max(rb, 0.5*ps.RootDiameterDrive)
	if rt <= r0 {
		return nil, DegenerateError{
			What:   "flank",
			Reason: fmt.Sprintf("tip radius %.4f does not clear the flank start radius %.4f", rt, r0),
		}
	}

	n := ps.FlankSamples
	rot := flankRotation(ps, v)
	curve := make(ToothCurve, n)
	for i := 0; i < n; i++ {
		r := r0 + (rt-r0)*float64(i)/float64(n-1)
		curve[i] = rotate2(involutePoint(rb, r), rot)
	}

	if err := checkMonotonicRadius(curve); err != nil {
		return nil, err
	}
	return curve, nil
}

// SphericalFlank maps the planar flank onto the drive gear's tip sphere.
// Each planar sample at polar (rho, theta) becomes the composition of a
// rotation about the gear axis by theta (the involute roll) and a
// rotation about the orthogonal axis by the latitude with
// cos(lat) = rho/R, evaluated on the sphere of radius R = tip radius.
// The polar angle from the gear axis increases strictly along the curve.
func SphericalFlank(ps *ParameterSet, v Variant) (SphereCurve, error) {
	flank, err := Flank(ps, v)
	if err != nil {
		return nil, err
	}

	sphereR := 0.5 * ps.TipDiameterDrive
	curve := make(SphereCurve, len(flank))
	for i, p := range flank {
		rho := math.Hypot(p.X, p.Y)
		theta := math.Atan2(p.Y, p.X)
		lat := math.Acos(clamp(rho/sphereR, -1, 1))
		// Rz(theta) * Ry(-lat) applied to (R, 0, 0).
		curve[i] = r3.Vec{
			X: sphereR * math.Cos(lat) * math.Cos(theta),
			Y: sphereR * math.Cos(lat) * math.Sin(theta),
			Z: sphereR * math.Sin(lat),
		}
	}

	for i := 1; i < len(curve); i++ {
		prev := math.Hypot(curve[i-1].X, curve[i-1].Y)
		cur := math.Hypot(curve[i].X, curve[i].Y)
		if cur <= prev {
			return nil, DegenerateError{
				What:   "spherical flank",
				Reason: fmt.Sprintf("polar angle backtracks at sample %d", i),
			}
		}
	}
	return curve, nil
}

// checkMonotonicRadius rejects curves whose distance from the gear
// center ever decreases.
func checkMonotonicRadius(curve ToothCurve) error {
	if len(curve) < 2 {
		return DegenerateError{What: "flank", Reason: "fewer than two samples"}
	}
	for i := 1; i < len(curve); i++ {
		if math.Hypot(curve[i].X, curve[i].Y) <= math.Hypot(curve[i-1].X, curve[i-1].Y) {
			return DegenerateError{
				What:   "flank",
				Reason: fmt.Sprintf("radius backtracks at sample %d", i),
			}
		}
	}
	return nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
