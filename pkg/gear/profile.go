package gear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Profile is a closed sketch region. The boundary is an ordered,
// angle-ascending point loop; the edge from the last point back to the
// first is implicit.
type Profile []r2.Vec

// Arc sampling densities. Tip arcs are short; root arcs span the gap
// between adjacent teeth.
const (
	tipArcSegments  = 6
	rootArcSegments = 4
)

func polar(radius, angle float64) r2.Vec {
	return r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
}

func angleOf(p r2.Vec) float64 {
	return math.Atan2(p.Y, p.X)
}

// arcInterior returns the interior samples of a circular arc from
// fromAngle to toAngle (counter-clockwise), endpoints excluded.
func arcInterior(radius, fromAngle, toAngle float64, segments int) []r2.Vec {
	d := math.Mod(toAngle-fromAngle, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	pts := make([]r2.Vec, 0, segments-1)
	for i := 1; i < segments; i++ {
		pts = append(pts, polar(radius, fromAngle+d*float64(i)/float64(segments)))
	}
	return pts
}

// ToothAt assembles the outline of a single tooth centered at
// centerAngle: the lower flank from root to tip, the tip arc, and the
// mirrored upper flank back down to the root circle. The outline is open
// at the root; both endpoints lie on the root circle.
func ToothAt(ps *ParameterSet, v Variant, centerAngle float64) (Profile, error) {
	flank, err := Flank(ps, v)
	if err != nil {
		return nil, err
	}
	return toothOutline(ps, flank, centerAngle), nil
}

// toothOutline builds the open tooth boundary from an already-generated
// flank, then rotates it to centerAngle.
func toothOutline(ps *ParameterSet, flank ToothCurve, centerAngle float64) Profile {
	rootR := 0.5 * ps.RootDiameterDrive
	tipR := 0.5 * ps.TipDiameterDrive
	startR := math.Hypot(flank[0].X, flank[0].Y)

	out := make(Profile, 0, 2*len(flank)+tipArcSegments+3)

	// Drop to the root circle when the base circle lies outside it.
	baseAngle := angleOf(flank[0])
	if startR > rootR+1e-9 {
		out = append(out, polar(rootR, baseAngle))
	}

	// Lower flank, root/base to tip.
	out = append(out, flank...)

	// Tip arc across the centerline.
	aLow := angleOf(flank[len(flank)-1])
	out = append(out, arcInterior(tipR, aLow, -aLow, tipArcSegments)...)

	// Upper flank is the mirror image, tip back to root/base.
	for i := len(flank) - 1; i >= 0; i-- {
		out = append(out, mirror2(flank[i]))
	}
	if startR > rootR+1e-9 {
		out = append(out, polar(rootR, -baseAngle))
	}

	for i, p := range out {
		out[i] = rotate2(p, centerAngle)
	}
	return out
}

// SingleTooth returns one closed tooth profile centered on the +X axis.
// The implicit closing edge is the chord between the two root points.
func SingleTooth(ps *ParameterSet, v Variant) (Profile, error) {
	return ToothAt(ps, v, 0)
}

// GearProfile replicates the single tooth around the full circumference:
// every copy is a rigid rotation by a multiple of the pitch angle, joined
// by root arcs, concatenated angle-ascending into one closed
// non-self-intersecting boundary. This is the planar cross-section the
// kernel extrudes or revolves.
func GearProfile(ps *ParameterSet, v Variant) (Profile, error) {
	flank, err := Flank(ps, v)
	if err != nil {
		return nil, err
	}

	rootR := 0.5 * ps.RootDiameterDrive
	pitch := ps.PitchAngleDrive
	n := ps.TeethDrive

	var out Profile
	var firstStart r2.Vec
	var prevEnd r2.Vec
	for k := 0; k < n; k++ {
		tooth := toothOutline(ps, flank, (float64(k)+0.5)*pitch)
		if k == 0 {
			firstStart = tooth[0]
		} else {
			out = append(out, arcInterior(rootR, angleOf(prevEnd), angleOf(tooth[0]), rootArcSegments)...)
		}
		out = append(out, tooth...)
		prevEnd = tooth[len(tooth)-1]
	}
	// Close the loop with the final root arc back to the first tooth.
	out = append(out, arcInterior(rootR, angleOf(prevEnd), angleOf(firstStart), rootArcSegments)...)

	if len(out) < 3 {
		return nil, DegenerateError{What: "gear profile", Reason: "fewer than three points"}
	}
	return out, nil
}

// HalfGearProfile builds the half-gear fan used for the spherical
// revolve: floor(TeethDrive/2) teeth spanning the +X half-plane, closed
// along the Y axis. Revolving this profile about the Y axis produces the
// spherical gear blank. For odd tooth counts the trailing half-pitch is
// left toothless, matching the construction the cutter was derived from.
func HalfGearProfile(ps *ParameterSet, v Variant) (Profile, error) {
	flank, err := Flank(ps, v)
	if err != nil {
		return nil, err
	}

	rootR := 0.5 * ps.RootDiameterDrive
	pitch := ps.PitchAngleDrive
	half := ps.TeethDrive / 2
	if half < 1 {
		return nil, DegenerateError{What: "half gear profile", Reason: "no teeth in the half plane"}
	}

	out := Profile{polar(rootR, -math.Pi/2)}
	prevAngle := -math.Pi / 2
	for k := 0; k < half; k++ {
		tooth := toothOutline(ps, flank, -math.Pi/2+(float64(k)+0.5)*pitch)
		out = append(out, arcInterior(rootR, prevAngle, angleOf(tooth[0]), rootArcSegments)...)
		out = append(out, tooth...)
		prevAngle = angleOf(tooth[len(tooth)-1])
	}
	out = append(out, arcInterior(rootR, prevAngle, math.Pi/2, rootArcSegments)...)
	out = append(out, polar(rootR, math.Pi/2))

	// The implicit closing edge runs down the Y axis, which is the
	// revolve axis.
	return out, nil
}

// congruenceTolerance is the floating tolerance used when comparing
// replicated teeth.
const congruenceTolerance = 1e-9

// ValidateReplication confirms that two tooth outlines differ only by a
// rigid rotation of angle about the origin, within floating tolerance.
func ValidateReplication(a, b Profile, angle float64) error {
	if len(a) != len(b) {
		return DegenerateError{
			What:   "replicated tooth",
			Reason: fmt.Sprintf("point counts differ: %d vs %d", len(a), len(b)),
		}
	}
	for i := range a {
		r := rotate2(a[i], angle)
		if math.Abs(r.X-b[i].X) > congruenceTolerance || math.Abs(r.Y-b[i].Y) > congruenceTolerance {
			return DegenerateError{
				What:   "replicated tooth",
				Reason: fmt.Sprintf("point %d deviates from rigid rotation", i),
			}
		}
	}
	return nil
}
