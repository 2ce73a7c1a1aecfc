package gear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultRingSegments is the circle sampling density used when the
// caller passes zero segments.
const DefaultRingSegments = 64

// RingProfile is the annular cross-section of the MP-Gear body: two
// concentric sampled circles, outer at the driven tip radius and inner
// at the bore. Radii were validated at Derive and are trusted here.
type RingProfile struct {
	Outer []r2.Vec
	Bore  []r2.Vec
}

// Ring generates the annular cross-section for the given parameter set.
// Both circles are sampled counter-clockwise with the same segment count.
func Ring(ps *ParameterSet, segments int) (RingProfile, error) {
	if segments == 0 {
		segments = DefaultRingSegments
	}
	if segments < 8 {
		return RingProfile{}, DegenerateError{
			What:   "ring profile",
			Reason: fmt.Sprintf("need at least 8 circle segments, got %d", segments),
		}
	}

	return RingProfile{
		Outer: circle(0.5*ps.TipDiameterDriven, segments),
		Bore:  circle(0.5*ps.BoreDiameter, segments),
	}, nil
}

func circle(radius float64, segments int) []r2.Vec {
	pts := make([]r2.Vec, segments)
	for i := range pts {
		pts[i] = polar(radius, 2*math.Pi*float64(i)/float64(segments))
	}
	return pts
}
