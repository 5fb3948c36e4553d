// Package geo computes great-circle distances between hotel records and
// filters candidate records by a maximum radius around an anchor point.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// EarthRadiusMeters is the sphere radius used by every distance in this package.
const EarthRadiusMeters = 6373000.0

// Unlimited is the "no filter" max distance. It is larger than any
// distance that can be measured on EarthRadiusMeters.
const Unlimited = math.MaxInt32

// Formula names accepted by CalculatorFor.
const (
	FormulaLegacy    = "legacy"
	FormulaHaversine = "haversine"
)

// Calculator returns the distance in whole meters from ref to p.
type Calculator func(ref, p orb.Point) int

// LegacyDistance reproduces the distance the review dashboard has always
// displayed. It multiplies by cos(dlat) where the textbook formula uses the
// cosine of the reference latitude, which makes it asymmetric: swapping ref
// and p can change the result. Values are truncated toward zero.
func LegacyDistance(ref, p orb.Point) int {
	dlat := radians(ref.Lat()) - radians(p.Lat())
	dlon := radians(ref.Lon()) - radians(p.Lon())

	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(radians(p.Lat()))*math.Cos(dlat)*math.Pow(math.Sin(dlon/2), 2)
	a = clampUnit(a)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return int(c * EarthRadiusMeters)
}

// HaversineDistance is the textbook haversine distance, rescaled from orb's
// WGS84 radius onto EarthRadiusMeters so both formulas share one sphere.
func HaversineDistance(ref, p orb.Point) int {
	return int(geo.DistanceHaversine(ref, p) * EarthRadiusMeters / orb.EarthRadius)
}

// CalculatorFor maps a configured formula name to its Calculator.
func CalculatorFor(formula string) (Calculator, error) {
	switch formula {
	case FormulaLegacy, "":
		return LegacyDistance, nil
	case FormulaHaversine:
		return HaversineDistance, nil
	default:
		return nil, fmt.Errorf("unknown distance formula %q", formula)
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// clampUnit keeps float noise from pushing a outside [0, 1] before sqrt.
func clampUnit(a float64) float64 {
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}
