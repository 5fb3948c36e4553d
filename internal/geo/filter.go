package geo

import (
	"github.com/paulmach/orb"

	"github.com/stwalsh4118/hotelmatch/internal/models"
)

// Filter annotates every record with its distance from ref and keeps the
// ones at most maxDistance meters away, in input order. Records exactly on
// the boundary are kept. A negative maxDistance keeps nothing.
func Filter(records []models.HotelRecord, ref orb.Point, maxDistance int, calc Calculator) []models.AnnotatedRecord {
	if calc == nil {
		calc = LegacyDistance
	}

	filtered := make([]models.AnnotatedRecord, 0, len(records))
	for _, r := range records {
		d := calc(ref, r.Point())
		if d <= maxDistance {
			filtered = append(filtered, models.AnnotatedRecord{
				HotelRecord: r,
				Distance:    d,
			})
		}
	}
	return filtered
}
