package photo

import (
	"math"

	"github.com/kozaktomas/photo-places/internal/geo"
)

// Both metrics are total: when an operand lacks the attribute they report ok=false
// instead of a distance, and such a pair is never within any radius.

// SpatialDistance returns the haversine distance between two records in meters.
func SpatialDistance(a, b *Record) (meters float64, ok bool) {
	if a.Location == nil || b.Location == nil {
		return 0, false
	}
	return geo.Haversine(*a.Location, *b.Location), true
}

// TemporalDistance returns the absolute capture time difference in whole seconds.
func TemporalDistance(a, b *Record) (seconds float64, ok bool) {
	if a.CapturedAt == nil || b.CapturedAt == nil {
		return 0, false
	}
	return math.Abs(float64(a.CapturedAt.Unix() - b.CapturedAt.Unix())), true
}
