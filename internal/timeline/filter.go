package timeline

import (
	"slices"

	"github.com/kozaktomas/photo-places/internal/geo"
)

// MaxSpeedMPS is the fastest plausible movement between two consecutive points.
// Anything faster is treated as a positioning glitch.
const MaxSpeedMPS = 300.0

// FilterOutliers sorts points by time and drops those whose accuracy is worse than
// maxAccuracyM (0 disables the check) or that imply an implausible speed relative
// to both of their neighbours: the last kept point before and the next accurate
// point after. A point with only one neighbour is judged against that one.
func FilterOutliers(points []Point, maxAccuracyM float64) []Point {
	sorted := make([]Point, 0, len(points))
	for _, p := range points {
		if maxAccuracyM > 0 && p.AccuracyM > maxAccuracyM {
			continue
		}
		sorted = append(sorted, p)
	}
	slices.SortStableFunc(sorted, func(a, b Point) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	kept := make([]Point, 0, len(sorted))
	for i, p := range sorted {
		hasPrev := len(kept) > 0
		hasNext := i+1 < len(sorted)

		prevOK := hasPrev && plausible(kept[len(kept)-1], p)
		nextOK := hasNext && plausible(p, sorted[i+1])

		if (hasPrev || hasNext) && !prevOK && !nextOK {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// plausible reports whether moving from a to b stays under MaxSpeedMPS.
// a must not be later than b.
func plausible(a, b Point) bool {
	dist := geo.Haversine(a.Location(), b.Location())
	seconds := b.Timestamp.Sub(a.Timestamp).Seconds()
	if seconds <= 0 {
		return dist == 0
	}
	return dist/seconds <= MaxSpeedMPS
}
