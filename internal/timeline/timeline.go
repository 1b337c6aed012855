// Package timeline provides the recorded location history used to place photos without GPS data.
package timeline

import (
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/kozaktomas/photo-places/internal/geo"
)

// ErrEmptyHistory is returned by loaders that produced no usable points.
var ErrEmptyHistory = errors.New("location history contains no points")

// Point is a single recorded position.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Lon       float64   `json:"lon"`
	Lat       float64   `json:"lat"`
	AccuracyM float64   `json:"accuracy_m"`
}

// Location returns the coordinate of the point.
func (p Point) Location() geo.Point {
	return geo.Point{Lon: p.Lon, Lat: p.Lat}
}

// Timeline is an immutable, time-ordered sequence of points.
type Timeline struct {
	points []Point
}

// New builds a timeline from points. The input is copied and stably sorted by
// timestamp so equal timestamps keep their original relative order.
func New(points []Point) *Timeline {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b Point) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return &Timeline{points: sorted}
}

// Len returns the number of points.
func (t *Timeline) Len() int {
	return len(t.points)
}

// Points returns a copy of the points in timestamp order.
func (t *Timeline) Points() []Point {
	return slices.Clone(t.points)
}

// FindClosest returns the point whose timestamp is nearest to ts.
// Equal deltas resolve to the earlier point. Calling it on an empty timeline panics.
func (t *Timeline) FindClosest(ts time.Time) Point {
	if len(t.points) == 0 {
		panic("timeline: FindClosest called on empty timeline")
	}

	// First point at or after ts.
	idx := sort.Search(len(t.points), func(i int) bool {
		return !t.points[i].Timestamp.Before(ts)
	})

	if idx == len(t.points) {
		return t.points[t.firstWithTimestamp(len(t.points)-1)]
	}
	if idx == 0 {
		return t.points[0]
	}

	before := t.firstWithTimestamp(idx - 1)
	if absDuration(ts.Sub(t.points[before].Timestamp)) <= absDuration(t.points[idx].Timestamp.Sub(ts)) {
		return t.points[before]
	}
	return t.points[idx]
}

// firstWithTimestamp returns the lowest index sharing the timestamp of points[i].
func (t *Timeline) firstWithTimestamp(i int) int {
	target := t.points[i].Timestamp
	return sort.Search(i+1, func(j int) bool {
		return !t.points[j].Timestamp.Before(target)
	})
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
