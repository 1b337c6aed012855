// Package geotag fills in missing photo locations from a location timeline.
package geotag

import (
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-places/internal/photo"
	"github.com/kozaktomas/photo-places/internal/timeline"
)

// Result counts what Resolve did.
type Result struct {
	Resolved   int // Location taken from the timeline
	Located    int // Already had a location, left untouched
	Unresolved int // No location and no capture time
}

// Resolve assigns every record lacking a location the coordinates of the timeline
// sample closest to its capture time. The sample is used as is, there is no
// interpolation between neighbours. An empty timeline resolves nothing.
func Resolve(records []*photo.Record, tl *timeline.Timeline) Result {
	var res Result

	for _, r := range records {
		if r.HasLocation() {
			res.Located++
			continue
		}
		if !r.HasCaptureTime() || tl == nil || tl.Len() == 0 {
			res.Unresolved++
			continue
		}

		closest := tl.FindClosest(*r.CapturedAt)
		r.SetInferredLocation(closest.Location())
		res.Resolved++

		logrus.WithFields(logrus.Fields{
			"path":       r.Path,
			"captured":   r.CapturedAt,
			"sample":     closest.Timestamp,
			"accuracy_m": closest.AccuracyM,
		}).Debug("location resolved from timeline")
	}

	return res
}
