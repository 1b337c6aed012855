// Package photo models a photo discovered on disk and the metrics used to cluster photos.
package photo

import (
	"time"

	"github.com/kozaktomas/photo-places/internal/geo"
)

// LocationSource tells where a record's location came from.
type LocationSource string

const (
	LocationNone     LocationSource = ""
	LocationEmbedded LocationSource = "exif"     // GPS tags in the file
	LocationTimeline LocationSource = "timeline" // Snapped to the nearest timeline sample
)

// Record is the per-photo state of a single pipeline run.
type Record struct {
	Path       string         `json:"path"`
	CapturedAt *time.Time     `json:"captured_at,omitempty"`
	Location   *geo.Point     `json:"location,omitempty"`
	Source     LocationSource `json:"location_source,omitempty"`
	PlaceName  string         `json:"place_name,omitempty"`
}

// NewRecord creates a record. Nil arguments leave the attribute unset.
func NewRecord(path string, capturedAt *time.Time, location *geo.Point) *Record {
	r := &Record{
		Path:       path,
		CapturedAt: capturedAt,
		Location:   location,
	}
	if location != nil {
		r.Source = LocationEmbedded
	}
	return r
}

// HasLocation reports whether the record has coordinates from any source.
func (r *Record) HasLocation() bool {
	return r.Location != nil
}

// HasCaptureTime reports whether the capture time is known.
func (r *Record) HasCaptureTime() bool {
	return r.CapturedAt != nil
}

// HasPlaceName reports whether a place name has been assigned.
func (r *Record) HasPlaceName() bool {
	return r.PlaceName != ""
}

// SetInferredLocation assigns a location derived from the timeline. A location that
// is already set, embedded or inferred, is never overwritten; false is returned then.
func (r *Record) SetInferredLocation(p geo.Point) bool {
	if r.Location != nil {
		return false
	}
	r.Location = &p
	r.Source = LocationTimeline
	return true
}

// SetPlaceName assigns name if the record has none yet and reports whether it did.
func (r *Record) SetPlaceName(name string) bool {
	if name == "" || r.PlaceName != "" {
		return false
	}
	r.PlaceName = name
	return true
}
