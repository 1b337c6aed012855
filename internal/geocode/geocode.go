// Package geocode resolves coordinates to place names. A Reverser is backed
// either by a Nominatim server or by an offline gazetteer; Queue runs lookups
// in the background for a single polling consumer.
package geocode

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/photo-places/internal/geo"
)

var (
	// ErrNoResult is returned when nothing is known about a point.
	ErrNoResult = errors.New("no place found")
	// ErrMalformedResponse is returned when a lookup answer lacks a name or a usable bounding box.
	ErrMalformedResponse = errors.New("malformed geocode response")
)

// Place is a named region. BBox always contains the point that was queried.
type Place struct {
	Name string   `json:"name"`
	BBox geo.BBox `json:"bbox"`
}

// Reverser looks up the place containing a point.
type Reverser interface {
	ReverseGeocode(ctx context.Context, p geo.Point) (*Place, error)
}

// NormalizeName trims a place name and converts it to NFC so names coming from
// different sources compare equal.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
