// Package geo holds the coordinate types shared by the timeline, photo and geocode packages.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusM is the mean earth radius in meters.
const EarthRadiusM = 6371008.8

// Point is a WGS84 coordinate in signed decimal degrees.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// String formats the point as "lat, lon", the order people read coordinates in.
func (p Point) String() string {
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lon)
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Point) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// Rounding can push h slightly past 1 for antipodal points.
	h = min(max(h, 0), 1)

	return 2 * EarthRadiusM * math.Asin(math.Sqrt(h))
}

// BBox is an axis-aligned box in degrees. Boxes crossing the antimeridian are not supported.
type BBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Contains reports whether p lies inside the box, edges included.
func (b BBox) Contains(p Point) bool {
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon &&
		p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

// Extend returns the smallest box covering both b and p.
func (b BBox) Extend(p Point) BBox {
	return BBox{
		MinLon: min(b.MinLon, p.Lon),
		MinLat: min(b.MinLat, p.Lat),
		MaxLon: max(b.MaxLon, p.Lon),
		MaxLat: max(b.MaxLat, p.Lat),
	}
}

// Valid reports whether the box has non-negative extent and in-range coordinates.
func (b BBox) Valid() bool {
	if b.MinLon > b.MaxLon || b.MinLat > b.MaxLat {
		return false
	}
	return b.MinLat >= -90 && b.MaxLat <= 90 && b.MinLon >= -180 && b.MaxLon <= 180
}
