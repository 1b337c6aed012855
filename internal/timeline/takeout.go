package timeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Records is the root structure of a Google Takeout Records.json export.
type Records struct {
	Locations []RecordLocation `json:"locations"`
}

// RecordLocation is a single entry in Records.json. Older exports carry
// timestampMs, newer ones an RFC 3339 timestamp.
type RecordLocation struct {
	LatitudeE7  *int64  `json:"latitudeE7"`
	LongitudeE7 *int64  `json:"longitudeE7"`
	Accuracy    float64 `json:"accuracy"`
	TimestampMs string  `json:"timestampMs,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// ParseRecords reads a Records.json document.
func ParseRecords(r io.Reader) (*Records, error) {
	var records Records
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse location history JSON: %w", err)
	}
	return &records, nil
}

// ExtractPoints converts records to points. Entries that cannot be converted are
// skipped and reported in the returned error slice.
func ExtractPoints(records *Records) ([]Point, []error) {
	var points []Point
	var errs []error

	for i, loc := range records.Locations {
		if loc.LatitudeE7 == nil || loc.LongitudeE7 == nil {
			errs = append(errs, fmt.Errorf("location %d: missing coordinates", i))
			continue
		}

		ts, err := loc.time()
		if err != nil {
			errs = append(errs, fmt.Errorf("location %d: %w", i, err))
			continue
		}

		lat := float64(*loc.LatitudeE7) / 1e7
		lon := float64(*loc.LongitudeE7) / 1e7
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			errs = append(errs, fmt.Errorf("location %d: coordinates out of range (%f, %f)", i, lat, lon))
			continue
		}

		points = append(points, Point{
			Timestamp: ts,
			Lat:       lat,
			Lon:       lon,
			AccuracyM: loc.Accuracy,
		})
	}

	return points, errs
}

func (l RecordLocation) time() (time.Time, error) {
	if l.Timestamp != "" {
		t, err := time.Parse(time.RFC3339Nano, l.Timestamp)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", l.Timestamp, err)
		}
		return t.UTC(), nil
	}
	if l.TimestampMs != "" {
		ms, err := strconv.ParseInt(l.TimestampMs, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestampMs %q: %w", l.TimestampMs, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("missing timestamp")
}
