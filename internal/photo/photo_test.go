package photo

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/photo-places/internal/geo"
)

func ptr[T any](v T) *T {
	return &v
}

func TestSpatialDistance(t *testing.T) {
	prague := &Record{Location: &geo.Point{Lon: 14.4378, Lat: 50.0755}}
	nearby := &Record{Location: &geo.Point{Lon: 14.4378, Lat: 50.0845}}
	unknown := &Record{}

	tests := []struct {
		name   string
		a, b   *Record
		wantOK bool
		want   float64
	}{
		{"both located", prague, nearby, true, 1000.76},
		{"same record", prague, prague, true, 0},
		{"first missing", unknown, prague, false, 0},
		{"second missing", prague, unknown, false, 0},
		{"both missing", unknown, unknown, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SpatialDistance(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("SpatialDistance() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 0.5 {
				t.Errorf("SpatialDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTemporalDistance(t *testing.T) {
	base := time.Date(2019, 8, 1, 12, 0, 0, 0, time.UTC)
	early := &Record{CapturedAt: ptr(base)}
	late := &Record{CapturedAt: ptr(base.Add(10 * time.Minute))}
	unknown := &Record{}

	tests := []struct {
		name   string
		a, b   *Record
		wantOK bool
		want   float64
	}{
		{"ten minutes apart", early, late, true, 600},
		{"symmetric", late, early, true, 600},
		{"same record", early, early, true, 0},
		{"missing time", early, unknown, false, 0},
		{"both missing", unknown, unknown, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TemporalDistance(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("TemporalDistance() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("TemporalDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetInferredLocation(t *testing.T) {
	r := NewRecord("a.jpg", nil, nil)

	if !r.SetInferredLocation(geo.Point{Lon: 1, Lat: 2}) {
		t.Fatal("expected first assignment to succeed")
	}
	if r.Source != LocationTimeline {
		t.Errorf("expected source %q, got %q", LocationTimeline, r.Source)
	}
	if r.SetInferredLocation(geo.Point{Lon: 3, Lat: 4}) {
		t.Error("expected second assignment to be rejected")
	}
	if r.Location.Lon != 1 {
		t.Errorf("location overwritten: %+v", r.Location)
	}

	embedded := NewRecord("b.jpg", nil, &geo.Point{Lon: 5, Lat: 6})
	if embedded.SetInferredLocation(geo.Point{}) {
		t.Error("expected embedded location to be kept")
	}
	if embedded.Source != LocationEmbedded {
		t.Errorf("expected source %q, got %q", LocationEmbedded, embedded.Source)
	}
}

func TestSetPlaceName(t *testing.T) {
	r := NewRecord("a.jpg", nil, nil)

	if r.SetPlaceName("") {
		t.Error("empty name must not be assigned")
	}
	if !r.SetPlaceName("Prague") {
		t.Error("expected assignment to succeed")
	}
	if r.SetPlaceName("Brno") {
		t.Error("expected existing name to be kept")
	}
	if r.PlaceName != "Prague" {
		t.Errorf("PlaceName = %q, want Prague", r.PlaceName)
	}
}

func TestParseCaptureTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"exif format", "2018:06:21 14:03:59", time.Date(2018, 6, 21, 14, 3, 59, 0, time.UTC), false},
		{"trailing NUL", "2018:06:21 14:03:59\x00", time.Date(2018, 6, 21, 14, 3, 59, 0, time.UTC), false},
		{"iso format", "2018-06-21T14:03:59", time.Time{}, true},
		{"zeroed tag", "0000:00:00 00:00:00", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCaptureTime(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCaptureTime(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseCaptureTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestScan_KeepsFilesWithoutExif(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.jpg":           "not really a jpeg",
		"a.JPG":           "also not a jpeg",
		"notes.txt":       "ignored",
		"nested/c.tiff":   "broken tiff",
		"nested/skip.mov": "ignored",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	var progress []ScanProgress
	records, err := Scan(context.Background(), dir, func(p ScanProgress) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	want := []string{"a.JPG", "b.jpg", filepath.Join("nested", "c.tiff")}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, name := range want {
		if records[i].Path != filepath.Join(dir, name) {
			t.Errorf("records[%d].Path = %q, want %q", i, records[i].Path, filepath.Join(dir, name))
		}
		if records[i].HasLocation() || records[i].HasCaptureTime() {
			t.Errorf("records[%d] should have no attributes: %+v", i, records[i])
		}
	}

	if len(progress) != 3 || progress[2].Current != 3 || progress[2].Total != 3 {
		t.Errorf("unexpected progress reports: %+v", progress)
	}
}

func TestScan_Cancelled(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Scan(ctx, dir, nil); err == nil {
		t.Error("expected error for cancelled context")
	}
}
