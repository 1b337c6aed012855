package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/kozaktomas/photo-places/internal/geo"
)

func loadTestData(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to load test data %s: %v", filename, err)
	}
	return data
}

func newTestNominatim(t *testing.T, handler http.HandlerFunc) *Nominatim {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n, err := NewNominatim(NominatimConfig{
		URL:            srv.URL,
		UserAgent:      "photo-places-test/1.0",
		RequestsPerSec: 1000,
	})
	if err != nil {
		t.Fatalf("NewNominatim() error = %v", err)
	}
	return n
}

func TestNominatim_ReverseGeocode(t *testing.T) {
	body := loadTestData(t, "reverse_prague.json")
	var gotPath, gotUA string
	var gotQuery map[string][]string

	n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	})

	place, err := n.ReverseGeocode(context.Background(), geo.Point{Lon: 14.4205, Lat: 50.0875})
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}

	if gotPath != "/reverse" {
		t.Errorf("path = %q, want /reverse", gotPath)
	}
	if gotUA != "photo-places-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	wantQuery := map[string]string{"format": "jsonv2", "lat": "50.087500", "lon": "14.420500", "zoom": "10"}
	for k, want := range wantQuery {
		if got := gotQuery[k]; len(got) != 1 || got[0] != want {
			t.Errorf("query %s = %v, want %s", k, got, want)
		}
	}

	if place.Name != "Praha" {
		t.Errorf("Name = %q, want Praha", place.Name)
	}
	want := geo.BBox{MinLon: 14.2244355, MinLat: 49.9419006, MaxLon: 14.7067867, MaxLat: 50.1774301}
	if place.BBox != want {
		t.Errorf("BBox = %+v, want %+v", place.BBox, want)
	}
}

func TestNominatim_NameFallbackAndBoxExtension(t *testing.T) {
	body := loadTestData(t, "reverse_unnamed.json")
	n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	})

	// Just north of the returned box.
	p := geo.Point{Lon: 8.5, Lat: 47.2}
	place, err := n.ReverseGeocode(context.Background(), p)
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}

	if place.Name != "Risch" {
		t.Errorf("Name = %q, want Risch", place.Name)
	}
	if !place.BBox.Contains(p) {
		t.Errorf("BBox %+v does not contain query point %s", place.BBox, p)
	}
	if place.BBox.MaxLat != 47.2 || place.BBox.MinLat != 47.099 {
		t.Errorf("BBox latitudes = [%v, %v], want [47.099, 47.2]", place.BBox.MinLat, place.BBox.MaxLat)
	}
}

func TestNominatim_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "unable to geocode",
			status:  http.StatusOK,
			body:    `{"error":"Unable to geocode"}`,
			wantErr: ErrNoResult,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>oops</html>`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "no name",
			status:  http.StatusOK,
			body:    `{"name":"","address":{},"boundingbox":["1","2","3","4"]}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "short bounding box",
			status:  http.StatusOK,
			body:    `{"name":"X","boundingbox":["1","2","3"]}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "unparsable bounding box",
			status:  http.StatusOK,
			body:    `{"name":"X","boundingbox":["1","2","east","4"]}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "inverted bounding box",
			status:  http.StatusOK,
			body:    `{"name":"X","boundingbox":["2","1","3","4"]}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:   "server error",
			status: http.StatusServiceUnavailable,
			body:   `busy`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			place, err := n.ReverseGeocode(context.Background(), geo.Point{Lon: 3.5, Lat: 1.5})
			if err == nil {
				t.Fatalf("expected error, got place %+v", place)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNominatim_NoCaching(t *testing.T) {
	body := loadTestData(t, "reverse_prague.json")
	var calls atomic.Int32
	n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write(body)
	})

	p := geo.Point{Lon: 14.42, Lat: 50.08}
	for i := 0; i < 3; i++ {
		if _, err := n.ReverseGeocode(context.Background(), p); err != nil {
			t.Fatalf("ReverseGeocode() error = %v", err)
		}
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestNewNominatim_RequiresUserAgent(t *testing.T) {
	if _, err := NewNominatim(NominatimConfig{}); err == nil {
		t.Error("expected error without user agent")
	}
}

func TestNormalizeName(t *testing.T) {
	decomposed := "  Plzen\u030c "
	if got := NormalizeName(decomposed); got != "Plze\u0148" {
		t.Errorf("NormalizeName(%q) = %q, want %q", decomposed, got, "Plze\u0148")
	}
}
