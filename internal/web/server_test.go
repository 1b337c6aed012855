package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/photo-places/internal/pipeline"
)

func TestServer_Routes(t *testing.T) {
	result := &pipeline.Result{
		Places: []pipeline.Group{{Label: "Praha", Files: []string{"a.jpg"}}},
		Events: []pipeline.Group{{Label: "2024-06-01 10:00:00", Files: []string{"a.jpg"}}},
		Stats:  pipeline.Stats{Photos: 1},
	}
	s := NewServer(result, 0, "127.0.0.1", nil)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/api/v1/health", http.StatusOK},
		{"/api/v1/places", http.StatusOK},
		{"/api/v1/places/0", http.StatusOK},
		{"/api/v1/places/1", http.StatusNotFound},
		{"/api/v1/events", http.StatusOK},
		{"/api/v1/events/0", http.StatusOK},
		{"/api/v1/stats", http.StatusOK},
		{"/api/v1/unknown", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			s.Router().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if recorder.Code != tc.wantStatus {
				t.Errorf("GET %s: expected status %d, got %d", tc.path, tc.wantStatus, recorder.Code)
			}
			if recorder.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Errorf("GET %s: security headers missing", tc.path)
			}
		})
	}
}

func TestServer_PlaceByIndex(t *testing.T) {
	result := &pipeline.Result{Places: []pipeline.Group{{Label: "Praha", Files: []string{"a.jpg", "b.jpg"}}}}
	s := NewServer(result, 0, "127.0.0.1", nil)

	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/places/0", nil))

	var g pipeline.Group
	if err := json.Unmarshal(recorder.Body.Bytes(), &g); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if g.Label != "Praha" || len(g.Files) != 2 {
		t.Errorf("unexpected group %+v", g)
	}
}
