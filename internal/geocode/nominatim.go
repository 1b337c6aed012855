package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/kozaktomas/photo-places/internal/geo"
)

// DefaultNominatimURL is the public OpenStreetMap instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimConfig configures a Nominatim client.
type NominatimConfig struct {
	URL            string
	UserAgent      string        // Required by the public instance's usage policy
	Zoom           int           // Detail level, 10 is city
	RequestsPerSec float64       // Defaults to 1, the public instance's limit
	Timeout        time.Duration // Per request, defaults to 30s
}

// Nominatim reverse-geocodes points with the Nominatim /reverse endpoint.
// Requests are rate limited and never cached.
type Nominatim struct {
	baseURL    *url.URL
	userAgent  string
	zoom       int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewNominatim creates a client.
func NewNominatim(cfg NominatimConfig) (*Nominatim, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultNominatimURL
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("nominatim user agent is required")
	}
	if cfg.Zoom == 0 {
		cfg.Zoom = 10
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid nominatim url: %w", err)
	}

	return &Nominatim{
		baseURL:    u,
		userAgent:  cfg.UserAgent,
		zoom:       cfg.Zoom,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
	}, nil
}

// nominatimResponse is the jsonv2 reverse answer.
type nominatimResponse struct {
	Error       string   `json:"error"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"` // [min_lat, max_lat, min_lon, max_lon]
	Address     struct {
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		Suburb        string `json:"suburb"`
		Neighbourhood string `json:"neighbourhood"`
		County        string `json:"county"`
		State         string `json:"state"`
		Country       string `json:"country"`
	} `json:"address"`
}

// ReverseGeocode implements Reverser.
func (n *Nominatim) ReverseGeocode(ctx context.Context, p geo.Point) (*Place, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := n.baseURL.JoinPath("reverse")
	u.RawQuery = url.Values{
		"format":         {"jsonv2"},
		"lat":            {strconv.FormatFloat(p.Lat, 'f', 6, 64)},
		"lon":            {strconv.FormatFloat(p.Lon, 'f', 6, 64)},
		"zoom":           {strconv.Itoa(n.zoom)},
		"addressdetails": {"1"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nominatim returned status %d: %s", resp.StatusCode, body)
	}

	var nr nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if nr.Error != "" {
		// "Unable to geocode", returned for points in the ocean.
		return nil, fmt.Errorf("%w: %s", ErrNoResult, nr.Error)
	}

	name := NormalizeName(placeName(nr))
	if name == "" {
		return nil, fmt.Errorf("%w: no name for %s", ErrMalformedResponse, p)
	}

	box, err := parseBoundingBox(nr.BoundingBox)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &Place{Name: name, BBox: box.Extend(p)}, nil
}

// placeName picks the most specific name of a settlement-level answer.
func placeName(nr nominatimResponse) string {
	a := nr.Address
	for _, s := range []string{nr.Name, a.City, a.Town, a.Village, a.Suburb, a.Neighbourhood, a.County, a.State, a.Country} {
		if s != "" {
			return s
		}
	}
	return ""
}

func parseBoundingBox(bb []string) (geo.BBox, error) {
	if len(bb) != 4 {
		return geo.BBox{}, fmt.Errorf("bounding box has %d values, want 4", len(bb))
	}

	var v [4]float64
	for i, s := range bb {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return geo.BBox{}, fmt.Errorf("bounding box value %q: %w", s, err)
		}
		v[i] = f
	}

	box := geo.BBox{MinLat: v[0], MaxLat: v[1], MinLon: v[2], MaxLon: v[3]}
	if !box.Valid() {
		return geo.BBox{}, fmt.Errorf("invalid bounding box %v", bb)
	}
	return box, nil
}
