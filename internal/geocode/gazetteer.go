package geocode

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/photo-places/internal/geo"
)

// Gazetteer is an offline Reverser over a fixed list of named boxes.
type Gazetteer struct {
	places []Place
}

type gazetteerFile struct {
	Places []struct {
		Name string    `yaml:"name"`
		BBox []float64 `yaml:"bbox"` // [min_lon, min_lat, max_lon, max_lat]
	} `yaml:"places"`
}

// LoadGazetteer reads a gazetteer YAML file.
func LoadGazetteer(path string) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gazetteer: %w", err)
	}
	defer f.Close()

	return ParseGazetteer(f)
}

// ParseGazetteer decodes a gazetteer of the form
//
//	places:
//	  - name: Prague
//	    bbox: [14.22, 49.94, 14.71, 50.18]
//
// Boxes are given as [min_lon, min_lat, max_lon, max_lat].
func ParseGazetteer(r io.Reader) (*Gazetteer, error) {
	var gf gazetteerFile
	if err := yaml.NewDecoder(r).Decode(&gf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode gazetteer: %w", err)
	}

	g := &Gazetteer{places: make([]Place, 0, len(gf.Places))}
	for i, p := range gf.Places {
		name := NormalizeName(p.Name)
		if name == "" {
			return nil, fmt.Errorf("gazetteer entry %d: missing name", i)
		}
		if len(p.BBox) != 4 {
			return nil, fmt.Errorf("gazetteer entry %q: bbox has %d values, want 4", name, len(p.BBox))
		}
		box := geo.BBox{MinLon: p.BBox[0], MinLat: p.BBox[1], MaxLon: p.BBox[2], MaxLat: p.BBox[3]}
		if !box.Valid() {
			return nil, fmt.Errorf("gazetteer entry %q: invalid bbox %v", name, p.BBox)
		}
		g.places = append(g.places, Place{Name: name, BBox: box})
	}

	return g, nil
}

// Len returns the number of places.
func (g *Gazetteer) Len() int {
	return len(g.places)
}

// ReverseGeocode implements Reverser. The first box containing p wins.
func (g *Gazetteer) ReverseGeocode(ctx context.Context, p geo.Point) (*Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, pl := range g.places {
		if pl.BBox.Contains(p) {
			out := pl
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoResult, p)
}
