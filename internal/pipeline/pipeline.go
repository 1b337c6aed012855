// Package pipeline runs a full grouping pass over a photo collection: timeline
// resolution, place and event clustering, and place naming.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-places/internal/cluster"
	"github.com/kozaktomas/photo-places/internal/enrich"
	"github.com/kozaktomas/photo-places/internal/geocode"
	"github.com/kozaktomas/photo-places/internal/geotag"
	"github.com/kozaktomas/photo-places/internal/photo"
	"github.com/kozaktomas/photo-places/internal/timeline"
)

// EventLabelLayout formats event labels and times.
const EventLabelLayout = "2006-01-02 15:04:05"

// Options configure Run.
type Options struct {
	TickInterval time.Duration // How often the lookup queue is polled, defaults to 1s
	Workers      int           // Concurrent lookups, <= 0 means one per CPU
}

// Group is one node of the result tree: a label and the files under it.
type Group struct {
	Label string     `json:"label"`
	Files []string   `json:"files"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Stats summarises a run.
type Stats struct {
	Photos           int `json:"photos"`
	Resolved         int `json:"resolved"`
	Unresolved       int `json:"unresolved"`
	SpatialClusters  int `json:"spatial_clusters"`
	TemporalClusters int `json:"temporal_clusters"`
	Lookups          int `json:"lookups"`
	LookupsFailed    int `json:"lookups_failed"`
	Named            int `json:"named"`
}

// Result is the output of Run.
type Result struct {
	Places []Group `json:"places"`
	Events []Group `json:"events"`
	Stats  Stats   `json:"stats"`
}

// Run groups records. Records missing a location are resolved against tl, which
// may be nil. With a nil reverser places are labelled by coordinates only.
//
// Run owns records for its duration: all mutation happens on the calling
// goroutine, lookups run in the background and are polled once per tick.
func Run(ctx context.Context, records []*photo.Record, tl *timeline.Timeline, r geocode.Reverser, opts Options) (*Result, error) {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}

	res := &Result{}
	res.Stats.Photos = len(records)

	tag := geotag.Resolve(records, tl)
	res.Stats.Resolved = tag.Resolved
	res.Stats.Unresolved = tag.Unresolved

	places := cluster.DBSCAN(SpatialScanner(records), cluster.Spatial)
	events := cluster.DBSCAN(TemporalScanner(records), cluster.Temporal)
	res.Stats.SpatialClusters = len(places.Clusters)
	res.Stats.TemporalClusters = len(events.Clusters)

	logrus.WithFields(logrus.Fields{
		"photos":   len(records),
		"resolved": tag.Resolved,
		"places":   len(places.Clusters),
		"events":   len(events.Clusters),
	}).Info("clustering finished")

	if r != nil && len(places.Clusters) > 0 {
		st, err := namePlaces(ctx, records, places.Clusters, r, opts)
		if err != nil {
			return nil, err
		}
		res.Stats.Lookups = st.Lookups
		res.Stats.LookupsFailed = st.Failed
	}

	for _, rec := range records {
		if rec.HasPlaceName() {
			res.Stats.Named++
		}
	}

	res.Places = placeGroups(records, places.Clusters)
	res.Events = eventGroups(records, events.Clusters)
	return res, nil
}

// namePlaces drives the enricher until every cluster has been visited. The loop only
// ever waits on the ticker, never on a lookup.
func namePlaces(ctx context.Context, records []*photo.Record, clusters []cluster.Cluster, r geocode.Reverser, opts Options) (enrich.Stats, error) {
	q := geocode.NewQueue(r, opts.Workers)
	e := enrich.New(records, clusters)

	e.Advance(ctx, q)

	ticker := time.NewTicker(opts.TickInterval)
	defer ticker.Stop()

	for !e.Done() {
		select {
		case <-ctx.Done():
			return enrich.Stats{}, fmt.Errorf("naming places: %w", ctx.Err())
		case <-ticker.C:
		}

		if c, ok := q.Tick(); ok {
			e.Apply(c)
			e.Advance(ctx, q)
		}
	}

	return e.Stats(), nil
}

// SpatialScanner compares record locations by haversine distance.
func SpatialScanner(records []*photo.Record) cluster.Scanner {
	return cluster.NewBruteScan(len(records), func(i, j int) (float64, bool) {
		return photo.SpatialDistance(records[i], records[j])
	})
}

// TemporalScanner indexes records by capture time in whole seconds.
func TemporalScanner(records []*photo.Record) cluster.Scanner {
	keys := make([]float64, len(records))
	valid := make([]bool, len(records))
	for i, r := range records {
		if r.HasCaptureTime() {
			keys[i] = float64(r.CapturedAt.Unix())
			valid[i] = true
		}
	}
	return cluster.NewSortedScan(keys, valid)
}

func placeGroups(records []*photo.Record, clusters []cluster.Cluster) []Group {
	groups := make([]Group, 0, len(clusters))
	for _, c := range clusters {
		rep := records[c.Representative()]
		label := rep.PlaceName
		if label == "" && rep.HasLocation() {
			label = rep.Location.String()
		}
		groups = append(groups, Group{Label: label, Files: paths(records, c)})
	}
	return groups
}

func eventGroups(records []*photo.Record, clusters []cluster.Cluster) []Group {
	groups := make([]Group, 0, len(clusters))
	for _, c := range clusters {
		g := Group{Files: paths(records, c)}
		for _, m := range c.Members {
			t := records[m].CapturedAt
			if t == nil {
				continue
			}
			if g.Start == nil || t.Before(*g.Start) {
				g.Start = t
			}
			if g.End == nil || t.After(*g.End) {
				g.End = t
			}
		}
		if rep := records[c.Representative()]; rep.HasCaptureTime() {
			g.Label = rep.CapturedAt.Format(EventLabelLayout)
		}
		groups = append(groups, g)
	}
	return groups
}

func paths(records []*photo.Record, c cluster.Cluster) []string {
	out := make([]string, 0, c.Len())
	for _, m := range c.Members {
		out = append(out, records[m].Path)
	}
	return out
}
