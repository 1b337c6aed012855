// Package enrich names spatial clusters of photos.
//
// Clusters are visited one at a time. A cluster that already contains a named
// photo passes the name on to its other members; otherwise one reverse lookup
// is dispatched for its representative point and the enricher waits for the
// answer before moving on. A successful answer names every photo in the whole
// collection that lies inside the returned bounding box, so later clusters in
// the same area are usually named without a lookup of their own.
package enrich

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/photo-places/internal/cluster"
	"github.com/kozaktomas/photo-places/internal/geo"
	"github.com/kozaktomas/photo-places/internal/geocode"
	"github.com/kozaktomas/photo-places/internal/photo"
)

// Dispatcher starts reverse lookups without blocking.
type Dispatcher interface {
	Enqueue(ctx context.Context, p geo.Point, cluster int) *geocode.Handle
}

// Stats counts what the enricher did.
type Stats struct {
	Lookups    int // Lookups dispatched
	Failed     int // Lookups that came back without a place
	Propagated int // Names copied between members of one cluster
	Backfilled int // Names assigned from a lookup's bounding box
}

// Enricher is driven by a single goroutine: Advance dispatches work, Apply
// consumes results. It is not safe for concurrent use.
type Enricher struct {
	records  []*photo.Record
	clusters []cluster.Cluster
	next     int
	waiting  bool
	stats    Stats
}

// New creates an enricher over the spatial clusters of records. Cluster members
// are indices into records.
func New(records []*photo.Record, clusters []cluster.Cluster) *Enricher {
	return &Enricher{records: records, clusters: clusters}
}

// Advance walks the clusters in order, naming those that can be named from their
// own members, until it dispatches a lookup or runs out of clusters. It does
// nothing while a lookup is outstanding. It reports whether a lookup was dispatched.
func (e *Enricher) Advance(ctx context.Context, d Dispatcher) bool {
	for !e.waiting && e.next < len(e.clusters) {
		id := e.next
		e.next++

		if name, ok := e.existingName(id); ok {
			n := e.propagate(id, name)
			logrus.WithFields(logrus.Fields{
				"cluster": id,
				"name":    name,
				"named":   n,
			}).Debug("cluster named from its members")
			continue
		}

		rep := e.records[e.clusters[id].Representative()]
		if !rep.HasLocation() {
			continue
		}

		h := d.Enqueue(ctx, *rep.Location, id)
		e.waiting = true
		e.stats.Lookups++
		logrus.WithFields(logrus.Fields{
			"cluster":    id,
			"point":      rep.Location.String(),
			"request_id": h.ID,
		}).Debug("reverse lookup dispatched")
		return true
	}
	return false
}

// Apply consumes a finished lookup. On success every unnamed photo inside the
// returned box gets the name, members of the triggering cluster included; members
// outside the box stay unnamed. A failure leaves the cluster unnamed and is not retried.
func (e *Enricher) Apply(c geocode.Completion) {
	e.waiting = false

	if c.Err != nil || c.Place == nil {
		e.stats.Failed++
		logrus.WithFields(logrus.Fields{
			"cluster":    c.Cluster,
			"point":      c.Point.String(),
			"request_id": c.ID,
		}).WithError(c.Err).Warn("reverse lookup failed, cluster left unnamed")
		return
	}

	n := e.backfill(*c.Place)
	e.stats.Backfilled += n

	logrus.WithFields(logrus.Fields{
		"cluster":    c.Cluster,
		"name":       c.Place.Name,
		"named":      n,
		"request_id": c.ID,
	}).Info("place named")
}

// Done reports whether every cluster has been visited and no lookup is outstanding.
func (e *Enricher) Done() bool {
	return !e.waiting && e.next >= len(e.clusters)
}

// Stats returns the counters so far.
func (e *Enricher) Stats() Stats {
	return e.stats
}

// existingName returns the name of the first named member of cluster id.
func (e *Enricher) existingName(id int) (string, bool) {
	for _, m := range e.clusters[id].Members {
		if r := e.records[m]; r.HasPlaceName() {
			return r.PlaceName, true
		}
	}
	return "", false
}

func (e *Enricher) propagate(id int, name string) int {
	n := 0
	for _, m := range e.clusters[id].Members {
		if e.records[m].SetPlaceName(name) {
			n++
		}
	}
	e.stats.Propagated += n
	return n
}

// backfill is a separate pass over the whole collection, run only after the
// cluster walk has stopped to wait for a lookup.
func (e *Enricher) backfill(p geocode.Place) int {
	n := 0
	for _, r := range e.records {
		if r.HasLocation() && p.BBox.Contains(*r.Location) && r.SetPlaceName(p.Name) {
			n++
		}
	}
	return n
}
