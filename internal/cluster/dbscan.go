// Package cluster implements DBSCAN density clustering over an indexed point set.
//
// The algorithm only sees point indices and a Scanner answering neighbourhood
// queries, so the same code groups photos by place and by capture time.
package cluster

// Params are the DBSCAN parameters.
type Params struct {
	Epsilon   float64 // Neighbourhood radius, in the unit of the distance function
	MinPoints int     // Minimum neighbourhood size, the point itself included, for a core point
}

var (
	// Spatial groups photos taken within a kilometer of each other into places.
	Spatial = Params{Epsilon: 1000, MinPoints: 3}
	// Temporal groups photos taken within ten minutes of each other into events.
	Temporal = Params{Epsilon: 600, MinPoints: 10}
)

// Cluster is a set of point indices. Members are listed in discovery order, the
// first member is the core point that seeded the cluster.
type Cluster struct {
	Members []int
}

// Representative returns the index of the first-listed member.
func (c Cluster) Representative() int {
	return c.Members[0]
}

// Len returns the number of members.
func (c Cluster) Len() int {
	return len(c.Members)
}

// Result is a partition of the input into clusters and noise.
type Result struct {
	Clusters []Cluster
	Noise    []int // Indices that belong to no cluster, ascending
}

const (
	unvisited = 0
	noise     = -1
)

// DBSCAN clusters the points of s. Points are visited in index order, so for a
// fixed Scanner the output is reproducible.
//
// A point whose neighbourhood holds at least p.MinPoints points is a core point.
// Clusters grow breadth-first from core points; non-core points reached on the
// way join as border members but never expand the cluster themselves.
func DBSCAN(s Scanner, p Params) Result {
	n := s.Len()
	labels := make([]int, n)
	var clusters []Cluster

	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}

		neighbours := s.Neighbors(i, p.Epsilon)
		// An empty neighbourhood means the point lacks the measured attribute.
		if len(neighbours) == 0 || len(neighbours) < p.MinPoints {
			labels[i] = noise
			continue
		}

		id := len(clusters) + 1
		labels[i] = id
		members := []int{i}

		queue := neighbours
		for k := 0; k < len(queue); k++ {
			q := queue[k]
			switch labels[q] {
			case noise:
				// Border point, already known not to be core.
				labels[q] = id
				members = append(members, q)
				continue
			case unvisited:
			default:
				continue
			}

			labels[q] = id
			members = append(members, q)

			if qn := s.Neighbors(q, p.Epsilon); len(qn) >= p.MinPoints {
				queue = append(queue, qn...)
			}
		}

		clusters = append(clusters, Cluster{Members: members})
	}

	var noisePoints []int
	for i, l := range labels {
		if l == noise {
			noisePoints = append(noisePoints, i)
		}
	}

	return Result{Clusters: clusters, Noise: noisePoints}
}
