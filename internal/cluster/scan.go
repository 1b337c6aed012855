package cluster

import (
	"slices"
	"sort"
)

// Scanner answers neighbourhood queries over a fixed set of points.
type Scanner interface {
	// Len returns the number of points.
	Len() int
	// Neighbors returns, in ascending order, the indices of all points within eps
	// of point i, i itself included when its distance to itself is defined.
	Neighbors(i int, eps float64) []int
}

// DistanceFunc measures the distance between points i and j. ok is false when
// either point lacks the measured attribute; such pairs are never neighbours.
type DistanceFunc func(i, j int) (d float64, ok bool)

// BruteScan compares every pair of points, O(n) per query.
type BruteScan struct {
	n    int
	dist DistanceFunc
}

// NewBruteScan creates a scanner over n points.
func NewBruteScan(n int, dist DistanceFunc) *BruteScan {
	return &BruteScan{n: n, dist: dist}
}

func (b *BruteScan) Len() int {
	return b.n
}

func (b *BruteScan) Neighbors(i int, eps float64) []int {
	var out []int
	for j := 0; j < b.n; j++ {
		if d, ok := b.dist(i, j); ok && d <= eps {
			out = append(out, j)
		}
	}
	return out
}

// SortedScan indexes one-dimensional keys, such as capture timestamps, for
// O(log n + k) queries. Distances are absolute key differences, which gives
// exactly the neighbourhoods a BruteScan over the same metric would.
type SortedScan struct {
	n     int
	keys  []float64
	valid []bool
	order []int // Indices of valid points sorted by key
}

// NewSortedScan creates a scanner over keys. Points with valid[i] false have no
// neighbours and are nobody's neighbour.
func NewSortedScan(keys []float64, valid []bool) *SortedScan {
	order := make([]int, 0, len(keys))
	for i := range keys {
		if valid[i] {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case keys[a] < keys[b]:
			return -1
		case keys[a] > keys[b]:
			return 1
		}
		return 0
	})
	return &SortedScan{n: len(keys), keys: keys, valid: valid, order: order}
}

func (s *SortedScan) Len() int {
	return s.n
}

func (s *SortedScan) Neighbors(i int, eps float64) []int {
	if !s.valid[i] {
		return nil
	}
	k := s.keys[i]

	lo := sort.Search(len(s.order), func(j int) bool {
		return s.keys[s.order[j]] >= k-eps
	})

	var out []int
	for j := lo; j < len(s.order); j++ {
		idx := s.order[j]
		d := s.keys[idx] - k
		if d > eps {
			break
		}
		if abs(d) <= eps {
			out = append(out, idx)
		}
	}
	slices.Sort(out)
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
