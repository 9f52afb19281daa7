package spatialindex

import (
	"math"
	"sort"

	"github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/tidwall/rtree"
)

// PointIndex is an r-tree over points carrying a payload of type T.
// distances are euclidean in the coordinate space of the inserted points.
type PointIndex[T any] struct {
	tr    *rtree.RTreeG[indexEntry[T]]
	count int
	bb    *datastructure.BoundingBox
}

type indexEntry[T any] struct {
	p    datastructure.Point
	data T
	seq  int // insertion order, breaks distance ties
}

type Neighbor[T any] struct {
	Point       datastructure.Point
	Data        T
	SquaredDist float64
	seq         int
}

func (n Neighbor[T]) Dist() float64 {
	return math.Sqrt(n.SquaredDist)
}

func NewPointIndex[T any]() *PointIndex[T] {
	var tr rtree.RTreeG[indexEntry[T]]
	return &PointIndex[T]{
		tr: &tr,
		bb: datastructure.NewEmptyBoundingBox(),
	}
}

func (pi *PointIndex[T]) Insert(p datastructure.Point, data T) {
	pi.tr.Insert([2]float64{p.X, p.Y}, [2]float64{p.X, p.Y}, indexEntry[T]{p: p, data: data, seq: pi.count})
	pi.count++
	pi.bb.Extend(p.X, p.Y)
}

func (pi *PointIndex[T]) Len() int {
	return pi.count
}

func less[T any](a, b Neighbor[T]) bool {
	if a.SquaredDist != b.SquaredDist {
		return a.SquaredDist < b.SquaredDist
	}
	return a.seq < b.seq
}

// SearchWithinRadius. every point at distance <= radius from q, nearest first.
func (pi *PointIndex[T]) SearchWithinRadius(q datastructure.Point, radius float64) []Neighbor[T] {
	results := make([]Neighbor[T], 0, 4)
	if radius < 0 || pi.count == 0 {
		return results
	}
	rSq := radius * radius
	pi.tr.Search([2]float64{q.X - radius, q.Y - radius}, [2]float64{q.X + radius, q.Y + radius},
		func(min, max [2]float64, data indexEntry[T]) bool {
			d := q.SquaredDistanceTo(data.p)
			if d <= rSq {
				results = append(results, Neighbor[T]{Point: data.p, Data: data.data, SquaredDist: d, seq: data.seq})
			}
			return true
		})

	sort.Slice(results, func(i, j int) bool {
		return less(results[i], results[j])
	})
	return results
}

// NearestWithinRadius. nearest point at distance <= radius, ties go to the earliest inserted point.
func (pi *PointIndex[T]) NearestWithinRadius(q datastructure.Point, radius float64) (Neighbor[T], bool) {
	var best Neighbor[T]
	found := false
	if radius < 0 || pi.count == 0 {
		return best, false
	}
	rSq := radius * radius
	pi.tr.Search([2]float64{q.X - radius, q.Y - radius}, [2]float64{q.X + radius, q.Y + radius},
		func(min, max [2]float64, data indexEntry[T]) bool {
			d := q.SquaredDistanceTo(data.p)
			if d > rSq {
				return true
			}
			cand := Neighbor[T]{Point: data.p, Data: data.data, SquaredDist: d, seq: data.seq}
			if !found || less(cand, best) {
				best = cand
				found = true
			}
			return true
		})
	return best, found
}

// nearestScan visits every entry. the last doubling step would otherwise compare against a reach*reach that
// round-off can leave just below the distance to the farthest corner.
func (pi *PointIndex[T]) nearestScan(q datastructure.Point) Neighbor[T] {
	var best Neighbor[T]
	found := false
	pi.tr.Scan(func(min, max [2]float64, data indexEntry[T]) bool {
		cand := Neighbor[T]{Point: data.p, Data: data.data, SquaredDist: q.SquaredDistanceTo(data.p), seq: data.seq}
		if !found || less(cand, best) {
			best = cand
			found = true
		}
		return true
	})
	return best
}

// maxReach. distance from q to the farthest corner of the indexed points bounding box.
func (pi *PointIndex[T]) maxReach(q datastructure.Point) float64 {
	dx := math.Max(math.Abs(q.X-pi.bb.GetMinX()), math.Abs(q.X-pi.bb.GetMaxX()))
	dy := math.Max(math.Abs(q.Y-pi.bb.GetMinY()), math.Abs(q.Y-pi.bb.GetMaxY()))
	return math.Hypot(dx, dy)
}

// Nearest. nearest indexed point to q, found by doubling the search radius until a hit is inside the circle.
func (pi *PointIndex[T]) Nearest(q datastructure.Point) (Neighbor[T], bool) {
	if pi.count == 0 {
		return Neighbor[T]{}, false
	}

	reach := pi.maxReach(q)
	radius := math.Max(pi.bb.Width(), pi.bb.Height()) / 1024
	if radius <= 0 {
		radius = 1e-9
	}
	for {
		if radius >= reach {
			return pi.nearestScan(q), true
		}
		if n, ok := pi.NearestWithinRadius(q, radius); ok {
			return n, true
		}
		radius *= 2
	}
}
