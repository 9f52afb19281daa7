package datastructure

import (
	"math"
	"sort"

	"github.com/lintang-b-s/Congestionx/pkg/concurrent"
	"github.com/tidwall/rtree"
)

// LineSegment is one resolved straight road piece.
type LineSegment struct {
	ID string
	A  Point
	B  Point
}

func NewLineSegment(id string, a, b Point) LineSegment {
	return LineSegment{ID: id, A: a, B: b}
}

// Crossing records where segments First and Second (indices into the input) meet.
type Crossing struct {
	Point  Point
	First  int
	Second int
	UA, UB float64 // position along First / Second, in [0,1]
}

// PointKey is the rounded identity of a point, used for dedup instead of raw floats.
type PointKey struct {
	x, y int64
}

func NewPointKey(p Point, decimals uint) PointKey {
	scale := math.Pow10(int(decimals))
	return PointKey{
		x: int64(math.Round(p.X * scale)),
		y: int64(math.Round(p.Y * scale)),
	}
}

func (k PointKey) Point(decimals uint) Point {
	scale := math.Pow10(int(decimals))
	return Point{X: float64(k.x) / scale, Y: float64(k.y) / scale}
}

// DedupPoints rounds every point to decimals and keeps one point per rounded key.
// output is sorted by (x, y) so the result is deterministic and dedup is idempotent.
func DedupPoints(points []Point, decimals uint) []Point {
	seen := make(map[PointKey]struct{}, len(points))
	keys := make([]PointKey, 0, len(points))
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		key := NewPointKey(p, decimals)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].x != keys[j].x {
			return keys[i].x < keys[j].x
		}
		return keys[i].y < keys[j].y
	})

	out := make([]Point, len(keys))
	for i, k := range keys {
		out[i] = k.Point(decimals)
	}
	return out
}

func segmentBox(s LineSegment) ([2]float64, [2]float64) {
	return [2]float64{math.Min(s.A.X, s.B.X), math.Min(s.A.Y, s.B.Y)},
		[2]float64{math.Max(s.A.X, s.B.X), math.Max(s.A.Y, s.B.Y)}
}

// FindCrossings tests every unordered pair of segments whose bounding boxes overlap (pairs with disjoint boxes
// cannot cross). rows of the pair matrix are fanned out to workers.
func FindCrossings(segments []LineSegment, workers int) []Crossing {
	n := len(segments)
	if n < 2 {
		return []Crossing{}
	}

	var boxes rtree.RTreeG[int]
	for i, s := range segments {
		if !s.A.IsFinite() || !s.B.IsFinite() {
			continue
		}
		lo, hi := segmentBox(s)
		boxes.Insert(lo, hi, i)
	}

	row := func(i int) []Crossing {
		res := make([]Crossing, 0)
		si := segments[i]
		if !si.A.IsFinite() || !si.B.IsFinite() {
			return res
		}

		others := make([]int, 0)
		lo, hi := segmentBox(si)
		boxes.Search(lo, hi, func(_, _ [2]float64, j int) bool {
			if j > i {
				others = append(others, j)
			}
			return true
		})
		sort.Ints(others)

		for _, j := range others {
			sj := segments[j]
			if !SegmentsIntersect(si.A, si.B, sj.A, sj.B) {
				continue
			}
			ua, ub, ok := IntersectionParams(si.A, si.B, sj.A, sj.B)
			if !ok {
				continue
			}
			res = append(res, Crossing{
				Point:  Point{X: si.A.X + ua*(si.B.X-si.A.X), Y: si.A.Y + ua*(si.B.Y-si.A.Y)},
				First:  i,
				Second: j,
				UA:     ua,
				UB:     ub,
			})
		}
		return res
	}

	crossings := make([]Crossing, 0)
	if workers <= 1 || n < 64 {
		for i := 0; i < n; i++ {
			crossings = append(crossings, row(i)...)
		}
	} else {
		wp := concurrent.NewWorkerPool[int, []Crossing](workers, n)
		wp.Start(row)
		for i := 0; i < n; i++ {
			wp.AddJob(i)
		}
		wp.Close()
		wp.Wait()
		for res := range wp.CollectResults() {
			crossings = append(crossings, res...)
		}
	}

	sort.Slice(crossings, func(a, b int) bool {
		if crossings[a].First != crossings[b].First {
			return crossings[a].First < crossings[b].First
		}
		return crossings[a].Second < crossings[b].Second
	})
	return crossings
}

// FindIntersections returns every segment endpoint plus every pairwise crossing, deduplicated on a rounded key.
func FindIntersections(segments []LineSegment, decimals uint, workers int) []Point {
	return MergeIntersections(segments, FindCrossings(segments, workers), nil, decimals)
}

// MergeIntersections is the candidate and dedup step of FindIntersections, for callers that already hold the
// crossings. declared points are unioned in under the same rounded key.
func MergeIntersections(segments []LineSegment, crossings []Crossing, declared []Point, decimals uint) []Point {
	candidates := make([]Point, 0, 2*len(segments)+len(crossings)+len(declared))
	for _, s := range segments {
		candidates = append(candidates, s.A, s.B)
	}
	for _, c := range crossings {
		candidates = append(candidates, c.Point)
	}
	candidates = append(candidates, declared...)
	return DedupPoints(candidates, decimals)
}
