package datastructure

import (
	"math"

	"github.com/lintang-b-s/Congestionx/pkg"
)

const (
	EPS = 1e-6
)

// Point is either (x, y) in a planar/pixel space or (lon, lat) in geographic space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) GetX() float64 {
	return p.X
}

func (p Point) GetY() float64 {
	return p.Y
}

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (p Point) SquaredDistanceTo(q Point) float64 {
	dx := q.X - p.X
	dy := q.Y - p.Y
	return dx*dx + dy*dy
}

func (p Point) DistanceTo(q Point) float64 {
	return math.Sqrt(p.SquaredDistanceTo(q))
}

func (p Point) Midpoint(q Point) Point {
	return Point{X: (p.X + q.X) / 2.0, Y: (p.Y + q.Y) / 2.0}
}

// SamePoint. two points are the same node when they are closer than eps. never compare raw floats.
func SamePoint(p, q Point, eps float64) bool {
	return p.DistanceTo(q) < eps
}

// equal operator
func Eq(a, b float64) bool {
	return math.Abs(a-b) <= EPS
}

// less than operator
func Lt(a, b float64) bool {
	return a+EPS < b
}

// greater than or equal than operator
func Ge(a, b float64) bool {
	return Le(b, a)
}

func Gt(a, b float64) bool {
	return Lt(b, a)
}

// less than or equal operator
func Le(a, b float64) bool {
	return a <= b+EPS
}

type Vector struct {
	x, y float64
}

func toVec(a, b Point) Vector {
	return Vector{b.X - a.X, b.Y - a.Y}
}

// cross product of two vectors a and b
func cross(a, b Vector) float64 {
	return a.x*b.y - a.y*b.x
}

// Orientation. sign((c.y-a.y)*(b.x-a.x) - (b.y-a.y)*(c.x-a.x)).
// 1 = c is counter-clockwise of ab, -1 = clockwise, 0 = collinear
func Orientation(a, b, c Point) int {
	x := cross(toVec(a, b), toVec(a, c))
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// SegmentsIntersect. segments ab and cd intersect iff ccw(a,c,d) != ccw(b,c,d) and ccw(a,b,c) != ccw(a,b,d),
// with ccw taken as the three-valued orientation sign.
func SegmentsIntersect(a, b, c, d Point) bool {
	return Orientation(a, c, d) != Orientation(b, c, d) &&
		Orientation(a, b, c) != Orientation(a, b, d)
}

// IntersectionParams solves a + ua*(b-a) = c + ub*(d-c).
// ok is false when the lines are parallel/collinear (|det| < 1e-10) or the crossing lies outside either segment.
func IntersectionParams(a, b, c, d Point) (ua, ub float64, ok bool) {
	denom := (d.Y-c.Y)*(b.X-a.X) - (d.X-c.X)*(b.Y-a.Y)
	if math.Abs(denom) < pkg.PARALLEL_DETERMINANT_EPS {
		return 0, 0, false
	}

	ua = ((d.X-c.X)*(a.Y-c.Y) - (d.Y-c.Y)*(a.X-c.X)) / denom
	ub = ((b.X-a.X)*(a.Y-c.Y) - (b.Y-a.Y)*(a.X-c.X)) / denom

	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return ua, ub, false
	}
	return ua, ub, true
}

// IntersectionPoint. intersection point of segments ab and cd, if any.
func IntersectionPoint(a, b, c, d Point) (Point, bool) {
	if !SegmentsIntersect(a, b, c, d) {
		return Point{}, false
	}

	ua, _, ok := IntersectionParams(a, b, c, d)
	if !ok {
		return Point{}, false
	}

	return Point{
		X: a.X + ua*(b.X-a.X),
		Y: a.Y + ua*(b.Y-a.Y),
	}, true
}

// ProjectionParam. parameter t of the orthogonal projection of p onto ab, clamped to [0,1].
func ProjectionParam(a, b, p Point) float64 {
	ab := toVec(a, b)
	lenSq := ab.x*ab.x + ab.y*ab.y
	if lenSq == 0 {
		return 0
	}
	ap := toVec(a, p)
	t := (ap.x*ab.x + ap.y*ab.y) / lenSq
	return math.Max(0, math.Min(1, t))
}
