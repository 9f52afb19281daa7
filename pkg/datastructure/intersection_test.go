package datastructure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquareWithDiagonals() []LineSegment {
	return []LineSegment{
		NewLineSegment("h1", NewPoint(0, 0), NewPoint(1, 0)),
		NewLineSegment("h2", NewPoint(0, 1), NewPoint(1, 1)),
		NewLineSegment("v1", NewPoint(0, 0), NewPoint(0, 1)),
		NewLineSegment("v2", NewPoint(1, 0), NewPoint(1, 1)),
		NewLineSegment("d1", NewPoint(0, 0), NewPoint(1, 1)),
		NewLineSegment("d2", NewPoint(1, 0), NewPoint(0, 1)),
	}
}

func TestFindIntersections(t *testing.T) {
	testCases := []struct {
		name     string
		segments []LineSegment
		workers  int
		want     []Point
	}{
		{
			name:     "unit square plus diagonals",
			segments: unitSquareWithDiagonals(),
			workers:  1,
			want: []Point{
				NewPoint(0, 0), NewPoint(0, 1), NewPoint(0.5, 0.5), NewPoint(1, 0), NewPoint(1, 1),
			},
		},
		{
			name:     "unit square without diagonals has only corners",
			segments: unitSquareWithDiagonals()[:4],
			workers:  4,
			want: []Point{
				NewPoint(0, 0), NewPoint(0, 1), NewPoint(1, 0), NewPoint(1, 1),
			},
		},
		{
			name:     "no segments",
			segments: nil,
			workers:  1,
			want:     []Point{},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := FindIntersections(tt.segments, 4, tt.workers)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindCrossingsParallelMatchesSequential(t *testing.T) {
	// 40 horizontal and 40 vertical roads of a grid, all crossing each other
	segments := make([]LineSegment, 0, 80)
	for i := 0; i < 40; i++ {
		y := float64(i) + 0.5
		segments = append(segments, NewLineSegment("h", NewPoint(0, y), NewPoint(40, y)))
	}
	for i := 0; i < 40; i++ {
		x := float64(i) + 0.5
		segments = append(segments, NewLineSegment("v", NewPoint(x, 0), NewPoint(x, 40)))
	}

	seq := FindCrossings(segments, 1)
	par := FindCrossings(segments, 8)
	require.Len(t, seq, 40*40)
	assert.Equal(t, seq, par)

	points := FindIntersections(segments, 4, 8)
	assert.Len(t, points, 40*40+4*40)
}

func TestMergeIntersections(t *testing.T) {
	segments := []LineSegment{
		NewLineSegment("d1", NewPoint(0, 0), NewPoint(1, 1)),
		NewLineSegment("d2", NewPoint(0, 1), NewPoint(1, 0)),
	}
	crossings := FindCrossings(segments, 1)

	assert.Equal(t, FindIntersections(segments, 4, 1), MergeIntersections(segments, crossings, nil, 4))

	merged := MergeIntersections(segments, crossings, []Point{NewPoint(2, 2), NewPoint(0.50001, 0.5)}, 4)
	assert.Equal(t, []Point{
		NewPoint(0, 0), NewPoint(0, 1), NewPoint(0.5, 0.5), NewPoint(1, 0), NewPoint(1, 1), NewPoint(2, 2),
	}, merged)
}

func TestDedupPoints(t *testing.T) {
	points := []Point{
		NewPoint(0.00001, 0.00002),
		NewPoint(0.00003, 0),
		NewPoint(1.23456, 2.34567),
		NewPoint(1.23459, 2.34571),
		NewPoint(math.NaN(), 1),
	}

	once := DedupPoints(points, 4)
	assert.Equal(t, []Point{NewPoint(0, 0), NewPoint(1.2346, 2.3457)}, once)

	twice := DedupPoints(once, 4)
	assert.Equal(t, once, twice)
}
