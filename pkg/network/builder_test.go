package network

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/Congestionx/pkg"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/geo"
	"github.com/lintang-b-s/Congestionx/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func squareWithDiagonals() Input {
	return Input{
		Segments: []RoadSegment{
			NewHorizontalSegment("h1", 0, 0, 1),
			NewHorizontalSegment("h2", 1, 0, 1),
			NewVerticalSegment("v1", 0, 0, 1),
			NewVerticalSegment("v2", 1, 0, 1),
			NewFreeformSegment("d1", da.NewPoint(0, 0), da.NewPoint(1, 1)),
			NewFreeformSegment("d2", da.NewPoint(1, 0), da.NewPoint(0, 1)),
		},
		Metadata: da.MapMetadata{Width: 1, Height: 1, DefaultSpeedLimit: 40, MinSeparation: 0.1},
	}
}

func plusShape() Input {
	return Input{
		Segments: []RoadSegment{
			NewHorizontalSegment("h", 0, -1, 1),
			NewVerticalSegment("v", 0, -1, 1),
		},
	}
}

func newTestBuilder(split bool) *Builder {
	opts := DefaultOptions()
	opts.SplitAtIntersections = split
	opts.Workers = 2
	return NewBuilder(zap.NewNop(), opts)
}

func TestBuildNetwork(t *testing.T) {
	testCases := []struct {
		name              string
		input             Input
		split             bool
		wantNodes         int
		wantEdges         int
		wantIntersections int
		wantComponents    int
		wantTotalLength   float64
	}{
		{
			name:              "square with diagonals, one edge per segment",
			input:             squareWithDiagonals(),
			wantNodes:         5,
			wantEdges:         6,
			wantIntersections: 5,
			// center node is isolated
			wantComponents:  2,
			wantTotalLength: 4 + 2*math.Sqrt2,
		},
		{
			name:              "square with diagonals, split at crossings",
			input:             squareWithDiagonals(),
			split:             true,
			wantNodes:         5,
			wantEdges:         8,
			wantIntersections: 5,
			wantComponents:    1,
			wantTotalLength:   4 + 2*math.Sqrt2,
		},
		{
			name:              "plus shape",
			input:             plusShape(),
			wantNodes:         5,
			wantEdges:         2,
			wantIntersections: 5,
			wantComponents:    3,
			wantTotalLength:   4,
		},
		{
			name:              "plus shape, split at crossings",
			input:             plusShape(),
			split:             true,
			wantNodes:         5,
			wantEdges:         4,
			wantIntersections: 5,
			wantComponents:    1,
			wantTotalLength:   4,
		},
		{
			name:              "grid fixture",
			input:             GridInput(3, 4, 10),
			wantNodes:         12,
			wantEdges:         3*3 + 4*2,
			wantIntersections: 12,
			wantComponents:    1,
			wantTotalLength:   170,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			net, err := newTestBuilder(tt.split).BuildNetwork(tt.input)
			require.NoError(t, err)

			assert.Len(t, net.Nodes, tt.wantNodes)
			assert.Len(t, net.Edges, tt.wantEdges)
			assert.Len(t, net.Intersections, tt.wantIntersections)
			assert.Empty(t, net.Skipped)

			total := 0.0
			for _, e := range net.Edges {
				assert.NotEqual(t, e.NodeA, e.NodeB)
				assert.Greater(t, e.BaseLength, 0.0)
				total += e.BaseLength
			}
			assert.InDelta(t, tt.wantTotalLength, total, 1e-9)

			for i := range net.Nodes {
				for j := i + 1; j < len(net.Nodes); j++ {
					assert.False(t, da.SamePoint(net.Nodes[i].Position, net.Nodes[j].Position, pkg.NODE_EPSILON))
				}
			}

			g := net.ToGraph()
			assert.Equal(t, tt.wantComponents, g.NumberOfComponents())
		})
	}
}

func TestBuildNetworkSkipsBadSegments(t *testing.T) {
	in := Input{
		Segments: []RoadSegment{
			NewHorizontalSegment("good", 0, 0, 10),
			NewPathSegment("malformed", pkg.FREEFORM, "M 1,abc"),
			NewHorizontalSegment("zero-length", 3, 2, 2),
			NewPathSegment("light", pkg.SIGNAL, "M 5,0 L 5,1"),
			{ID: "mystery", Kind: pkg.UNKNOWN_KIND},
		},
	}

	net, err := newTestBuilder(false).BuildNetwork(in)
	require.NoError(t, err)

	assert.Len(t, net.Edges, 1)
	assert.Equal(t, "good", net.Edges[0].SegmentID)
	require.Len(t, net.Features, 1)
	assert.Equal(t, pkg.SIGNAL, net.Features[0].Kind)

	require.Len(t, net.Skipped, 3)
	assert.Equal(t, "malformed", net.Skipped[0].ID)
	assert.False(t, net.Skipped[0].Degenerate)
	assert.Equal(t, "zero-length", net.Skipped[1].ID)
	assert.True(t, net.Skipped[1].Degenerate)
	assert.Equal(t, "mystery", net.Skipped[2].ID)
}

func TestBuildNetworkWithoutRoutableSegments(t *testing.T) {
	in := Input{Segments: []RoadSegment{NewPathSegment("light", pkg.SIGNAL, "M 5,0 L 5,1")}}

	_, err := newTestBuilder(false).BuildNetwork(in)
	assert.True(t, errors.Is(err, util.ErrBadParamInput))
}

func TestBuildNetworkMergesNearbyEndpoints(t *testing.T) {
	in := Input{
		Segments: []RoadSegment{
			NewFreeformSegment("a", da.NewPoint(0, 0), da.NewPoint(1, 0)),
			NewFreeformSegment("b", da.NewPoint(1.00003, 0), da.NewPoint(2, 0)),
		},
		Intersections: []da.Point{da.NewPoint(5, 5)},
	}

	net, err := newTestBuilder(false).BuildNetwork(in)
	require.NoError(t, err)

	// (1,0) and (1.00003,0) are one node, the declared intersection is its own node
	assert.Len(t, net.Nodes, 4)
	assert.Equal(t, net.Edges[0].NodeB, net.Edges[1].NodeA)
	assert.Contains(t, net.Intersections, da.NewPoint(5, 5))
	assert.True(t, net.ToGraph().Connected(net.Edges[0].NodeA, net.Edges[1].NodeB))
}

func TestBuildNetworkSplitAtDeclaredIntersection(t *testing.T) {
	in := Input{
		Segments:      []RoadSegment{NewHorizontalSegment("h", 0, 0, 10)},
		Intersections: []da.Point{da.NewPoint(4, 0)},
	}

	net, err := newTestBuilder(true).BuildNetwork(in)
	require.NoError(t, err)

	require.Len(t, net.Edges, 2)
	assert.InDelta(t, 4.0, net.Edges[0].BaseLength, 1e-9)
	assert.InDelta(t, 6.0, net.Edges[1].BaseLength, 1e-9)
}

func TestBuildNetworkGeographic(t *testing.T) {
	opts := DefaultOptions()
	opts.CoordinateSystem = geo.GEOGRAPHIC
	b := NewBuilder(zap.NewNop(), opts)

	in := Input{
		Segments: []RoadSegment{
			NewFreeformSegment("equator", da.NewPoint(0, 0), da.NewPoint(1, 0)),
			NewFreeformSegment("off the globe", da.NewPoint(0, 0), da.NewPoint(0, 95)),
		},
	}
	net, err := b.BuildNetwork(in)
	require.NoError(t, err)

	require.Len(t, net.Edges, 1)
	assert.InDelta(t, 111.19, net.Edges[0].BaseLength, 0.01)
	assert.Equal(t, "geographic", net.Metadata.CoordinateSystem)
	require.Len(t, net.Skipped, 1)
	assert.Equal(t, "off the globe", net.Skipped[0].ID)
}

type endpointPair struct {
	a, b da.Point
}

func endpointSet(t *testing.T, segments []RoadSegment) []endpointPair {
	t.Helper()
	pairs := make([]endpointPair, 0, len(segments))
	for _, s := range segments {
		start, end, err := s.Resolve()
		require.NoError(t, err)
		pairs = append(pairs, endpointPair{start, end})
	}
	return pairs
}

func TestNetworkSegmentsRoundTrip(t *testing.T) {
	in := squareWithDiagonals()
	net, err := newTestBuilder(false).BuildNetwork(in)
	require.NoError(t, err)

	derived := net.Segments()
	assert.ElementsMatch(t, endpointSet(t, in.Segments), endpointSet(t, derived))

	rebuilt, err := newTestBuilder(false).BuildNetwork(Input{Segments: derived, Metadata: in.Metadata})
	require.NoError(t, err)
	assert.Equal(t, net.Nodes, rebuilt.Nodes)
	assert.Equal(t, net.Intersections, rebuilt.Intersections)
	assert.Len(t, rebuilt.Edges, len(net.Edges))
}

func TestNetworkFromGraph(t *testing.T) {
	net, err := newTestBuilder(true).BuildNetwork(squareWithDiagonals())
	require.NoError(t, err)

	got := FromGraph(net.ToGraph())
	assert.Equal(t, net.Nodes, got.Nodes)
	assert.Equal(t, net.Edges, got.Edges)
	assert.Equal(t, net.Intersections, got.Intersections)
	assert.Equal(t, net.Metadata, got.Metadata)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "network.json")
		content := `{
			"segments": [
				{"id": "h1", "kind": "horizontal", "fixed": 0, "from": 0, "to": 100},
				{"id": "r1", "kind": "freeform", "path": "M 50,-50 L 50,50"},
				{"id": "s1", "kind": "signal", "start": {"x": 10, "y": 0}, "end": {"x": 10, "y": 5}}
			],
			"metadata": {"width": 100, "height": 100, "default_speed_limit": 30, "min_separation": 5}
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		src := NewFileSource(path)
		assert.Equal(t, "network.json", src.Name())

		in, err := src.Load(context.Background())
		require.NoError(t, err)
		require.Len(t, in.Segments, 3)
		assert.Equal(t, pkg.HORIZONTAL, in.Segments[0].Kind)
		assert.Equal(t, 30.0, in.Metadata.DefaultSpeedLimit)

		net, err := newTestBuilder(true).BuildNetwork(in)
		require.NoError(t, err)
		assert.Len(t, net.Edges, 4)
		assert.Len(t, net.Features, 1)
		assert.Equal(t, 30.0, net.Edges[0].SpeedLimit)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"segments": [`), 0o644))

		_, err := NewFileSource(path).Load(context.Background())
		assert.True(t, errors.Is(err, util.ErrBadParamInput))
	})

	t.Run("one bad record", func(t *testing.T) {
		path := filepath.Join(dir, "partial.json")
		content := `{
			"segments": [
				{"id": "h1", "kind": "horizontal", "fixed": 0, "from": 0, "to": 10},
				{"id": "h2", "kind": "horizontal", "fixed": "oops", "from": 0, "to": 10},
				{"kind": "vertical", "fixed": 5, "from": "x", "to": 10},
				{"id": "v1", "kind": "vertical", "fixed": 5, "from": -5, "to": 5}
			]
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		in, err := NewFileSource(path).Load(context.Background())
		require.NoError(t, err)
		require.Len(t, in.Segments, 2)
		require.Len(t, in.Rejected, 2)
		assert.Equal(t, "h2", in.Rejected[0].ID)
		assert.Equal(t, "segments[2]", in.Rejected[1].ID)
		assert.False(t, in.Rejected[0].Degenerate)

		net, err := newTestBuilder(false).BuildNetwork(in)
		require.NoError(t, err)
		assert.Len(t, net.Edges, 2)
		require.Len(t, net.Skipped, 2)
		assert.Equal(t, "h2", net.Skipped[0].ID)
		assert.Contains(t, net.Skipped[0].Reason, "segment record 1")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(dir, "nope.json")).Load(context.Background())
		assert.Error(t, err)
	})
}
