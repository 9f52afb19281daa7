package datastructure

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/Congestionx/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square 0-1-2-3 plus a detached edge 4-5
func newTestGraph() *Graph {
	vertices := []*Vertex{
		NewVertex(0, 0, 0),
		NewVertex(1, 0, 1),
		NewVertex(1, 1, 2),
		NewVertex(0, 1, 3),
		NewVertex(5, 5, 4),
		NewVertex(6, 5, 5),
	}
	edges := []*Edge{
		NewEdge(0, 0, 1, 1, pkg.HORIZONTAL, "h1"),
		NewEdge(1, 1, 2, 1, pkg.VERTICAL, "v2"),
		NewEdge(2, 2, 3, 1, pkg.HORIZONTAL, "h2"),
		NewEdge(3, 3, 0, 1, pkg.VERTICAL, "v1"),
		NewEdge(4, 4, 5, 1, pkg.FREEFORM, "detached road"),
	}
	return NewGraph(vertices, edges)
}

func TestGraphAdjacency(t *testing.T) {
	g := newTestGraph()

	assert.Equal(t, 6, g.NumberOfVertices())
	assert.Equal(t, 5, g.NumberOfEdges())

	testCases := []struct {
		name      string
		u         Index
		wantHeads []Index
	}{
		{name: "corner with two roads", u: 0, wantHeads: []Index{1, 3}},
		{name: "edges are traversable from their to side", u: 2, wantHeads: []Index{1, 3}},
		{name: "detached road", u: 5, wantHeads: []Index{4}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			heads := make([]Index, 0)
			g.ForOutArcs(tt.u, func(e *Edge, head Index) {
				assert.Equal(t, head, e.GetOtherEnd(tt.u))
				heads = append(heads, head)
			})
			assert.ElementsMatch(t, tt.wantHeads, heads)
			assert.Equal(t, Index(len(tt.wantHeads)), g.GetDegree(tt.u))
		})
	}
}

func TestGraphComponents(t *testing.T) {
	g := newTestGraph()

	assert.Equal(t, 2, g.NumberOfComponents())
	assert.True(t, g.Connected(0, 2))
	assert.True(t, g.Connected(4, 5))
	assert.False(t, g.Connected(0, 5))
}

func TestEdgeMultiplier(t *testing.T) {
	g := newTestGraph()
	e := g.GetEdge(0)

	assert.Equal(t, 1.0, e.GetMultiplier())
	assert.Equal(t, 1.0, e.GetWeight())

	e.SetMultiplier(3.0)
	assert.Equal(t, 3.0, e.GetWeight())

	id, ok := g.FindEdge(1, 0)
	require.True(t, ok)
	assert.Equal(t, Index(0), id)

	_, ok = g.FindEdge(0, 2)
	assert.False(t, ok)

	g.ResetMultipliers()
	assert.Equal(t, 1.0, e.GetWeight())
}

func TestGraphBoundingBox(t *testing.T) {
	g := newTestGraph()
	bb := g.GetBoundingBox()

	assert.Equal(t, 0.0, bb.GetMinX())
	assert.Equal(t, 0.0, bb.GetMinY())
	assert.Equal(t, 6.0, bb.GetMaxX())
	assert.Equal(t, 5.0, bb.GetMaxY())
	assert.True(t, bb.Contains(3, 3))
	assert.False(t, bb.Contains(-0.1, 3))
}

func assertSameGraph(t *testing.T, want, got *Graph) {
	t.Helper()
	require.Equal(t, want.NumberOfVertices(), got.NumberOfVertices())
	require.Equal(t, want.NumberOfEdges(), got.NumberOfEdges())

	for i := 0; i < want.NumberOfVertices(); i++ {
		assert.Equal(t, want.GetVertexPoint(Index(i)), got.GetVertexPoint(Index(i)))
	}
	for i := 0; i < want.NumberOfEdges(); i++ {
		we, ge := want.GetEdge(Index(i)), got.GetEdge(Index(i))
		assert.Equal(t, we.GetFrom(), ge.GetFrom())
		assert.Equal(t, we.GetTo(), ge.GetTo())
		assert.Equal(t, we.GetBaseLength(), ge.GetBaseLength())
		assert.Equal(t, we.GetLanes(), ge.GetLanes())
		assert.Equal(t, we.GetSpeedLimit(), ge.GetSpeedLimit())
		assert.Equal(t, we.GetKind(), ge.GetKind())
		assert.Equal(t, we.GetSegmentID(), ge.GetSegmentID())
	}
	assert.Equal(t, want.GetIntersections(), got.GetIntersections())
	assert.Equal(t, want.GetMetadata(), got.GetMetadata())
	assert.Equal(t, want.NumberOfComponents(), got.NumberOfComponents())
	assert.Equal(t, *want.GetBoundingBox(), *got.GetBoundingBox())
}

func TestGraphReadWrite(t *testing.T) {
	g := newTestGraph()
	g.GetEdge(1).SetLanes(3)
	g.GetEdge(1).SetSpeedLimit(50)
	g.SetIntersections([]Point{NewPoint(0, 0), NewPoint(0.5, 0.5)})
	g.SetMetadata(MapMetadata{Width: 800, Height: 600, DefaultSpeedLimit: 40, MinSeparation: 5, CoordinateSystem: "planar"})

	t.Run("plain text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, g.Encode(&buf))

		got, err := ReadGraphFrom(&buf)
		require.NoError(t, err)
		assertSameGraph(t, g, got)
	})

	t.Run("bzip2 file", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "network.graph")
		require.NoError(t, g.WriteGraph(filename))

		got, err := ReadGraph(filename)
		require.NoError(t, err)
		assertSameGraph(t, g, got)
		assert.Equal(t, 1.0, got.GetEdge(0).GetMultiplier())
	})

	t.Run("corrupt header", func(t *testing.T) {
		_, err := ReadGraphFrom(bytes.NewBufferString("1 2\n"))
		assert.Error(t, err)
	})
}

func TestMinHeap(t *testing.T) {
	h := NewFourAryHeap[Index]()
	nodes := make([]*PriorityQueueNode[Index], 0)
	for i, rank := range []float64{5, 3, 8, 1, 9, 2, 7} {
		node := NewPriorityQueueNode(rank, Index(i))
		nodes = append(nodes, node)
		h.Insert(node)
	}

	require.NoError(t, h.DecreaseKey(nodes[4], 0.5))
	assert.Error(t, h.DecreaseKey(nodes[0], 10))

	got := make([]Index, 0)
	for !h.IsEmpty() {
		node, err := h.ExtractMin()
		require.NoError(t, err)
		got = append(got, node.GetItem())
	}
	assert.Equal(t, []Index{4, 3, 5, 1, 0, 6, 2}, got)

	_, err := h.ExtractMin()
	assert.Error(t, err)
}
