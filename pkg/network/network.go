package network

import (
	"github.com/lintang-b-s/Congestionx/pkg"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
)

type Node struct {
	ID       da.Index `json:"id"`
	Position da.Point `json:"position"`
}

type Edge struct {
	ID         da.Index     `json:"id"`
	NodeA      da.Index     `json:"node_a"`
	NodeB      da.Index     `json:"node_b"`
	BaseLength float64      `json:"base_length"`
	Lanes      uint8        `json:"lanes"`
	SpeedLimit float64      `json:"speed_limit"`
	Kind       pkg.RoadKind `json:"kind"`
	SegmentID  string       `json:"segment_id"`
}

// Feature is a metadata-only segment (signal, entrance, exit) kept for overlays.
type Feature struct {
	ID    string       `json:"id"`
	Kind  pkg.RoadKind `json:"kind"`
	Start da.Point     `json:"start"`
	End   da.Point     `json:"end"`
}

type SkippedSegment struct {
	ID         string `json:"id"`
	Reason     string `json:"reason"`
	Degenerate bool   `json:"degenerate"` // false = malformed input
}

// Network is the canonical topology: nodes, edges and intersections.
type Network struct {
	Nodes         []Node           `json:"nodes"`
	Edges         []Edge           `json:"edges"`
	Intersections []da.Point       `json:"intersections"`
	Features      []Feature        `json:"features"`
	Skipped       []SkippedSegment `json:"skipped,omitempty"`
	Metadata      da.MapMetadata   `json:"metadata"`
}

func newNetwork(md da.MapMetadata) *Network {
	return &Network{
		Nodes:         make([]Node, 0),
		Edges:         make([]Edge, 0),
		Intersections: make([]da.Point, 0),
		Features:      make([]Feature, 0),
		Skipped:       make([]SkippedSegment, 0),
		Metadata:      md,
	}
}

// ToGraph builds the routable arena graph. node and edge ids are kept.
func (n *Network) ToGraph() *da.Graph {
	vertices := make([]*da.Vertex, len(n.Nodes))
	for i, node := range n.Nodes {
		vertices[i] = da.NewVertex(node.Position.X, node.Position.Y, node.ID)
	}

	edges := make([]*da.Edge, len(n.Edges))
	for i, e := range n.Edges {
		edge := da.NewEdge(e.ID, e.NodeA, e.NodeB, e.BaseLength, e.Kind, e.SegmentID)
		edge.SetLanes(e.Lanes)
		edge.SetSpeedLimit(e.SpeedLimit)
		edges[i] = edge
	}

	g := da.NewGraph(vertices, edges)
	g.SetIntersections(n.Intersections)
	g.SetMetadata(n.Metadata)
	return g
}

// Segments re-derives one freeform segment per edge, using the edge's node positions as endpoints.
func (n *Network) Segments() []RoadSegment {
	segments := make([]RoadSegment, 0, len(n.Edges))
	for _, e := range n.Edges {
		seg := NewFreeformSegment(e.SegmentID, n.Nodes[e.NodeA].Position, n.Nodes[e.NodeB].Position)
		seg.Lanes = e.Lanes
		seg.SpeedLimit = e.SpeedLimit
		segments = append(segments, seg)
	}
	return segments
}

// FromGraph reads the topology back out of a (possibly cache-loaded) graph. features and skipped segments are not part of the graph.
func FromGraph(g *da.Graph) *Network {
	n := newNetwork(g.GetMetadata())

	g.ForVertices(func(v *da.Vertex) {
		n.Nodes = append(n.Nodes, Node{ID: v.GetID(), Position: v.GetPoint()})
	})

	g.ForEdges(func(e *da.Edge) {
		n.Edges = append(n.Edges, Edge{
			ID:         e.GetID(),
			NodeA:      e.GetFrom(),
			NodeB:      e.GetTo(),
			BaseLength: e.GetBaseLength(),
			Lanes:      e.GetLanes(),
			SpeedLimit: e.GetSpeedLimit(),
			Kind:       e.GetKind(),
			SegmentID:  e.GetSegmentID(),
		})
	})

	n.Intersections = append(n.Intersections, g.GetIntersections()...)
	return n
}
