package datastructure

import (
	"math"
	"sync/atomic"

	"github.com/lintang-b-s/Congestionx/pkg"
)

type Index uint32

const (
	INVALID_VERTEX_ID Index = math.MaxUint32
	INVALID_EDGE_ID   Index = math.MaxUint32
)

type Vertex struct {
	x, y     float64
	firstOut Index // index of the first arc of this vertex in the flattened graph.arcs array
	id       Index
}

func NewVertex(x, y float64, id Index) *Vertex {
	return &Vertex{
		x:  x,
		y:  y,
		id: id,
	}
}

func (v *Vertex) GetID() Index {
	return v.id
}

func (v *Vertex) GetX() float64 {
	return v.x
}

func (v *Vertex) GetY() float64 {
	return v.y
}

func (v *Vertex) GetPoint() Point {
	return Point{X: v.x, Y: v.y}
}

func (v *Vertex) GetFirstOut() Index {
	return v.firstOut
}

func (v *Vertex) SetFirstOut(firstOut Index) {
	v.firstOut = firstOut
}

// Edge is stored once and is traversable in both directions.
// multiplier is the only field written after construction; it is kept as float64 bits so concurrent refreshes never tear.
type Edge struct {
	id         Index
	from, to   Index
	baseLength float64 // real-world units (euclidean units or km)
	lanes      uint8
	speedLimit float64 // km/h, 0 = unknown
	kind       pkg.RoadKind
	segmentID  string
	multiplier atomic.Uint64
}

func NewEdge(id, from, to Index, baseLength float64, kind pkg.RoadKind, segmentID string) *Edge {
	e := &Edge{
		id:         id,
		from:       from,
		to:         to,
		baseLength: baseLength,
		kind:       kind,
		segmentID:  segmentID,
		lanes:      1,
	}
	e.multiplier.Store(math.Float64bits(1.0))
	return e
}

func (e *Edge) GetID() Index {
	return e.id
}

func (e *Edge) GetFrom() Index {
	return e.from
}

func (e *Edge) GetTo() Index {
	return e.to
}

// GetOtherEnd. the endpoint of e that is not u.
func (e *Edge) GetOtherEnd(u Index) Index {
	if e.from == u {
		return e.to
	}
	return e.from
}

func (e *Edge) GetBaseLength() float64 {
	return e.baseLength
}

func (e *Edge) GetLanes() uint8 {
	return e.lanes
}

func (e *Edge) SetLanes(lanes uint8) {
	e.lanes = lanes
}

func (e *Edge) GetSpeedLimit() float64 {
	return e.speedLimit
}

func (e *Edge) SetSpeedLimit(speedLimit float64) {
	e.speedLimit = speedLimit
}

func (e *Edge) GetKind() pkg.RoadKind {
	return e.kind
}

func (e *Edge) GetSegmentID() string {
	return e.segmentID
}

func (e *Edge) GetMultiplier() float64 {
	return math.Float64frombits(e.multiplier.Load())
}

func (e *Edge) SetMultiplier(m float64) {
	e.multiplier.Store(math.Float64bits(m))
}

// GetWeight. weight = baseLength * congestion multiplier
func (e *Edge) GetWeight() float64 {
	return e.baseLength * e.GetMultiplier()
}

// arc is one direction of an edge, as seen from its tail vertex.
type Arc struct {
	edgeId Index
	head   Index
}

func (a Arc) GetEdgeID() Index {
	return a.edgeId
}

func (a Arc) GetHead() Index {
	return a.head
}

type MapMetadata struct {
	Width             float64 `json:"width"`
	Height            float64 `json:"height"`
	DefaultSpeedLimit float64 `json:"default_speed_limit"`
	MinSeparation     float64 `json:"min_separation"`
	CoordinateSystem  string  `json:"coordinate_system"`
}

// Graph is the routable arena graph. topology is immutable after NewGraph; only edge multipliers change.
type Graph struct {
	vertices      []*Vertex // len = n+1, last one is a sentinel for firstOut
	arcs          []Arc
	edges         []*Edge
	intersections []Point

	// connected components
	components    []Index // vertexId -> componentId
	numComponents int

	boundingBox *BoundingBox
	metadata    MapMetadata
}

// NewGraph. vertices must be ordered by id (vertices[i].id == i) and every edge must reference two distinct vertices.
func NewGraph(vertices []*Vertex, edges []*Edge) *Graph {
	n := len(vertices)
	degree := make([]Index, n+1)
	for _, e := range edges {
		degree[e.from]++
		degree[e.to]++
	}

	vs := make([]*Vertex, n+1)
	copy(vs, vertices)
	vs[n] = NewVertex(0, 0, Index(n))

	offset := Index(0)
	for i := 0; i <= n; i++ {
		vs[i].firstOut = offset
		offset += degree[i]
	}

	arcs := make([]Arc, offset)
	fill := make([]Index, n)
	for _, e := range edges {
		arcs[vs[e.from].firstOut+fill[e.from]] = Arc{edgeId: e.id, head: e.to}
		fill[e.from]++
		arcs[vs[e.to].firstOut+fill[e.to]] = Arc{edgeId: e.id, head: e.from}
		fill[e.to]++
	}

	g := &Graph{
		vertices:      vs,
		arcs:          arcs,
		edges:         edges,
		intersections: make([]Point, 0),
	}
	g.boundingBox = g.computeBoundingBox()
	g.labelComponents()
	return g
}

func (g *Graph) computeBoundingBox() *BoundingBox {
	bb := NewEmptyBoundingBox()
	for i := 0; i < g.NumberOfVertices(); i++ {
		bb.Extend(g.vertices[i].x, g.vertices[i].y)
	}
	return bb
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices) - 1
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *Graph) GetVertex(u Index) *Vertex {
	return g.vertices[u]
}

func (g *Graph) GetVertexCoordinates(u Index) (float64, float64) {
	return g.vertices[u].x, g.vertices[u].y
}

func (g *Graph) GetVertexPoint(u Index) Point {
	return g.vertices[u].GetPoint()
}

func (g *Graph) GetEdge(e Index) *Edge {
	return g.edges[e]
}

func (g *Graph) GetDegree(u Index) Index {
	return g.vertices[u+1].firstOut - g.vertices[u].firstOut
}

// ForOutArcs. visits every edge incident to u, reporting the vertex on the other side.
func (g *Graph) ForOutArcs(u Index, handle func(e *Edge, head Index)) {
	for a := g.vertices[u].firstOut; a < g.vertices[u+1].firstOut; a++ {
		arc := g.arcs[a]
		handle(g.edges[arc.edgeId], arc.head)
	}
}

func (g *Graph) ForEdges(handle func(e *Edge)) {
	for _, e := range g.edges {
		handle(e)
	}
}

func (g *Graph) ForVertices(handle func(v *Vertex)) {
	for i := 0; i < g.NumberOfVertices(); i++ {
		handle(g.vertices[i])
	}
}

// FindEdge returns the cheapest edge between u and v.
func (g *Graph) FindEdge(u, v Index) (Index, bool) {
	best := INVALID_EDGE_ID
	bestWeight := math.Inf(1)
	g.ForOutArcs(u, func(e *Edge, head Index) {
		if head == v && e.GetWeight() < bestWeight {
			best = e.id
			bestWeight = e.GetWeight()
		}
	})
	return best, best != INVALID_EDGE_ID
}

// ResetMultipliers puts every edge back to free flow.
func (g *Graph) ResetMultipliers() {
	for _, e := range g.edges {
		e.SetMultiplier(1.0)
	}
}

func (g *Graph) GetIntersections() []Point {
	return g.intersections
}

func (g *Graph) SetIntersections(intersections []Point) {
	g.intersections = intersections
}

func (g *Graph) GetBoundingBox() *BoundingBox {
	return g.boundingBox
}

func (g *Graph) SetBoundingBox(bb *BoundingBox) {
	g.boundingBox = bb
}

func (g *Graph) GetMetadata() MapMetadata {
	return g.metadata
}

func (g *Graph) SetMetadata(md MapMetadata) {
	g.metadata = md
}
