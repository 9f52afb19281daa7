package routing

import (
	"math"

	"github.com/lintang-b-s/Congestionx/pkg"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/util"
)

type vertexInfo struct {
	dist       float64
	parent     da.Index
	parentEdge da.Index
	heapNode   *da.PriorityQueueNode[da.Index]
	settled    bool
}

// Dijkstra is a reusable single-pair search. not safe for concurrent use, create one per goroutine.
type Dijkstra struct {
	graph   WeightedGraph
	info    []vertexInfo
	touched []da.Index
	pq      *da.MinHeap[da.Index]
}

func NewDijkstra(graph WeightedGraph) *Dijkstra {
	n := graph.NumberOfVertices()
	info := make([]vertexInfo, n)
	for i := range info {
		info[i] = vertexInfo{dist: pkg.INF_WEIGHT, parent: da.INVALID_VERTEX_ID, parentEdge: da.INVALID_EDGE_ID}
	}
	return &Dijkstra{
		graph:   graph,
		info:    info,
		touched: make([]da.Index, 0),
		pq:      da.NewFourAryHeap[da.Index](),
	}
}

func (d *Dijkstra) reset() {
	for _, v := range d.touched {
		d.info[v] = vertexInfo{dist: pkg.INF_WEIGHT, parent: da.INVALID_VERTEX_ID, parentEdge: da.INVALID_EDGE_ID}
	}
	d.touched = d.touched[:0]
	d.pq.Clear()
}

func (d *Dijkstra) label(v da.Index, dist float64, parent, parentEdge da.Index) {
	info := &d.info[v]
	if info.heapNode == nil {
		d.touched = append(d.touched, v)
		info.heapNode = da.NewPriorityQueueNode(dist, v)
		info.dist, info.parent, info.parentEdge = dist, parent, parentEdge
		d.pq.Insert(info.heapNode)
		return
	}
	info.dist, info.parent, info.parentEdge = dist, parent, parentEdge
	d.pq.DecreaseKey(info.heapNode, dist)
}

// ShortestPath from s to t, skipping bannedEdges and any vertex v with bannedVertices[v] (nil = none banned).
func (d *Dijkstra) ShortestPath(s, t da.Index, bannedEdges map[da.Index]struct{}, bannedVertices []bool) (Path, bool) {
	d.reset()
	n := da.Index(d.graph.NumberOfVertices())
	if s >= n || t >= n {
		return Path{}, false
	}
	if bannedVertices != nil && (bannedVertices[s] || bannedVertices[t]) {
		return Path{}, false
	}

	d.label(s, 0, da.INVALID_VERTEX_ID, da.INVALID_EDGE_ID)

	for !d.pq.IsEmpty() {
		node, _ := d.pq.ExtractMin()
		u := node.GetItem()
		uInfo := &d.info[u]
		uInfo.settled = true

		if u == t {
			return d.buildPath(s, t), true
		}

		d.graph.ForOutArcs(u, func(e *da.Edge, head da.Index) {
			if d.info[head].settled {
				return
			}
			if bannedVertices != nil && bannedVertices[head] {
				return
			}
			if _, banned := bannedEdges[e.GetID()]; banned {
				return
			}

			w := e.GetWeight()
			if math.IsNaN(w) || w >= pkg.INF_WEIGHT {
				return
			}
			newDist := uInfo.dist + w
			if newDist < d.info[head].dist {
				d.label(head, newDist, u, e.GetID())
			}
		})
	}
	return Path{}, false
}

func (d *Dijkstra) buildPath(s, t da.Index) Path {
	vertices := make([]da.Index, 0, 8)
	edges := make([]da.Index, 0, 8)
	for v := t; v != s; v = d.info[v].parent {
		vertices = append(vertices, v)
		edges = append(edges, d.info[v].parentEdge)
	}
	vertices = append(vertices, s)

	return Path{Vertices: util.ReverseG(vertices), Edges: util.ReverseG(edges), Weight: d.info[t].dist}
}
