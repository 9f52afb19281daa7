package routing

import (
	"sort"

	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
)

// KShortestPaths returns up to k loopless paths from s to t in ascending weight (Yen's algorithm over Dijkstra).
// an empty result means t is unreachable from s.
func KShortestPaths(g WeightedGraph, s, t da.Index, k int) []Path {
	if k <= 0 {
		return []Path{}
	}

	dijkstra := NewDijkstra(g)
	first, ok := dijkstra.ShortestPath(s, t, nil, nil)
	if !ok {
		return []Path{}
	}

	weightOf := edgeWeights(g)

	accepted := []Path{first}
	seen := map[string]struct{}{first.key(): {}}
	candidates := make([]Path, 0)

	bannedVertices := make([]bool, g.NumberOfVertices())
	for len(accepted) < k {
		prev := accepted[len(accepted)-1]

		for i := 0; i < len(prev.Vertices)-1; i++ {
			spur := prev.Vertices[i]

			bannedEdges := make(map[da.Index]struct{})
			for _, p := range accepted {
				if p.sameRoot(prev, i) && len(p.Edges) > i {
					bannedEdges[p.Edges[i]] = struct{}{}
				}
			}
			for _, v := range prev.Vertices[:i] {
				bannedVertices[v] = true
			}

			spurPath, found := dijkstra.ShortestPath(spur, t, bannedEdges, bannedVertices)

			for _, v := range prev.Vertices[:i] {
				bannedVertices[v] = false
			}
			if !found {
				continue
			}

			total := Path{
				Vertices: make([]da.Index, 0, i+len(spurPath.Vertices)),
				Edges:    make([]da.Index, 0, i+len(spurPath.Edges)),
			}
			total.Vertices = append(total.Vertices, prev.Vertices[:i]...)
			total.Vertices = append(total.Vertices, spurPath.Vertices...)
			total.Edges = append(total.Edges, prev.Edges[:i]...)
			total.Edges = append(total.Edges, spurPath.Edges...)

			key := total.key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			for _, e := range total.Edges {
				total.Weight += weightOf(e)
			}
			candidates = append(candidates, total)
		}

		if len(candidates) == 0 {
			break
		}

		best := 0
		for i := 1; i < len(candidates); i++ {
			if lessPath(candidates[i], candidates[best]) {
				best = i
			}
		}
		accepted = append(accepted, candidates[best])
		candidates = append(candidates[:best], candidates[best+1:]...)
	}

	// weights can move under a concurrent refresh; keep the output ordered regardless
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Weight < accepted[j].Weight
	})
	return accepted
}

// edgeWeights resolves an edge id to its current weight. graphs without an edge lookup are scanned once.
func edgeWeights(g WeightedGraph) func(e da.Index) float64 {
	if lookup, ok := g.(interface{ GetEdge(e da.Index) *da.Edge }); ok {
		return func(e da.Index) float64 {
			return lookup.GetEdge(e).GetWeight()
		}
	}

	edges := make(map[da.Index]*da.Edge)
	for u := 0; u < g.NumberOfVertices(); u++ {
		g.ForOutArcs(da.Index(u), func(e *da.Edge, head da.Index) {
			edges[e.GetID()] = e
		})
	}
	return func(e da.Index) float64 {
		return edges[e].GetWeight()
	}
}
