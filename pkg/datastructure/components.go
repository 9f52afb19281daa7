package datastructure

// labelComponents. edges are bidirectional, so strongly connected components are plain connected components.
// iterative bfs, one label per vertex.
func (g *Graph) labelComponents() {
	n := g.NumberOfVertices()
	components := make([]Index, n)
	visited := make([]bool, n)
	numComponents := 0

	queue := make([]Index, 0, 16)
	for s := 0; s < n; s++ {
		if visited[s] {
			continue
		}
		label := Index(numComponents)
		numComponents++

		visited[s] = true
		queue = append(queue[:0], Index(s))
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			components[u] = label
			g.ForOutArcs(u, func(e *Edge, head Index) {
				if !visited[head] {
					visited[head] = true
					queue = append(queue, head)
				}
			})
		}
	}

	g.components = components
	g.numComponents = numComponents
}

func (g *Graph) GetComponent(u Index) Index {
	return g.components[u]
}

func (g *Graph) NumberOfComponents() int {
	return g.numComponents
}

// Connected. true if some path joins u and v.
func (g *Graph) Connected(u, v Index) bool {
	return g.components[u] == g.components[v]
}
