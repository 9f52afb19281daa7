package routing

import (
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
)

// Path is a loopless vertex sequence and the edges joining consecutive vertices. len(Edges) == len(Vertices)-1.
type Path struct {
	Vertices []da.Index
	Edges    []da.Index
	Weight   float64
}

func (p Path) sameRoot(o Path, i int) bool {
	if len(p.Vertices) <= i || len(o.Vertices) <= i || len(p.Edges) < i || len(o.Edges) < i {
		return false
	}
	for j := 0; j <= i; j++ {
		if p.Vertices[j] != o.Vertices[j] {
			return false
		}
	}
	for j := 0; j < i; j++ {
		if p.Edges[j] != o.Edges[j] {
			return false
		}
	}
	return true
}

func (p Path) key() string {
	bb := make([]byte, 0, 4*len(p.Edges))
	for _, e := range p.Edges {
		bb = append(bb, byte(e), byte(e>>8), byte(e>>16), byte(e>>24))
	}
	return string(bb)
}

// lessPath. by weight, then fewer edges, then vertex ids, so equal-weight alternatives come out in a stable order.
func lessPath(a, b Path) bool {
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	if len(a.Edges) != len(b.Edges) {
		return len(a.Edges) < len(b.Edges)
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] {
			return a.Vertices[i] < b.Vertices[i]
		}
	}
	for i := range a.Edges {
		if a.Edges[i] != b.Edges[i] {
			return a.Edges[i] < b.Edges[i]
		}
	}
	return false
}
