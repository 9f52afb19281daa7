package routing

import (
	"github.com/lintang-b-s/Congestionx/pkg/congestion"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
)

// WeightedGraph is what Dijkstra and Yen search on. edges are visited from both endpoints.
type WeightedGraph interface {
	NumberOfVertices() int
	ForOutArcs(u da.Index, handle func(e *da.Edge, head da.Index))
}

// SampleProvider gives the latest traffic snapshot at query time.
type SampleProvider interface {
	Samples() []congestion.TrafficSample
}

type StaticSamples []congestion.TrafficSample

func (s StaticSamples) Samples() []congestion.TrafficSample {
	return s
}
