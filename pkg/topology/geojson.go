package topology

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/lintang-b-s/Congestionx/pkg"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/network"
)

const (
	NODE_FEATURE         = "node"
	EDGE_FEATURE         = "edge"
	INTERSECTION_FEATURE = "intersection"
	OVERLAY_FEATURE      = "overlay"
)

func coords(p da.Point) []float64 {
	return []float64{p.X, p.Y}
}

// ToGeoJSON renders the topology as one feature collection: nodes and intersections as points, edges as
// line strings and overlay features as points or line strings. when g is not nil each edge also carries its
// current congestion multiplier.
func ToGeoJSON(net *network.Network, g *da.Graph) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, n := range net.Nodes {
		f := geojson.NewPointFeature(coords(n.Position))
		f.ID = n.ID
		f.SetProperty("type", NODE_FEATURE)
		fc.AddFeature(f)
	}

	for _, e := range net.Edges {
		a, b := net.Nodes[e.NodeA].Position, net.Nodes[e.NodeB].Position
		f := geojson.NewLineStringFeature([][]float64{coords(a), coords(b)})
		f.ID = e.ID
		f.SetProperty("type", EDGE_FEATURE)
		f.SetProperty("segment_id", e.SegmentID)
		f.SetProperty("kind", e.Kind.String())
		f.SetProperty("node_a", e.NodeA)
		f.SetProperty("node_b", e.NodeB)
		f.SetProperty("base_length", e.BaseLength)
		f.SetProperty("lanes", e.Lanes)
		f.SetProperty("speed_limit", e.SpeedLimit)

		if g != nil && int(e.ID) < g.NumberOfEdges() {
			m := g.GetEdge(e.ID).GetMultiplier()
			f.SetProperty("multiplier", m)
			f.SetProperty("congestion_level", pkg.CongestionLevelFromMultiplier(m).String())
		}
		fc.AddFeature(f)
	}

	for _, p := range net.Intersections {
		f := geojson.NewPointFeature(coords(p))
		f.SetProperty("type", INTERSECTION_FEATURE)
		fc.AddFeature(f)
	}

	for _, feat := range net.Features {
		var f *geojson.Feature
		if da.SamePoint(feat.Start, feat.End, da.EPS) {
			f = geojson.NewPointFeature(coords(feat.Start))
		} else {
			f = geojson.NewLineStringFeature([][]float64{coords(feat.Start), coords(feat.End)})
		}
		f.ID = feat.ID
		f.SetProperty("type", OVERLAY_FEATURE)
		f.SetProperty("kind", feat.Kind.String())
		fc.AddFeature(f)
	}

	return fc
}
