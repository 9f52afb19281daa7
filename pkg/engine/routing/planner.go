package routing

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/Congestionx/pkg"
	"github.com/lintang-b-s/Congestionx/pkg/congestion"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/geo"
	"github.com/lintang-b-s/Congestionx/pkg/spatialindex"
	"github.com/lintang-b-s/Congestionx/pkg/util"
	"go.uber.org/zap"
)

type Config struct {
	ServiceArea      *da.BoundingBox // nil = bounding box of the graph
	CoordinateSystem geo.CoordinateSystem
	MatchRadius      float64
	TrivialThreshold float64
	NominalSpeedKmh  float64
	MaxAlternatives  int
	SnapCacheSize    int
}

func DefaultConfig() Config {
	return Config{
		CoordinateSystem: geo.PLANAR,
		MatchRadius:      pkg.DEFAULT_MATCH_RADIUS,
		TrivialThreshold: pkg.TRIVIAL_ROUTE_THRESHOLD,
		NominalSpeedKmh:  pkg.DEFAULT_NOMINAL_SPEED_KMH,
		MaxAlternatives:  pkg.DEFAULT_MAX_ALTERNATIVES,
		SnapCacheSize:    DEFAULT_SNAP_CACHE_SIZE,
	}
}

type Route struct {
	Coordinates          []da.Point `json:"coordinates"`
	TotalDistance        float64    `json:"total_distance"`
	EstimatedTimeMinutes float64    `json:"estimated_time_minutes"`
	AverageCongestion    float64    `json:"average_congestion"`
	CongestionLevel      string     `json:"congestion_level"`
	Weight               float64    `json:"weight"`
	EdgeCount            int        `json:"edge_count"`
	Warning              string     `json:"warning,omitempty"`
	AlternativeRoutes    []Route    `json:"alternative_routes"`
}

type snapKey [2]float64

// Planner answers route queries over one cached graph. edge weights are refreshed in place right before each search,
// so two concurrent queries may interleave their refreshes: results are eventually consistent, not a snapshot.
type Planner struct {
	graph     *da.Graph
	index     *spatialindex.PointIndex[da.Index]
	model     *congestion.Model
	samples   SampleProvider
	cfg       Config
	snapCache *lru.Cache[snapKey, da.Index]
	log       *zap.Logger
}

func NewPlanner(graph *da.Graph, model *congestion.Model, samples SampleProvider, cfg Config, log *zap.Logger) (*Planner, error) {
	def := DefaultConfig()
	if cfg.CoordinateSystem == "" {
		cfg.CoordinateSystem = def.CoordinateSystem
	}
	if cfg.NominalSpeedKmh <= 0 {
		cfg.NominalSpeedKmh = def.NominalSpeedKmh
	}
	if cfg.MaxAlternatives <= 0 {
		cfg.MaxAlternatives = def.MaxAlternatives
	}
	if cfg.SnapCacheSize <= 0 {
		cfg.SnapCacheSize = def.SnapCacheSize
	}
	if cfg.MatchRadius < 0 || cfg.TrivialThreshold < 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "match radius and trivial threshold must be >= 0")
	}
	if cfg.ServiceArea == nil {
		cfg.ServiceArea = graph.GetBoundingBox()
	}
	if samples == nil {
		samples = StaticSamples(nil)
	}

	// only vertices with at least one road can be routed from
	index := spatialindex.NewPointIndex[da.Index]()
	graph.ForVertices(func(v *da.Vertex) {
		if graph.GetDegree(v.GetID()) > 0 {
			index.Insert(v.GetPoint(), v.GetID())
		}
	})

	snapCache, err := lru.New[snapKey, da.Index](cfg.SnapCacheSize)
	if err != nil {
		return nil, err
	}

	return &Planner{
		graph:     graph,
		index:     index,
		model:     model,
		samples:   samples,
		cfg:       cfg,
		snapCache: snapCache,
		log:       log,
	}, nil
}

func (p *Planner) GetGraph() *da.Graph {
	return p.graph
}

func (p *Planner) GetConfig() Config {
	return p.cfg
}

func (p *Planner) validate(name string, q da.Point) error {
	if !q.IsFinite() {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "%s coordinate is not a number", name)
	}
	if !p.cfg.CoordinateSystem.Valid(q.X, q.Y) {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "%s coordinate (%v, %v) is not a valid lon/lat", name, q.X, q.Y)
	}
	if !p.cfg.ServiceArea.Contains(q.X, q.Y) {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "%s coordinate (%v, %v) is outside the service area", name, q.X, q.Y)
	}
	return nil
}

// Snap. nearest routable node to q.
func (p *Planner) Snap(q da.Point) (da.Index, bool) {
	key := snapKey{q.X, q.Y}
	if v, ok := p.snapCache.Get(key); ok {
		return v, true
	}
	n, ok := p.index.Nearest(q)
	if !ok {
		return da.INVALID_VERTEX_ID, false
	}
	p.snapCache.Add(key, n.Data)
	return n.Data, true
}

// Route computes the primary route and up to k-1 alternatives between origin and destination.
// errors carry util.ErrBadParamInput (invalid input), util.ErrNotFound (no route) or util.ErrCanceled (ctx done
// during the refresh).
func (p *Planner) Route(ctx context.Context, origin, destination da.Point, k int) (Route, error) {
	if k <= 0 {
		return Route{}, util.WrapErrorf(nil, util.ErrBadParamInput, "k must be >= 1, got %d", k)
	}
	if k > p.cfg.MaxAlternatives {
		k = p.cfg.MaxAlternatives
	}
	if err := p.validate("origin", origin); err != nil {
		return Route{}, err
	}
	if err := p.validate("destination", destination); err != nil {
		return Route{}, err
	}

	s, okS := p.Snap(origin)
	t, okT := p.Snap(destination)
	if !okS || !okT {
		return Route{}, util.WrapErrorf(nil, util.ErrNotFound, "network has no routable nodes")
	}

	if p.cfg.CoordinateSystem.Separation(origin.X, origin.Y, destination.X, destination.Y) < p.cfg.TrivialThreshold {
		return p.directRoute(origin, destination, TRIVIAL_ROUTE_WARNING), nil
	}
	if s == t {
		pos := p.graph.GetVertexPoint(s)
		return p.directRoute(pos, pos, SAME_NODE_ROUTE_WARNING), nil
	}

	if !p.graph.Connected(s, t) {
		return Route{}, util.WrapErrorf(nil, util.ErrNotFound, "no route between node %d and node %d", s, t)
	}

	if p.model != nil {
		stats, err := p.model.RefreshWeights(ctx, p.graph, p.samples.Samples(), p.cfg.MatchRadius)
		if err != nil {
			if ctx.Err() != nil {
				return Route{}, util.WrapErrorf(err, util.ErrCanceled, "route query canceled")
			}
			return Route{}, err
		}
		p.log.Debug("weights refreshed for route query",
			zap.Int("matched", stats.Matched), zap.Int("unmatched", stats.Unmatched))
	}

	paths := KShortestPaths(p.graph, s, t, k)
	if len(paths) == 0 {
		return Route{}, util.WrapErrorf(nil, util.ErrNotFound, "no route between node %d and node %d", s, t)
	}

	primary := p.toRoute(paths[0])
	primary.AlternativeRoutes = make([]Route, 0, len(paths)-1)
	for _, path := range paths[1:] {
		primary.AlternativeRoutes = append(primary.AlternativeRoutes, p.toRoute(path))
	}
	return primary, nil
}

func (p *Planner) travelMinutes(distance float64) float64 {
	return distance / p.cfg.NominalSpeedKmh * 60.0
}

func (p *Planner) directRoute(a, b da.Point, warning string) Route {
	distance := p.cfg.CoordinateSystem.Length(a.X, a.Y, b.X, b.Y)
	return Route{
		Coordinates:          []da.Point{a, b},
		TotalDistance:        distance,
		EstimatedTimeMinutes: p.travelMinutes(distance),
		AverageCongestion:    pkg.LOW_CONGESTION.Multiplier(),
		CongestionLevel:      pkg.LOW_CONGESTION.String(),
		Weight:               distance,
		Warning:              warning,
		AlternativeRoutes:    make([]Route, 0),
	}
}

// toRoute. distance sums base lengths, average congestion is the length-weighted mean multiplier.
func (p *Planner) toRoute(path Path) Route {
	coords := make([]da.Point, len(path.Vertices))
	for i, v := range path.Vertices {
		coords[i] = p.graph.GetVertexPoint(v)
	}

	distance, weighted := 0.0, 0.0
	for _, id := range path.Edges {
		e := p.graph.GetEdge(id)
		distance += e.GetBaseLength()
		weighted += e.GetBaseLength() * e.GetMultiplier()
	}

	avg := 1.0
	if distance > 0 {
		avg = weighted / distance
	}

	return Route{
		Coordinates:          coords,
		TotalDistance:        distance,
		EstimatedTimeMinutes: p.travelMinutes(distance),
		AverageCongestion:    avg,
		CongestionLevel:      pkg.CongestionLevelFromMultiplier(avg).String(),
		Weight:               path.Weight,
		EdgeCount:            len(path.Edges),
	}
}
