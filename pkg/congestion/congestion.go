package congestion

import (
	"context"
	"math"
	"runtime"

	"github.com/lintang-b-s/Congestionx/pkg"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/spatialindex"
	"github.com/lintang-b-s/Congestionx/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TrafficSample is one monitored road reading, supplied by an external poller.
type TrafficSample struct {
	ID            string   `json:"id,omitempty"`
	Position      da.Point `json:"position"`
	CurrentSpeed  float64  `json:"current_speed"`
	FreeFlowSpeed float64  `json:"free_flow_speed"`
}

func NewTrafficSample(id string, position da.Point, currentSpeed, freeFlowSpeed float64) TrafficSample {
	return TrafficSample{
		ID:            id,
		Position:      position,
		CurrentSpeed:  currentSpeed,
		FreeFlowSpeed: freeFlowSpeed,
	}
}

// SpeedRatio. currentSpeed / freeFlowSpeed, 0 when freeFlowSpeed is 0 or the ratio is not a number.
func SpeedRatio(currentSpeed, freeFlowSpeed float64) float64 {
	if freeFlowSpeed == 0 {
		return 0
	}
	ratio := currentSpeed / freeFlowSpeed
	if !util.IsFinite(ratio) {
		return 0
	}
	return ratio
}

// LevelFromRatio. >= 0.8 low, [0.5, 0.8) medium, < 0.5 high.
func LevelFromRatio(speedRatio float64) pkg.CongestionLevel {
	switch {
	case speedRatio >= pkg.LOW_CONGESTION_SPEED_RATIO:
		return pkg.LOW_CONGESTION
	case speedRatio >= pkg.MEDIUM_CONGESTION_SPEED_RATIO:
		return pkg.MEDIUM_CONGESTION
	default:
		return pkg.HIGH_CONGESTION
	}
}

func MultiplierFromRatio(speedRatio float64) float64 {
	return LevelFromRatio(speedRatio).Multiplier()
}

func (s TrafficSample) Level() pkg.CongestionLevel {
	return LevelFromRatio(SpeedRatio(s.CurrentSpeed, s.FreeFlowSpeed))
}

type RefreshStats struct {
	Edges           int    `json:"edges"`
	Matched         int    `json:"matched"`
	Unmatched       int    `json:"unmatched"` // no sample within radius, left at free flow
	RejectedSamples int    `json:"rejected_samples"`
	Levels          [3]int `json:"levels"` // edge count per congestion level
}

func (rs *RefreshStats) add(o RefreshStats) {
	rs.Edges += o.Edges
	rs.Matched += o.Matched
	rs.Unmatched += o.Unmatched
	for i := range rs.Levels {
		rs.Levels[i] += o.Levels[i]
	}
}

type Model struct {
	log     *zap.Logger
	workers int
}

func NewModel(log *zap.Logger, workers int) *Model {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Model{log: log, workers: workers}
}

// RefreshWeights recomputes the multiplier of every edge from scratch: the sample nearest to the edge midpoint decides it
// when it lies within matchRadius, otherwise the edge is free flow. ties go to the lowest sample index.
// a malformed sample is rejected on its own and never aborts the refresh.
func (m *Model) RefreshWeights(ctx context.Context, g *da.Graph, samples []TrafficSample, matchRadius float64) (RefreshStats, error) {
	stats := RefreshStats{}
	if math.IsNaN(matchRadius) || matchRadius < 0 {
		return stats, util.WrapErrorf(nil, util.ErrBadParamInput, "match radius must be >= 0, got %v", matchRadius)
	}

	index := spatialindex.NewPointIndex[int]()
	for i, s := range samples {
		if !s.Position.IsFinite() || !util.IsFinite(s.CurrentSpeed) || !util.IsFinite(s.FreeFlowSpeed) {
			stats.RejectedSamples++
			continue
		}
		index.Insert(s.Position, i)
	}
	if stats.RejectedSamples > 0 {
		m.log.Warn("rejected malformed traffic samples", zap.Int("rejected", stats.RejectedSamples))
	}

	numEdges := g.NumberOfEdges()
	if numEdges == 0 {
		return stats, nil
	}

	workers := m.workers
	if workers > numEdges {
		workers = numEdges
	}
	chunk := (numEdges + workers - 1) / workers
	partial := make([]RefreshStats, workers)

	eg, egCtx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, numEdges)
		eg.Go(func() error {
			local := &partial[w]
			for id := lo; id < hi; id++ {
				if (id-lo)%1024 == 0 {
					if err := egCtx.Err(); err != nil {
						return err
					}
				}
				e := g.GetEdge(da.Index(id))
				mid := g.GetVertexPoint(e.GetFrom()).Midpoint(g.GetVertexPoint(e.GetTo()))

				level := pkg.LOW_CONGESTION
				if n, ok := index.NearestWithinRadius(mid, matchRadius); ok {
					level = samples[n.Data].Level()
					local.Matched++
				} else {
					local.Unmatched++
				}
				e.SetMultiplier(level.Multiplier())
				local.Levels[level]++
				local.Edges++
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return stats, err
	}

	for _, p := range partial {
		stats.add(p)
	}

	m.log.Debug("edge weights refreshed",
		zap.Int("edges", stats.Edges),
		zap.Int("matched", stats.Matched),
		zap.Int("unmatched", stats.Unmatched),
		zap.Int("samples", len(samples)))
	return stats, nil
}
