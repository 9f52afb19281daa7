package usecases

import (
	"context"
	"time"

	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/engine/routing"
	"github.com/lintang-b-s/Congestionx/pkg/geo"
	"github.com/lintang-b-s/Congestionx/pkg/topology"
	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"
)

type RoutingService struct {
	log              *zap.Logger
	engine           RoutingEngine
	coordinateSystem geo.CoordinateSystem
}

func NewRoutingService(log *zap.Logger, engine RoutingEngine, coordinateSystem geo.CoordinateSystem) *RoutingService {
	return &RoutingService{
		log:              log,
		engine:           engine,
		coordinateSystem: coordinateSystem,
	}
}

func (rs *RoutingService) ComputeRoutes(ctx context.Context, origin, destination da.Point, k int) (routing.Route, error) {
	start := time.Now()
	route, err := rs.engine.Route(ctx, origin, destination, k)
	if err != nil {
		return routing.Route{}, err
	}

	rs.log.Debug("routes computed",
		zap.Float64("origin_x", origin.X), zap.Float64("origin_y", origin.Y),
		zap.Float64("destination_x", destination.X), zap.Float64("destination_y", destination.Y),
		zap.Int("alternatives", len(route.AlternativeRoutes)), zap.Duration("took", time.Since(start)))
	return route, nil
}

// Topology exports the current network, with the congestion state of the last route query on every edge.
func (rs *RoutingService) Topology(ctx context.Context) (*geojson.FeatureCollection, error) {
	net, err := rs.engine.Topology(ctx)
	if err != nil {
		return nil, err
	}
	graph, err := rs.engine.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return topology.ToGeoJSON(net, graph), nil
}

func (rs *RoutingService) CoordinateSystem() geo.CoordinateSystem {
	return rs.coordinateSystem
}
