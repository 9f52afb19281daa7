package controllers

import (
	"context"

	"github.com/lintang-b-s/Congestionx/pkg/congestion"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/engine/routing"
	"github.com/lintang-b-s/Congestionx/pkg/geo"
	"github.com/lintang-b-s/Congestionx/pkg/trafficfeed"
	geojson "github.com/paulmach/go.geojson"
)

type RoutingService interface {
	ComputeRoutes(ctx context.Context, origin, destination da.Point, k int) (routing.Route, error)
	Topology(ctx context.Context) (*geojson.FeatureCollection, error)
	CoordinateSystem() geo.CoordinateSystem
}

type TrafficService interface {
	Replace(samples []congestion.TrafficSample, source string) trafficfeed.Snapshot
	Latest() trafficfeed.Snapshot
}
