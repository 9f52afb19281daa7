package usecases

import (
	"context"

	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/engine/routing"
	"github.com/lintang-b-s/Congestionx/pkg/network"
)

type RoutingEngine interface {
	Route(ctx context.Context, origin, destination da.Point, k int) (routing.Route, error)
	Graph(ctx context.Context) (*da.Graph, error)
	Topology(ctx context.Context) (*network.Network, error)
}
