package controllers

import (
	"time"

	"github.com/lintang-b-s/Congestionx/pkg/congestion"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/engine/routing"
	"github.com/lintang-b-s/Congestionx/pkg/geo"
)

type computeRoutesRequest struct {
	OriginX      float64
	OriginY      float64
	DestinationX float64
	DestinationY float64
	K            int `validate:"min=1"`
}

type routeResponse struct {
	Coordinates          []da.Point      `json:"coordinates"`
	Polyline             string          `json:"polyline,omitempty"`
	TotalDistance        float64         `json:"total_distance"`
	EstimatedTimeMinutes float64         `json:"estimated_time_minutes"`
	AverageCongestion    float64         `json:"average_congestion"`
	CongestionLevel      string          `json:"congestion_level"`
	Weight               float64         `json:"weight"`
	EdgeCount            int             `json:"edge_count"`
	Warning              string          `json:"warning,omitempty"`
	AlternativeRoutes    []routeResponse `json:"alternative_routes,omitempty"`
}

// NewRouteResponse. geographic routes also carry the encoded polyline of their coordinates.
func NewRouteResponse(r routing.Route, cs geo.CoordinateSystem) routeResponse {
	resp := routeResponse{
		Coordinates:          r.Coordinates,
		TotalDistance:        r.TotalDistance,
		EstimatedTimeMinutes: r.EstimatedTimeMinutes,
		AverageCongestion:    r.AverageCongestion,
		CongestionLevel:      r.CongestionLevel,
		Weight:               r.Weight,
		EdgeCount:            r.EdgeCount,
		Warning:              r.Warning,
	}
	if cs == geo.GEOGRAPHIC {
		coords := make([]geo.Coordinate, len(r.Coordinates))
		for i, p := range r.Coordinates {
			coords[i] = geo.NewCoordinate(p.Y, p.X)
		}
		resp.Polyline = geo.PolylineFromCoords(coords)
	}
	for _, alt := range r.AlternativeRoutes {
		resp.AlternativeRoutes = append(resp.AlternativeRoutes, NewRouteResponse(alt, cs))
	}
	return resp
}

type trafficSampleRequest struct {
	ID            string  `json:"id"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	CurrentSpeed  float64 `json:"current_speed" validate:"min=0"`
	FreeFlowSpeed float64 `json:"free_flow_speed" validate:"min=0"`
}

type replaceTrafficRequest struct {
	Source  string                 `json:"source" validate:"max=128"`
	Samples []trafficSampleRequest `json:"samples" validate:"required,dive"`
}

func (r replaceTrafficRequest) ToSamples() []congestion.TrafficSample {
	samples := make([]congestion.TrafficSample, 0, len(r.Samples))
	for _, s := range r.Samples {
		samples = append(samples, congestion.NewTrafficSample(s.ID, da.NewPoint(s.X, s.Y), s.CurrentSpeed, s.FreeFlowSpeed))
	}
	return samples
}

type trafficSnapshotResponse struct {
	Samples   int       `json:"samples"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source,omitempty"`
}

func NewTrafficSnapshotResponse(samples int, updatedAt time.Time, source string) trafficSnapshotResponse {
	return trafficSnapshotResponse{Samples: samples, UpdatedAt: updatedAt, Source: source}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
