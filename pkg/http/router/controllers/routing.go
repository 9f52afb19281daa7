package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julienschmidt/httprouter"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	helper "github.com/lintang-b-s/Congestionx/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

const MAX_TRAFFIC_BODY_BYTES = 8 << 20

type routingAPI struct {
	controller
	routingService RoutingService
	trafficService TrafficService
	validate       *requestValidator
}

func New(routingService RoutingService, trafficService TrafficService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		controller:     controller{log: log},
		routingService: routingService,
		trafficService: trafficService,
		validate:       newRequestValidator(),
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/computeRoutes", api.computeRoutes)
	group.GET("/topology", api.topology)
	group.GET("/traffic", api.latestTraffic)
	group.POST("/traffic", api.replaceTraffic)
}

// parseCoordinate reads <prefix>_x/<prefix>_y, falling back to <prefix>_lon/<prefix>_lat.
func parseCoordinate(query url.Values, prefix string) (float64, float64, error) {
	xKey, yKey := prefix+"_x", prefix+"_y"
	if query.Get(xKey) == "" && query.Get(yKey) == "" {
		xKey, yKey = prefix+"_lon", prefix+"_lat"
	}

	x, err := strconv.ParseFloat(query.Get(xKey), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%s is required and must be a valid float", xKey)
	}
	y, err := strconv.ParseFloat(query.Get(yKey), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%s is required and must be a valid float", yKey)
	}
	return x, y, nil
}

func (api *routingAPI) computeRoutes(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request computeRoutesRequest
		err     error
	)

	query := r.URL.Query()

	request.OriginX, request.OriginY, err = parseCoordinate(query, "origin")
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	request.DestinationX, request.DestinationY, err = parseCoordinate(query, "destination")
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	request.K = 1
	if k := query.Get("k"); k != "" {
		request.K, err = strconv.Atoi(k)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("number of routes k must be a valid int"))
			return
		}
	}

	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	route, err := api.routingService.ComputeRoutes(r.Context(),
		da.NewPoint(request.OriginX, request.OriginY), da.NewPoint(request.DestinationX, request.DestinationY), request.K)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewRouteResponse(route, api.routingService.CoordinateSystem())},
		nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) topology(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	fc, err := api.routingService.Topology(r.Context())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, fc, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) latestTraffic(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	snap := api.trafficService.Latest()
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTrafficSnapshotResponse(len(snap.Samples), snap.UpdatedAt,
		snap.Source)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) replaceTraffic(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request replaceTrafficRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MAX_TRAFFIC_BODY_BYTES))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	source := request.Source
	if source == "" {
		source = "http"
	}
	snap := api.trafficService.Replace(request.ToSamples(), source)

	if err := api.writeJSON(w, http.StatusAccepted, envelope{"data": NewTrafficSnapshotResponse(len(snap.Samples), snap.UpdatedAt,
		snap.Source)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
