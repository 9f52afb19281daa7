package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lintang-b-s/Congestionx/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/Congestionx/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/Congestionx/pkg/http/server"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"

	_ "net/http/pprof"
)

type RateLimit struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

// Handler is the full middleware chain in front of the /api routes.
func (api *API) Handler(
	limit RateLimit,
	routingService controllers.RoutingService,
	trafficService controllers.TrafficService,
) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)

	group := router_helper.NewRouteGroup(router, "/api")

	congestionRoutes := controllers.New(routingService, trafficService, api.log)
	congestionRoutes.Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log)}
	if limit.Enabled {
		mwChain = append(mwChain, Limit(limit.RPS, limit.Burst))
	}
	return alice.New(mwChain...).Then(router)
}

func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	limit RateLimit,
	routingService controllers.RoutingService,
	trafficService controllers.TrafficService,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(limit, routingService, trafficService), config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		api.log.Error("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		_ = srv.Shutdown(context.Background())
		return ctx.Err()
	}
}
