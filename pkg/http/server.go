package http

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	http_router "github.com/lintang-b-s/Congestionx/pkg/http/router"
	"github.com/lintang-b-s/Congestionx/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/Congestionx/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the API in the background. Wait returns once it has stopped.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	config http_server.Config,
	limit http_router.RateLimit,
	routingService controllers.RoutingService,
	trafficService controllers.TrafficService,
) (*Server, error) {
	if config.Port == 0 {
		viper.SetDefault("API_PORT", 6060)
		config.Port = viper.GetInt("API_PORT")
	}

	server := http_router.NewAPI(log)

	s.g.Go(func() error {
		return server.Run(ctx, config, limit, routingService, trafficService)
	})

	return s, nil
}

func (s *Server) Wait() error {
	return s.g.Wait()
}

// GracefulShutdown blocks until the process receives SIGINT or SIGTERM.
func GracefulShutdown() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	return <-quit
}
