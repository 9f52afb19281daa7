package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/Congestionx/pkg/config"
	"github.com/lintang-b-s/Congestionx/pkg/engine"
	"github.com/lintang-b-s/Congestionx/pkg/http"
	http_router "github.com/lintang-b-s/Congestionx/pkg/http/router"
	http_server "github.com/lintang-b-s/Congestionx/pkg/http/server"
	"github.com/lintang-b-s/Congestionx/pkg/http/usecases"
	"github.com/lintang-b-s/Congestionx/pkg/logger"
	"github.com/lintang-b-s/Congestionx/pkg/trafficfeed"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var (
	configDir = flag.String("config_dir", "./data", "directory holding config.{yaml,json,toml}")
	warmup    = flag.Bool("warmup", true, "build the road graph before serving the first request")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configDir)
	if err != nil {
		panic(err)
	}
	logger.Info("config loaded", zap.Stringer("config", cfg))

	source, err := cfg.Source(logger)
	if err != nil {
		panic(err)
	}

	store := trafficfeed.NewStore(logger)
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL, nats.Name("congestionx-engine"))
		if err != nil {
			panic(err)
		}
		defer nc.Drain()

		if _, err := trafficfeed.Subscribe(nc, cfg.TrafficSubject, store, logger); err != nil {
			panic(err)
		}
		logger.Info("subscribed to traffic feed", zap.String("url", cfg.NatsURL), zap.String("subject", cfg.TrafficSubject))
	}

	routingEngine := engine.NewEngine(source, store, cfg.EngineOptions(), logger)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	if *warmup {
		if _, err := routingEngine.Graph(ctx); err != nil {
			logger.Error("cannot build road graph, queries will retry", zap.Error(err))
		}
	}

	api := http.NewServer(logger)

	routingService := usecases.NewRoutingService(logger, routingEngine, cfg.CoordinateSystem)
	api.Use(ctx, logger,
		http_server.Config{Port: cfg.APIPort, Timeout: cfg.APITimeout},
		http_router.RateLimit{Enabled: cfg.UseRateLimit, RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
		routingService, store)

	signal := http.GracefulShutdown()

	logger.Info("Congestionx Routing Engine Server Stopped", zap.String("signal", signal.String()))
	cleanup()
	if err := api.Wait(); err != nil && err != context.Canceled {
		logger.Error("API stopped with error", zap.Error(err))
	}
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
