package main

import (
	"context"
	"flag"
	"os"

	"github.com/lintang-b-s/Congestionx/pkg/config"
	"github.com/lintang-b-s/Congestionx/pkg/engine"
	"github.com/lintang-b-s/Congestionx/pkg/logger"
	"github.com/lintang-b-s/Congestionx/pkg/topology"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

var (
	configDir  = flag.String("config_dir", "./data", "directory holding config.{yaml,json,toml}")
	geojsonOut = flag.String("geojson", "./data/topology.geojson", "write the built topology as geojson here, empty to skip")
	rebuild    = flag.Bool("rebuild", false, "ignore an existing graph cache and rebuild from the network source")
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

	source, err := cfg.Source(logger)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	routingEngine := engine.NewEngine(source, nil, cfg.EngineOptions(), logger)
	if *rebuild {
		if err := routingEngine.SetSource(source); err != nil {
			panic(err)
		}
	}

	graph, err := routingEngine.Graph(ctx)
	if err != nil {
		panic(err)
	}
	net, err := routingEngine.Topology(ctx)
	if err != nil {
		panic(err)
	}

	logger.Info("road network built",
		zap.Int("nodes", len(net.Nodes)), zap.Int("edges", len(net.Edges)),
		zap.Int("intersections", len(net.Intersections)), zap.Int("features", len(net.Features)))

	if *geojsonOut != "" {
		data, err := topology.ToGeoJSON(net, graph).MarshalJSON()
		if err != nil {
			panic(err)
		}
		if err := os.WriteFile(*geojsonOut, data, 0o644); err != nil {
			panic(err)
		}
		logger.Info("topology written", zap.String("path", *geojsonOut))
	}

	if cfg.Neo4jURI != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
		if err != nil {
			panic(err)
		}
		defer driver.Close(ctx)

		if err := driver.VerifyConnectivity(ctx); err != nil {
			panic(err)
		}

		stats, err := topology.NewNeo4jWriter(driver, cfg.Neo4jDatabase, logger).Write(ctx, source.Name(), net)
		if err != nil {
			panic(err)
		}
		logger.Info("topology exported to neo4j",
			zap.Int("nodes", stats.Nodes), zap.Int("edges", stats.Edges),
			zap.Int("intersections", stats.Intersections), zap.Int("features", stats.Features))
	}

	logger.Sugar().Infof("Preprocessing completed successfully.")
}
