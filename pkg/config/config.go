package config

import (
	"fmt"
	"time"

	"github.com/lintang-b-s/Congestionx/pkg"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/engine"
	"github.com/lintang-b-s/Congestionx/pkg/engine/routing"
	"github.com/lintang-b-s/Congestionx/pkg/geo"
	"github.com/lintang-b-s/Congestionx/pkg/network"
	"github.com/lintang-b-s/Congestionx/pkg/osmparser"
	"github.com/lintang-b-s/Congestionx/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	JSON_NETWORK_SOURCE = "json"
	OSM_NETWORK_SOURCE  = "osm"
)

type Config struct {
	NetworkSource string
	NetworkPath   string
	GraphCacheDir string

	CoordinateSystem geo.CoordinateSystem
	ServiceArea      *da.BoundingBox // nil = bounding box of the graph

	NodeEpsilon          float64
	SplitAtIntersections bool
	DefaultEdgeLength    float64
	DefaultSpeedLimit    float64
	Workers              int

	MatchRadius      float64
	TrivialThreshold float64
	NominalSpeedKmh  float64
	MaxAlternatives  int

	NatsURL        string
	TrafficSubject string

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	APIPort        int
	APITimeout     time.Duration
	UseRateLimit   bool
	RateLimitRPS   float64
	RateLimitBurst int
}

func setDefaults() {
	viper.SetDefault("NETWORK_SOURCE", JSON_NETWORK_SOURCE)
	viper.SetDefault("NETWORK_PATH", "./data/network.json")
	viper.SetDefault("GRAPH_CACHE_DIR", "./data/cache")

	viper.SetDefault("COORDINATE_SYSTEM", geo.PLANAR.String())

	viper.SetDefault("PIXEL_SPACE", false)
	viper.SetDefault("SPLIT_AT_INTERSECTIONS", false)
	viper.SetDefault("DEFAULT_EDGE_LENGTH", pkg.DEFAULT_EDGE_LENGTH)
	viper.SetDefault("DEFAULT_SPEED_LIMIT", pkg.DEFAULT_NOMINAL_SPEED_KMH)
	viper.SetDefault("WORKERS", 0)

	viper.SetDefault("MATCH_RADIUS", pkg.DEFAULT_MATCH_RADIUS)
	viper.SetDefault("TRIVIAL_ROUTE_THRESHOLD", pkg.TRIVIAL_ROUTE_THRESHOLD)
	viper.SetDefault("NOMINAL_SPEED_KMH", pkg.DEFAULT_NOMINAL_SPEED_KMH)
	viper.SetDefault("MAX_ALTERNATIVES", pkg.DEFAULT_MAX_ALTERNATIVES)

	viper.SetDefault("NATS_URL", "")
	viper.SetDefault("TRAFFIC_SUBJECT", "traffic.samples")

	viper.SetDefault("NEO4J_URI", "")
	viper.SetDefault("NEO4J_USER", "neo4j")
	viper.SetDefault("NEO4J_PASSWORD", "")
	viper.SetDefault("NEO4J_DATABASE", "neo4j")

	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "60s")
	viper.SetDefault("USE_RATE_LIMIT", true)
	viper.SetDefault("RATE_LIMIT_RPS", 50.0)
	viper.SetDefault("RATE_LIMIT_BURST", 100)
}

// Load reads config.{yaml,json,toml} from dir (optional) over the defaults; environment variables win.
func Load(dir string) (Config, error) {
	setDefaults()
	if err := util.ReadConfig(dir); err != nil {
		return Config{}, err
	}

	cs, err := geo.ParseCoordinateSystem(viper.GetString("COORDINATE_SYSTEM"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		NetworkSource:        viper.GetString("NETWORK_SOURCE"),
		NetworkPath:          viper.GetString("NETWORK_PATH"),
		GraphCacheDir:        viper.GetString("GRAPH_CACHE_DIR"),
		CoordinateSystem:     cs,
		NodeEpsilon:          nodeEpsilon(),
		SplitAtIntersections: viper.GetBool("SPLIT_AT_INTERSECTIONS"),
		DefaultEdgeLength:    viper.GetFloat64("DEFAULT_EDGE_LENGTH"),
		DefaultSpeedLimit:    viper.GetFloat64("DEFAULT_SPEED_LIMIT"),
		Workers:              viper.GetInt("WORKERS"),
		MatchRadius:          viper.GetFloat64("MATCH_RADIUS"),
		TrivialThreshold:     viper.GetFloat64("TRIVIAL_ROUTE_THRESHOLD"),
		NominalSpeedKmh:      viper.GetFloat64("NOMINAL_SPEED_KMH"),
		MaxAlternatives:      viper.GetInt("MAX_ALTERNATIVES"),
		NatsURL:              viper.GetString("NATS_URL"),
		TrafficSubject:       viper.GetString("TRAFFIC_SUBJECT"),
		Neo4jURI:             viper.GetString("NEO4J_URI"),
		Neo4jUser:            viper.GetString("NEO4J_USER"),
		Neo4jPassword:        viper.GetString("NEO4J_PASSWORD"),
		Neo4jDatabase:        viper.GetString("NEO4J_DATABASE"),
		APIPort:              viper.GetInt("API_PORT"),
		APITimeout:           viper.GetDuration("API_TIMEOUT"),
		UseRateLimit:         viper.GetBool("USE_RATE_LIMIT"),
		RateLimitRPS:         viper.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:       viper.GetInt("RATE_LIMIT_BURST"),
	}

	// the service area is optional, all four bounds or none
	keys := []string{"SERVICE_AREA_MIN_X", "SERVICE_AREA_MIN_Y", "SERVICE_AREA_MAX_X", "SERVICE_AREA_MAX_Y"}
	set := 0
	for _, k := range keys {
		if viper.IsSet(k) {
			set++
		}
	}
	switch set {
	case 0:
	case len(keys):
		cfg.ServiceArea = da.NewBoundingBox(viper.GetFloat64(keys[0]), viper.GetFloat64(keys[1]),
			viper.GetFloat64(keys[2]), viper.GetFloat64(keys[3]))
		if cfg.ServiceArea.IsEmpty() {
			return Config{}, util.WrapErrorf(nil, util.ErrBadParamInput, "service area min bound exceeds max bound")
		}
	default:
		return Config{}, util.WrapErrorf(nil, util.ErrBadParamInput, "service area needs all of %v", keys)
	}

	return cfg, nil
}

// nodeEpsilon prefers an explicit NODE_EPSILON; otherwise svg pixel-space graphs get the coarser merge distance.
func nodeEpsilon() float64 {
	if viper.IsSet("NODE_EPSILON") {
		return viper.GetFloat64("NODE_EPSILON")
	}
	if viper.GetBool("PIXEL_SPACE") {
		return pkg.PIXEL_NODE_EPSILON
	}
	return pkg.NODE_EPSILON
}

func (c Config) BuildOptions() network.Options {
	return network.Options{
		NodeEpsilon:          c.NodeEpsilon,
		CoordinateSystem:     c.CoordinateSystem,
		SplitAtIntersections: c.SplitAtIntersections,
		DefaultEdgeLength:    c.DefaultEdgeLength,
		Workers:              c.Workers,
	}
}

func (c Config) PlannerConfig() routing.Config {
	cfg := routing.DefaultConfig()
	cfg.ServiceArea = c.ServiceArea
	cfg.CoordinateSystem = c.CoordinateSystem
	cfg.MatchRadius = c.MatchRadius
	cfg.TrivialThreshold = c.TrivialThreshold
	cfg.NominalSpeedKmh = c.NominalSpeedKmh
	cfg.MaxAlternatives = c.MaxAlternatives
	return cfg
}

func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		Build:    c.BuildOptions(),
		Planner:  c.PlannerConfig(),
		CacheDir: c.GraphCacheDir,
		Workers:  c.Workers,
	}
}

// Source picks the network source named by NETWORK_SOURCE.
func (c Config) Source(log *zap.Logger) (network.Source, error) {
	switch c.NetworkSource {
	case JSON_NETWORK_SOURCE:
		return network.NewFileSource(c.NetworkPath), nil
	case OSM_NETWORK_SOURCE:
		if c.CoordinateSystem != geo.GEOGRAPHIC {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "osm network source needs COORDINATE_SYSTEM=%s", geo.GEOGRAPHIC)
		}
		return osmparser.NewSource(c.NetworkPath, osmparser.NewOsmParser(log, c.DefaultSpeedLimit)), nil
	default:
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown NETWORK_SOURCE %q", c.NetworkSource)
	}
}

func (c Config) String() string {
	return fmt.Sprintf("source=%s:%s cache=%s cs=%s split=%v", c.NetworkSource, c.NetworkPath, c.GraphCacheDir,
		c.CoordinateSystem, c.SplitAtIntersections)
}
