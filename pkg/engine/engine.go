package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"github.com/lintang-b-s/Congestionx/pkg/congestion"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/engine/routing"
	"github.com/lintang-b-s/Congestionx/pkg/network"
	"github.com/lintang-b-s/Congestionx/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const GRAPH_CACHE_SUFFIX = ".graph.bz2"

type Options struct {
	Build    network.Options
	Planner  routing.Config
	CacheDir string // empty disables the on-disk graph cache
	Workers  int    // congestion refresh workers
}

// state is everything derived from one network source. swapped as a whole.
type state struct {
	graph    *da.Graph
	topology *network.Network
	planner  *routing.Planner
}

// Engine owns the single routable graph of the process. the graph is built lazily on the first query,
// loaded from the cache dir when a previous run persisted it, and rebuilt only after SetSource.
type Engine struct {
	mu         sync.RWMutex
	source     network.Source
	generation uint64
	current    *state

	opts    Options
	model   *congestion.Model
	samples routing.SampleProvider
	builds  singleflight.Group
	log     *zap.Logger
}

func NewEngine(source network.Source, samples routing.SampleProvider, opts Options, log *zap.Logger) *Engine {
	if opts.Planner.CoordinateSystem == "" {
		opts.Planner.CoordinateSystem = opts.Build.CoordinateSystem
	}
	return &Engine{
		source:  source,
		opts:    opts,
		model:   congestion.NewModel(log, opts.Workers),
		samples: samples,
		log:     log,
	}
}

// SetSource replaces the network source. the cached graph is dropped, together with any persisted copy under the
// new source's name, and the next query rebuilds.
func (e *Engine) SetSource(source network.Source) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.source = source
	e.generation++
	e.current = nil

	if path := e.cachePath(source); path != "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	e.log.Info("network source changed", zap.String("source", source.Name()))
	return nil
}

func (e *Engine) Planner(ctx context.Context) (*routing.Planner, error) {
	st, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return st.planner, nil
}

func (e *Engine) Graph(ctx context.Context) (*da.Graph, error) {
	st, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return st.graph, nil
}

// Topology is the canonical node/edge/intersection set of the current graph.
func (e *Engine) Topology(ctx context.Context) (*network.Network, error) {
	st, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return st.topology, nil
}

func (e *Engine) Route(ctx context.Context, origin, destination da.Point, k int) (routing.Route, error) {
	planner, err := e.Planner(ctx)
	if err != nil {
		return routing.Route{}, err
	}
	return planner.Route(ctx, origin, destination, k)
}

func (e *Engine) load(ctx context.Context) (*state, error) {
	e.mu.RLock()
	st, source, generation := e.current, e.source, e.generation
	e.mu.RUnlock()
	if st != nil {
		return st, nil
	}
	if source == nil {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "no network source configured")
	}

	// concurrent first queries share one build, detached from the cancellation of whichever caller started it
	buildCtx := context.WithoutCancel(ctx)
	key := source.Name() + "#" + strconv.FormatUint(generation, 10)
	ch := e.builds.DoChan(key, func() (interface{}, error) {
		e.mu.RLock()
		if e.current != nil && e.generation == generation {
			st := e.current
			e.mu.RUnlock()
			return st, nil
		}
		e.mu.RUnlock()

		st, err := e.buildState(buildCtx, source)
		if err != nil {
			return nil, err
		}

		e.mu.Lock()
		if e.generation == generation {
			e.current = st
		}
		e.mu.Unlock()
		return st, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*state), nil
	case <-ctx.Done():
		return nil, util.WrapErrorf(ctx.Err(), util.ErrCanceled, "waiting for road network build")
	}
}

func (e *Engine) buildState(ctx context.Context, source network.Source) (*state, error) {
	graph, topology, err := e.loadCached(source)
	if err != nil {
		e.log.Warn("ignoring unreadable graph cache", zap.String("source", source.Name()), zap.Error(err))
	}

	if graph == nil {
		graph, topology, err = e.build(ctx, source)
		if err != nil {
			return nil, err
		}
		e.persist(source, graph)
	}

	planner, err := routing.NewPlanner(graph, e.model, e.samples, e.opts.Planner, e.log)
	if err != nil {
		return nil, err
	}
	return &state{graph: graph, topology: topology, planner: planner}, nil
}

func (e *Engine) build(ctx context.Context, source network.Source) (*da.Graph, *network.Network, error) {
	e.log.Info("building road network", zap.String("source", source.Name()))

	in, err := source.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	topology, err := network.NewBuilder(e.log, e.opts.Build).BuildNetwork(in)
	if err != nil {
		return nil, nil, err
	}
	return topology.ToGraph(), topology, nil
}

// loadCached returns a nil graph, and no error, when there is nothing cached.
func (e *Engine) loadCached(source network.Source) (*da.Graph, *network.Network, error) {
	path := e.cachePath(source)
	if path == "" {
		return nil, nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}

	e.log.Info("reading graph from cache", zap.String("path", path))
	graph, err := da.ReadGraph(path)
	if err != nil {
		return nil, nil, err
	}
	return graph, network.FromGraph(graph), nil
}

func (e *Engine) persist(source network.Source, graph *da.Graph) {
	path := e.cachePath(source)
	if path == "" {
		return
	}
	if err := os.MkdirAll(e.opts.CacheDir, 0o755); err != nil {
		e.log.Warn("cannot create graph cache dir", zap.String("dir", e.opts.CacheDir), zap.Error(err))
		return
	}
	if err := graph.WriteGraph(path); err != nil {
		e.log.Warn("cannot write graph cache", zap.String("path", path), zap.Error(err))
		os.Remove(path)
		return
	}
	e.log.Info("graph cached", zap.String("path", path),
		zap.Int("vertices", graph.NumberOfVertices()), zap.Int("edges", graph.NumberOfEdges()))
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (e *Engine) cachePath(source network.Source) string {
	if e.opts.CacheDir == "" || source == nil {
		return ""
	}
	return CacheFile(e.opts.CacheDir, source.Name())
}

// CacheFile is where the graph built from the named source is persisted inside dir.
func CacheFile(dir, sourceName string) string {
	return filepath.Join(dir, unsafeFileChars.ReplaceAllString(sourceName, "_")+GRAPH_CACHE_SUFFIX)
}
