package network

import (
	"errors"
	"runtime"
	"sort"

	"github.com/lintang-b-s/Congestionx/pkg"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/geo"
	"github.com/lintang-b-s/Congestionx/pkg/spatialindex"
	"github.com/lintang-b-s/Congestionx/pkg/util"
	"go.uber.org/zap"
)

type Options struct {
	NodeEpsilon          float64
	CoordinateSystem     geo.CoordinateSystem
	SplitAtIntersections bool
	DefaultEdgeLength    float64
	Workers              int
}

func DefaultOptions() Options {
	return Options{
		NodeEpsilon:       pkg.NODE_EPSILON,
		CoordinateSystem:  geo.PLANAR,
		DefaultEdgeLength: pkg.DEFAULT_EDGE_LENGTH,
		Workers:           runtime.NumCPU(),
	}
}

// Input is what a network source hands to the builder: declared segments, optional inline intersections and pass-through map metadata.
type Input struct {
	Segments      []RoadSegment  `json:"segments"`
	Intersections []da.Point     `json:"intersections,omitempty"`
	Metadata      da.MapMetadata `json:"metadata"`

	// Rejected holds records the source could not decode. they are carried into Network.Skipped.
	Rejected []SkippedSegment `json:"-"`
}

type Builder struct {
	opts Options
	log  *zap.Logger
}

func NewBuilder(log *zap.Logger, opts Options) *Builder {
	def := DefaultOptions()
	if opts.NodeEpsilon <= 0 {
		opts.NodeEpsilon = def.NodeEpsilon
	}
	if opts.CoordinateSystem == "" {
		opts.CoordinateSystem = def.CoordinateSystem
	}
	if opts.DefaultEdgeLength <= 0 {
		opts.DefaultEdgeLength = def.DefaultEdgeLength
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	return &Builder{opts: opts, log: log}
}

type resolvedSegment struct {
	seg        RoadSegment
	start, end da.Point
}

// nodeSet hands out node ids, merging points closer than eps into the first node seen there.
type nodeSet struct {
	eps   float64
	index *spatialindex.PointIndex[da.Index]
	nodes []Node
}

func newNodeSet(eps float64) *nodeSet {
	return &nodeSet{
		eps:   eps,
		index: spatialindex.NewPointIndex[da.Index](),
		nodes: make([]Node, 0),
	}
}

func (ns *nodeSet) getOrCreate(p da.Point) da.Index {
	if n, ok := ns.index.NearestWithinRadius(p, ns.eps); ok && da.SamePoint(n.Point, p, ns.eps) {
		return n.Data
	}
	id := da.Index(len(ns.nodes))
	ns.nodes = append(ns.nodes, Node{ID: id, Position: p})
	ns.index.Insert(p, id)
	return id
}

// BuildNetwork turns declared segments into nodes, edges and the intersection set.
// bad segments are skipped and recorded in Network.Skipped, only an input without any routable segment fails.
func (b *Builder) BuildNetwork(in Input) (*Network, error) {
	net := newNetwork(in.Metadata)
	if net.Metadata.CoordinateSystem == "" {
		net.Metadata.CoordinateSystem = b.opts.CoordinateSystem.String()
	}

	for _, r := range in.Rejected {
		b.log.Warn("skipping undecodable road segment", zap.String("segment_id", r.ID), zap.String("reason", r.Reason))
		net.Skipped = append(net.Skipped, r)
	}

	resolved := make([]resolvedSegment, 0, len(in.Segments))
	for _, seg := range in.Segments {
		start, end, err := seg.Resolve()
		if err == nil && (!b.opts.CoordinateSystem.Valid(start.X, start.Y) || !b.opts.CoordinateSystem.Valid(end.X, end.Y)) {
			err = util.WrapErrorf(nil, util.ErrBadParamInput, "segment %q: coordinate outside lat/lon range", seg.ID)
		}
		if err != nil {
			b.skip(net, seg.ID, err)
			continue
		}

		if seg.Kind.IsMetadata() {
			net.Features = append(net.Features, Feature{ID: seg.ID, Kind: seg.Kind, Start: start, End: end})
			continue
		}

		if da.SamePoint(start, end, b.opts.NodeEpsilon) {
			b.skip(net, seg.ID, util.WrapErrorf(nil, util.ErrDegenerateGeometry, "segment %q: zero-length", seg.ID))
			continue
		}
		resolved = append(resolved, resolvedSegment{seg: seg, start: start, end: end})
	}

	lines := make([]da.LineSegment, len(resolved))
	for i, rs := range resolved {
		lines[i] = da.NewLineSegment(rs.seg.ID, rs.start, rs.end)
	}
	crossings := da.FindCrossings(lines, b.opts.Workers)

	declared := make([]da.Point, 0, len(in.Intersections))
	for _, p := range in.Intersections {
		if !p.IsFinite() || !b.opts.CoordinateSystem.Valid(p.X, p.Y) {
			b.log.Warn("skipping declared intersection", zap.Float64("x", p.X), zap.Float64("y", p.Y))
			continue
		}
		declared = append(declared, p)
	}
	net.Intersections = da.MergeIntersections(lines, crossings, declared, pkg.INTERSECTION_DECIMALS)

	nodes := newNodeSet(b.opts.NodeEpsilon)
	endpoints := make([][2]da.Index, len(resolved))
	for i, rs := range resolved {
		endpoints[i] = [2]da.Index{nodes.getOrCreate(rs.start), nodes.getOrCreate(rs.end)}
	}
	for _, p := range net.Intersections {
		nodes.getOrCreate(p)
	}

	var stopsOf [][]stop
	if b.opts.SplitAtIntersections {
		stopsOf = b.collectStops(resolved, endpoints, crossings, declared, nodes)
	}

	for i, rs := range resolved {
		if !b.opts.SplitAtIntersections {
			b.addEdge(net, rs, endpoints[i][0], endpoints[i][1], 1.0)
			continue
		}

		stops := stopsOf[i]
		prev := stops[0]
		for _, s := range stops[1:] {
			if s.node == prev.node {
				continue
			}
			b.addEdge(net, rs, prev.node, s.node, s.t-prev.t)
			prev = s
		}
	}

	net.Nodes = nodes.nodes

	if len(net.Edges) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "network has no routable segments (%d skipped)", len(net.Skipped))
	}

	b.log.Info("road network built",
		zap.Int("nodes", len(net.Nodes)),
		zap.Int("edges", len(net.Edges)),
		zap.Int("intersections", len(net.Intersections)),
		zap.Int("features", len(net.Features)),
		zap.Int("skipped", len(net.Skipped)))
	return net, nil
}

func (b *Builder) skip(net *Network, id string, err error) {
	b.log.Warn("skipping road segment", zap.String("segment_id", id), zap.Error(err))
	net.Skipped = append(net.Skipped, SkippedSegment{
		ID:         id,
		Reason:     err.Error(),
		Degenerate: errors.Is(err, util.ErrDegenerateGeometry),
	})
}

// addEdge adds the piece [t0, t0+fraction] of rs between nodes a and c.
func (b *Builder) addEdge(net *Network, rs resolvedSegment, a, c da.Index, fraction float64) {
	if a == c {
		b.skip(net, rs.seg.ID, util.WrapErrorf(nil, util.ErrDegenerateGeometry,
			"segment %q: endpoints collapse into node %d", rs.seg.ID, a))
		return
	}

	length := b.opts.CoordinateSystem.Length(rs.start.X, rs.start.Y, rs.end.X, rs.end.Y) * fraction
	if !util.IsFinite(length) {
		length = b.opts.DefaultEdgeLength * fraction
	}
	if length <= 0 {
		b.skip(net, rs.seg.ID, util.WrapErrorf(nil, util.ErrDegenerateGeometry, "segment %q: non-positive length", rs.seg.ID))
		return
	}

	lanes := rs.seg.Lanes
	if lanes == 0 {
		lanes = 1
	}
	speedLimit := rs.seg.SpeedLimit
	if speedLimit <= 0 {
		speedLimit = net.Metadata.DefaultSpeedLimit
	}

	net.Edges = append(net.Edges, Edge{
		ID:         da.Index(len(net.Edges)),
		NodeA:      a,
		NodeB:      c,
		BaseLength: length,
		Lanes:      lanes,
		SpeedLimit: speedLimit,
		Kind:       rs.seg.Kind,
		SegmentID:  rs.seg.ID,
	})
}

type stop struct {
	t    float64
	node da.Index
}

// collectStops. per segment, the nodes it passes through ordered by position along the segment.
func (b *Builder) collectStops(resolved []resolvedSegment, endpoints [][2]da.Index, crossings []da.Crossing,
	declared []da.Point, nodes *nodeSet) [][]stop {
	stopsOf := make([][]stop, len(resolved))
	for i := range resolved {
		stopsOf[i] = []stop{{t: 0, node: endpoints[i][0]}, {t: 1, node: endpoints[i][1]}}
	}

	for _, c := range crossings {
		id := nodes.getOrCreate(c.Point)
		stopsOf[c.First] = append(stopsOf[c.First], stop{t: c.UA, node: id})
		stopsOf[c.Second] = append(stopsOf[c.Second], stop{t: c.UB, node: id})
	}

	for i, rs := range resolved {
		for _, p := range declared {
			t := da.ProjectionParam(rs.start, rs.end, p)
			if t <= 0 || t >= 1 {
				continue
			}
			proj := da.NewPoint(rs.start.X+t*(rs.end.X-rs.start.X), rs.start.Y+t*(rs.end.Y-rs.start.Y))
			if da.SamePoint(proj, p, b.opts.NodeEpsilon) {
				stopsOf[i] = append(stopsOf[i], stop{t: t, node: nodes.getOrCreate(p)})
			}
		}

		sort.SliceStable(stopsOf[i], func(a, c int) bool {
			return stopsOf[i][a].t < stopsOf[i][c].t
		})
	}
	return stopsOf
}
