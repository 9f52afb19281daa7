package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/geo"
	"github.com/lintang-b-s/Congestionx/pkg/network"
	"github.com/lintang-b-s/Congestionx/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"go.uber.org/zap"
)

type Format uint8

const (
	PBF Format = iota
	XML
)

// FormatFromPath. .osm and .xml files are osm xml, everything else is read as pbf.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".osm", ".xml":
		return XML
	default:
		return PBF
	}
}

// OsmParser turns an openstreetmap extract into freeform road segments, x = lon and y = lat.
// every pair of consecutive way nodes becomes one segment so edge lengths follow the road geometry.
type OsmParser struct {
	log        *zap.Logger
	procs      int
	speedLimit float64 // passed through as map metadata
}

func NewOsmParser(log *zap.Logger, defaultSpeedLimit float64) *OsmParser {
	return &OsmParser{log: log, procs: 1, speedLimit: defaultSpeedLimit}
}

func (p *OsmParser) newScanner(ctx context.Context, r io.Reader, format Format) osm.Scanner {
	if format == XML {
		return osmxml.New(ctx, r)
	}
	return osmpbf.New(ctx, r, p.procs)
}

func (p *OsmParser) ParseFile(ctx context.Context, mapFile string) (network.Input, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return network.Input{}, err
	}
	defer f.Close()

	return p.Parse(ctx, f, FormatFromPath(mapFile))
}

// Parse makes two passes over r. the first collects the nodes referenced by accepted ways, the second reads
// their coordinates, point features and the ways themselves.
func (p *OsmParser) Parse(ctx context.Context, r io.ReadSeeker, format Format) (network.Input, error) {
	wayNodes := make(map[osm.NodeID]struct{})

	scanner := p.newScanner(ctx, r, format)
	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			p.log.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		for _, node := range way.Nodes {
			wayNodes[node.ID] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return network.Input{}, util.WrapErrorf(err, util.ErrBadParamInput, "scan openstreetmap ways")
	}
	scanner.Close()

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return network.Input{}, err
	}

	scanner = p.newScanner(ctx, r, format)
	defer scanner.Close()

	coords := make(map[osm.NodeID]da.Point, len(wayNodes))
	features := make([]network.RoadSegment, 0)
	ways := make([]*osm.Way, 0, countWays)
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if _, ok := wayNodes[o.ID]; !ok {
				continue
			}
			pos := da.NewPoint(o.Lon, o.Lat)
			coords[o.ID] = pos

			if kind, ok := nodeFeature(o.Tags); ok {
				seg := network.NewFreeformSegment(fmt.Sprintf("node/%d", o.ID), pos, pos)
				seg.Kind = kind
				features = append(features, seg)
			}
		case *osm.Way:
			if len(o.Nodes) >= 2 && acceptOsmWay(o) {
				ways = append(ways, o)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return network.Input{}, util.WrapErrorf(err, util.ErrBadParamInput, "scan openstreetmap nodes")
	}

	bb := da.NewEmptyBoundingBox()
	segments := make([]network.RoadSegment, 0, len(wayNodes))
	missing := 0
	for _, way := range ways {
		lanes, speed := wayLanes(way), waySpeed(way)
		for i := 0; i+1 < len(way.Nodes); i++ {
			a, okA := coords[way.Nodes[i].ID]
			b, okB := coords[way.Nodes[i+1].ID]
			if !okA || !okB {
				missing++
				continue
			}
			seg := network.NewFreeformSegment(fmt.Sprintf("way/%d/%d", way.ID, i), a, b)
			seg.Lanes = lanes
			seg.SpeedLimit = speed
			segments = append(segments, seg)
			bb.Extend(a.X, a.Y)
			bb.Extend(b.X, b.Y)
		}
	}
	if missing > 0 {
		p.log.Warn("way nodes without coordinates in extract", zap.Int("segments", missing))
	}

	p.log.Info("openstreetmap extract parsed",
		zap.Int("ways", len(ways)), zap.Int("segments", len(segments)), zap.Int("features", len(features)))

	return network.Input{
		Segments: append(segments, features...),
		Metadata: da.MapMetadata{
			Width:             bb.Width(),
			Height:            bb.Height(),
			DefaultSpeedLimit: p.speedLimit,
			CoordinateSystem:  geo.GEOGRAPHIC.String(),
		},
	}, nil
}

// Source serves an openstreetmap extract file as a network source.
type Source struct {
	path   string
	parser *OsmParser
}

func NewSource(path string, parser *OsmParser) *Source {
	return &Source{path: path, parser: parser}
}

func (s *Source) Name() string {
	return filepath.Base(s.path)
}

func (s *Source) Load(ctx context.Context) (network.Input, error) {
	return s.parser.ParseFile(ctx, s.path)
}
