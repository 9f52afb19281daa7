package osmparser

import (
	"context"
	"strings"
	"testing"

	"github.com/lintang-b-s/Congestionx/pkg"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/geo"
	"github.com/lintang-b-s/Congestionx/pkg/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testExtract = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="0" lon="0"/>
  <node id="2" lat="0" lon="0.001"/>
  <node id="3" lat="0" lon="0.002">
    <tag k="highway" v="traffic_signals"/>
  </node>
  <node id="4" lat="0.001" lon="0.001"/>
  <node id="9" lat="5" lon="5"/>
  <way id="10">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="primary"/>
    <tag k="maxspeed" v="50"/>
    <tag k="lanes" v="2"/>
  </way>
  <way id="11">
    <nd ref="2"/>
    <nd ref="4"/>
    <tag k="highway" v="residential_link"/>
  </way>
  <way id="12">
    <nd ref="1"/>
    <nd ref="9"/>
    <tag k="waterway" v="river"/>
  </way>
</osm>`

func TestParse(t *testing.T) {
	parser := NewOsmParser(zap.NewNop(), 40)
	in, err := parser.Parse(context.Background(), strings.NewReader(testExtract), XML)
	require.NoError(t, err)

	ids := make([]string, 0, len(in.Segments))
	for _, s := range in.Segments {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"way/10/0", "way/10/1", "way/11/0", "node/3"}, ids)

	first := in.Segments[0]
	assert.Equal(t, pkg.FREEFORM, first.Kind)
	assert.Equal(t, da.NewPoint(0, 0), *first.Start)
	assert.Equal(t, da.NewPoint(0.001, 0), *first.End)
	assert.Equal(t, uint8(2), first.Lanes)
	assert.Equal(t, 50.0, first.SpeedLimit)

	link := in.Segments[2]
	assert.Equal(t, uint8(1), link.Lanes)
	assert.Equal(t, 30.0, link.SpeedLimit)

	signal := in.Segments[3]
	assert.Equal(t, pkg.SIGNAL, signal.Kind)
	assert.Equal(t, da.NewPoint(0.002, 0), *signal.Start)

	assert.Equal(t, geo.GEOGRAPHIC.String(), in.Metadata.CoordinateSystem)
	assert.Equal(t, 40.0, in.Metadata.DefaultSpeedLimit)
	assert.InDelta(t, 0.002, in.Metadata.Width, 1e-12)
	assert.InDelta(t, 0.001, in.Metadata.Height, 1e-12)
}

func TestParsedExtractBuildsNetwork(t *testing.T) {
	in, err := NewOsmParser(zap.NewNop(), 40).Parse(context.Background(), strings.NewReader(testExtract), XML)
	require.NoError(t, err)

	opts := network.DefaultOptions()
	opts.CoordinateSystem = geo.GEOGRAPHIC
	net, err := network.NewBuilder(zap.NewNop(), opts).BuildNetwork(in)
	require.NoError(t, err)

	assert.Len(t, net.Nodes, 4)
	assert.Len(t, net.Edges, 3)
	require.Len(t, net.Features, 1)
	assert.Equal(t, pkg.SIGNAL, net.Features[0].Kind)

	g := net.ToGraph()
	assert.Equal(t, 1, g.NumberOfComponents())
	// 0.001 degree of longitude on the equator
	assert.InDelta(t, 0.1112, net.Edges[0].BaseLength, 1e-3)
}

func TestParseMaxSpeed(t *testing.T) {
	testCases := []struct {
		val    string
		want   float64
		wantOk bool
	}{
		{val: "50", want: 50, wantOk: true},
		{val: "50 km/h", want: 50, wantOk: true},
		{val: "30 mph", want: 30 * 1.60934, wantOk: true},
		{val: "10 knots", want: 18.52, wantOk: true},
		{val: "signals", wantOk: false},
		{val: "", wantOk: false},
		{val: "-5", wantOk: false},
	}

	for _, tt := range testCases {
		t.Run(tt.val, func(t *testing.T) {
			got, ok := parseMaxSpeed(tt.val)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, PBF, FormatFromPath("data/jakarta.osm.pbf"))
	assert.Equal(t, XML, FormatFromPath("data/small.osm"))
	assert.Equal(t, XML, FormatFromPath("data/SMALL.XML"))
}

func TestSourceMissingFile(t *testing.T) {
	src := NewSource("/does/not/exist.osm.pbf", NewOsmParser(zap.NewNop(), 40))
	assert.Equal(t, "exist.osm.pbf", src.Name())

	_, err := src.Load(context.Background())
	assert.Error(t, err)
}
