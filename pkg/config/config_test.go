package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lintang-b-s/Congestionx/pkg"
	"github.com/lintang-b-s/Congestionx/pkg/geo"
	"github.com/lintang-b-s/Congestionx/pkg/network"
	"github.com/lintang-b-s/Congestionx/pkg/osmparser"
	"github.com/lintang-b-s/Congestionx/pkg/util"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, JSON_NETWORK_SOURCE, cfg.NetworkSource)
	assert.Equal(t, geo.PLANAR, cfg.CoordinateSystem)
	assert.Nil(t, cfg.ServiceArea)
	assert.False(t, cfg.SplitAtIntersections)
	assert.Equal(t, 0.01, cfg.MatchRadius)
	assert.Equal(t, 0.0005, cfg.TrivialThreshold)
	assert.Equal(t, 40.0, cfg.NominalSpeedKmh)
	assert.Equal(t, 5, cfg.MaxAlternatives)
	assert.Equal(t, 6060, cfg.APIPort)
	assert.Equal(t, 60*time.Second, cfg.APITimeout)
	assert.Equal(t, "traffic.samples", cfg.TrafficSubject)
	assert.Equal(t, pkg.NODE_EPSILON, cfg.NodeEpsilon)
}

func TestLoadNodeEpsilon(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		want float64
	}{
		{
			name: "default",
			want: pkg.NODE_EPSILON,
		},
		{
			name: "pixel space",
			env:  map[string]string{"PIXEL_SPACE": "true"},
			want: pkg.PIXEL_NODE_EPSILON,
		},
		{
			name: "explicit epsilon wins over pixel space",
			env:  map[string]string{"PIXEL_SPACE": "true", "NODE_EPSILON": "0.5"},
			want: 0.5,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(t.TempDir())
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.NodeEpsilon)
			assert.Equal(t, tt.want, cfg.BuildOptions().NodeEpsilon)
		})
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	resetViper(t)

	dir := t.TempDir()
	yaml := []byte("NETWORK_SOURCE: osm\nNETWORK_PATH: ./data/city.osm.pbf\nCOORDINATE_SYSTEM: geographic\nMAX_ALTERNATIVES: 3\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	t.Setenv("MAX_ALTERNATIVES", "4")
	t.Setenv("SPLIT_AT_INTERSECTIONS", "true")
	t.Setenv("SERVICE_AREA_MIN_X", "106.6")
	t.Setenv("SERVICE_AREA_MIN_Y", "-6.4")
	t.Setenv("SERVICE_AREA_MAX_X", "107.0")
	t.Setenv("SERVICE_AREA_MAX_Y", "-6.0")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, OSM_NETWORK_SOURCE, cfg.NetworkSource)
	assert.Equal(t, geo.GEOGRAPHIC, cfg.CoordinateSystem)
	assert.Equal(t, 4, cfg.MaxAlternatives)
	assert.True(t, cfg.SplitAtIntersections)
	require.NotNil(t, cfg.ServiceArea)
	assert.True(t, cfg.ServiceArea.Contains(106.8, -6.2))
	assert.False(t, cfg.ServiceArea.Contains(107.1, -6.2))

	planner := cfg.PlannerConfig()
	assert.Equal(t, cfg.ServiceArea, planner.ServiceArea)
	assert.Equal(t, geo.GEOGRAPHIC, planner.CoordinateSystem)
	assert.Equal(t, 4, planner.MaxAlternatives)

	opts := cfg.EngineOptions()
	assert.True(t, opts.Build.SplitAtIntersections)
	assert.Equal(t, cfg.GraphCacheDir, opts.CacheDir)
}

func TestLoadRejects(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "partial service area",
			env:  map[string]string{"SERVICE_AREA_MIN_X": "0", "SERVICE_AREA_MIN_Y": "0"},
		},
		{
			name: "inverted service area",
			env: map[string]string{
				"SERVICE_AREA_MIN_X": "10", "SERVICE_AREA_MIN_Y": "0",
				"SERVICE_AREA_MAX_X": "0", "SERVICE_AREA_MAX_Y": "10",
			},
		},
		{
			name: "unknown coordinate system",
			env:  map[string]string{"COORDINATE_SYSTEM": "mercator"},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestSource(t *testing.T) {
	testCases := []struct {
		name     string
		cfg      Config
		wantType any
		wantErr  bool
	}{
		{
			name:     "json file",
			cfg:      Config{NetworkSource: JSON_NETWORK_SOURCE, NetworkPath: "net.json", CoordinateSystem: geo.PLANAR},
			wantType: &network.FileSource{},
		},
		{
			name:     "osm extract",
			cfg:      Config{NetworkSource: OSM_NETWORK_SOURCE, NetworkPath: "city.osm.pbf", CoordinateSystem: geo.GEOGRAPHIC},
			wantType: &osmparser.Source{},
		},
		{
			name:    "osm extract in planar mode",
			cfg:     Config{NetworkSource: OSM_NETWORK_SOURCE, NetworkPath: "city.osm.pbf", CoordinateSystem: geo.PLANAR},
			wantErr: true,
		},
		{
			name:    "unknown source",
			cfg:     Config{NetworkSource: "svg"},
			wantErr: true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			src, err := tt.cfg.Source(zap.NewNop())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, util.ErrBadParamInput))
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, src)
		})
	}
}
