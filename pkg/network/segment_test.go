package network

import (
	"errors"
	"math"
	"testing"

	"github.com/lintang-b-s/Congestionx/pkg"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/util"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	start, end := da.NewPoint(1, 2), da.NewPoint(3, 4)
	testCases := []struct {
		name      string
		seg       RoadSegment
		wantStart da.Point
		wantEnd   da.Point
		wantErr   bool
	}{
		{
			name:      "horizontal shares y",
			seg:       NewHorizontalSegment("h", 5, 0, 10),
			wantStart: da.NewPoint(0, 5),
			wantEnd:   da.NewPoint(10, 5),
		},
		{
			name:      "vertical shares x",
			seg:       NewVerticalSegment("v", 7, 10, 2),
			wantStart: da.NewPoint(7, 10),
			wantEnd:   da.NewPoint(7, 2),
		},
		{
			name:      "freeform",
			seg:       NewFreeformSegment("f", start, end),
			wantStart: start,
			wantEnd:   end,
		},
		{
			name:      "freeform from svg path",
			seg:       NewPathSegment("p", pkg.FREEFORM, "M 10,20 L 30,40"),
			wantStart: da.NewPoint(10, 20),
			wantEnd:   da.NewPoint(30, 40),
		},
		{
			name:      "signal keeps its geometry",
			seg:       NewPathSegment("s", pkg.SIGNAL, "M 1 1 L 2 2"),
			wantStart: da.NewPoint(1, 1),
			wantEnd:   da.NewPoint(2, 2),
		},
		{
			name:    "freeform without coordinates",
			seg:     RoadSegment{ID: "x", Kind: pkg.FREEFORM},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			seg:     RoadSegment{ID: "x", Kind: pkg.UNKNOWN_KIND, Start: &start, End: &end},
			wantErr: true,
		},
		{
			name:    "non-finite coordinate",
			seg:     NewHorizontalSegment("nan", math.NaN(), 0, 1),
			wantErr: true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			gotStart, gotEnd, err := tt.seg.Resolve()
			if tt.wantErr {
				assert.True(t, errors.Is(err, util.ErrBadParamInput))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStart, gotStart)
			assert.Equal(t, tt.wantEnd, gotEnd)
		})
	}
}

func TestParsePathEndpoints(t *testing.T) {
	testCases := []struct {
		name      string
		d         string
		wantStart da.Point
		wantEnd   da.Point
		wantErr   bool
	}{
		{name: "comma separated", d: "M 10,20 L 30,40", wantStart: da.NewPoint(10, 20), wantEnd: da.NewPoint(30, 40)},
		{name: "compact with extra vertex", d: "M10 20L30 40L50 60", wantStart: da.NewPoint(10, 20), wantEnd: da.NewPoint(50, 60)},
		{name: "implicit lineto", d: "M 0,0 5,5 9,1", wantStart: da.NewPoint(0, 0), wantEnd: da.NewPoint(9, 1)},
		{name: "exponent and negative", d: "M 1e1,-2 L 3.5,4", wantStart: da.NewPoint(10, -2), wantEnd: da.NewPoint(3.5, 4)},
		{name: "single coordinate", d: "M 10,20", wantErr: true},
		{name: "non-numeric token", d: "M 10,abc L 1,2", wantErr: true},
		{name: "does not start with M", d: "L 1 2 L 3 4", wantErr: true},
		{name: "curve command", d: "M 1,2 C 3,4 5,6 7,8", wantErr: true},
		{name: "dangling coordinate", d: "M 1,2,3 L 4,5", wantErr: true},
		{name: "empty", d: "", wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			gotStart, gotEnd, err := ParsePathEndpoints(tt.d)
			if tt.wantErr {
				assert.True(t, errors.Is(err, util.ErrBadParamInput))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStart, gotStart)
			assert.Equal(t, tt.wantEnd, gotEnd)
		})
	}
}
