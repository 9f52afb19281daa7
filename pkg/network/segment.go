package network

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/lintang-b-s/Congestionx/pkg"
	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/util"
)

// RoadSegment is one declared road. horizontal roads share Fixed as y and run From..To along x,
// vertical roads share Fixed as x and run From..To along y, freeform roads carry Start/End or an svg Path.
type RoadSegment struct {
	ID         string       `json:"id"`
	Kind       pkg.RoadKind `json:"kind"`
	Fixed      float64      `json:"fixed,omitempty"`
	From       float64      `json:"from,omitempty"`
	To         float64      `json:"to,omitempty"`
	Start      *da.Point    `json:"start,omitempty"`
	End        *da.Point    `json:"end,omitempty"`
	Path       string       `json:"path,omitempty"`
	Lanes      uint8        `json:"lanes,omitempty"`
	SpeedLimit float64      `json:"speed_limit,omitempty"`
}

func NewHorizontalSegment(id string, y, fromX, toX float64) RoadSegment {
	return RoadSegment{ID: id, Kind: pkg.HORIZONTAL, Fixed: y, From: fromX, To: toX}
}

func NewVerticalSegment(id string, x, fromY, toY float64) RoadSegment {
	return RoadSegment{ID: id, Kind: pkg.VERTICAL, Fixed: x, From: fromY, To: toY}
}

func NewFreeformSegment(id string, start, end da.Point) RoadSegment {
	return RoadSegment{ID: id, Kind: pkg.FREEFORM, Start: &start, End: &end}
}

func NewPathSegment(id string, kind pkg.RoadKind, path string) RoadSegment {
	return RoadSegment{ID: id, Kind: kind, Path: path}
}

// Resolve returns (start, end) of the segment from its declared orientation.
func (s RoadSegment) Resolve() (da.Point, da.Point, error) {
	var start, end da.Point
	switch s.Kind {
	case pkg.HORIZONTAL:
		start, end = da.NewPoint(s.From, s.Fixed), da.NewPoint(s.To, s.Fixed)
	case pkg.VERTICAL:
		start, end = da.NewPoint(s.Fixed, s.From), da.NewPoint(s.Fixed, s.To)
	case pkg.FREEFORM, pkg.SIGNAL, pkg.ENTRANCE, pkg.EXIT:
		switch {
		case s.Path != "":
			var err error
			start, end, err = ParsePathEndpoints(s.Path)
			if err != nil {
				return da.Point{}, da.Point{}, err
			}
		case s.Start != nil && s.End != nil:
			start, end = *s.Start, *s.End
		default:
			return da.Point{}, da.Point{}, util.WrapErrorf(nil, util.ErrBadParamInput,
				"segment %q: %s segment needs start/end or path", s.ID, s.Kind)
		}
	default:
		return da.Point{}, da.Point{}, util.WrapErrorf(nil, util.ErrBadParamInput, "segment %q: unknown kind", s.ID)
	}

	if !start.IsFinite() || !end.IsFinite() {
		return da.Point{}, da.Point{}, util.WrapErrorf(nil, util.ErrBadParamInput, "segment %q: non-finite coordinate", s.ID)
	}
	return start, end, nil
}

// ParsePathEndpoints extracts the first and last coordinate of svg path data made of absolute M/L commands,
// e.g. "M 10,20 L 30,40" or "M10 20L30 40L50 60".
func ParsePathEndpoints(d string) (da.Point, da.Point, error) {
	coords, err := parsePathCoordinates(d)
	if err != nil {
		return da.Point{}, da.Point{}, err
	}
	return coords[0], coords[len(coords)-1], nil
}

func tokenizePath(d string) []string {
	var sb strings.Builder
	for _, r := range d {
		switch {
		case r == ',' || unicode.IsSpace(r):
			sb.WriteRune(' ')
		case unicode.IsLetter(r) && r != 'e' && r != 'E':
			sb.WriteRune(' ')
			sb.WriteRune(r)
			sb.WriteRune(' ')
		default:
			sb.WriteRune(r)
		}
	}
	return strings.Fields(sb.String())
}

func parsePathCoordinates(d string) ([]da.Point, error) {
	tokens := tokenizePath(d)
	if len(tokens) == 0 || tokens[0] != "M" {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "path %q: must start with an absolute M command", d)
	}

	coords := make([]da.Point, 0, 2)
	numbers := make([]float64, 0, 2)
	for _, tok := range tokens {
		switch tok {
		case "M", "L":
			if len(numbers) != 0 {
				return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "path %q: dangling coordinate", d)
			}
			continue
		}
		if len(tok) == 1 && unicode.IsLetter(rune(tok[0])) {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "path %q: unsupported command %s", d, tok)
		}

		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "path %q: malformed coordinate %q", d, tok)
		}
		numbers = append(numbers, f)
		if len(numbers) == 2 {
			coords = append(coords, da.NewPoint(numbers[0], numbers[1]))
			numbers = numbers[:0]
		}
	}

	if len(numbers) != 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "path %q: dangling coordinate", d)
	}
	if len(coords) < 2 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "path %q: fewer than two coordinates", d)
	}
	return coords, nil
}
