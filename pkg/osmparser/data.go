package osmparser

import (
	"strconv"
	"strings"

	"github.com/lintang-b-s/Congestionx/pkg"
	"github.com/paulmach/osm"
)

var (
	acceptedHighway = map[string]struct{}{
		"motorway":         {},
		"motorway_link":    {},
		"trunk":            {},
		"trunk_link":       {},
		"primary":          {},
		"primary_link":     {},
		"secondary":        {},
		"secondary_link":   {},
		"residential":      {},
		"residential_link": {},
		"service":          {},
		"tertiary":         {},
		"tertiary_link":    {},
		"road":             {},
		"track":            {},
		"unclassified":     {},
		"undefined":        {},
		"unknown":          {},
		"living_street":    {},
		"private":          {},
		"motorroad":        {},
	}

	// km/h, used when a way has no usable maxspeed tag
	highwaySpeed = map[string]float64{
		"motorway":      100,
		"motorroad":     90,
		"trunk":         80,
		"primary":       60,
		"secondary":     50,
		"tertiary":      40,
		"unclassified":  30,
		"residential":   30,
		"road":          30,
		"service":       20,
		"track":         15,
		"living_street": 10,
	}
)

const DEFAULT_ROAD_SPEED = 30.0

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	junction := way.Tags.Find("junction")
	if highway != "" {
		if _, ok := acceptedHighway[highway]; ok {
			return true
		}
	} else if junction != "" {
		return true
	}
	return false
}

func roadTypeSpeed(highway string) float64 {
	highway = strings.TrimSuffix(highway, "_link")
	if speed, ok := highwaySpeed[highway]; ok {
		return speed
	}
	return DEFAULT_ROAD_SPEED
}

// parseMaxSpeed reads a maxspeed tag value into km/h. "50", "50 km/h", "30 mph" and "10 knots" are understood.
func parseMaxSpeed(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	factor := 1.0
	switch {
	case strings.HasSuffix(val, "mph"):
		val, factor = strings.TrimSuffix(val, "mph"), 1.60934
	case strings.HasSuffix(val, "km/h"):
		val = strings.TrimSuffix(val, "km/h")
	case strings.HasSuffix(val, "knots"):
		val, factor = strings.TrimSuffix(val, "knots"), 1.852
	}
	speed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return speed * factor, true
}

func wayLanes(way *osm.Way) uint8 {
	lanes, err := strconv.Atoi(way.Tags.Find("lanes"))
	if err != nil || lanes <= 0 || lanes > 255 {
		return 1
	}
	return uint8(lanes)
}

func waySpeed(way *osm.Way) float64 {
	if speed, ok := parseMaxSpeed(way.Tags.Find("maxspeed")); ok {
		return speed
	}
	return roadTypeSpeed(way.Tags.Find("highway"))
}

// nodeFeature maps point tags onto overlay-only road kinds.
func nodeFeature(tags osm.Tags) (pkg.RoadKind, bool) {
	switch {
	case tags.Find("highway") == "traffic_signals" || tags.Find("crossing") == "traffic_signals":
		return pkg.SIGNAL, true
	case tags.Find("highway") == "motorway_junction":
		return pkg.EXIT, true
	case tags.Find("entrance") != "":
		return pkg.ENTRANCE, true
	default:
		return pkg.UNKNOWN_KIND, false
	}
}
