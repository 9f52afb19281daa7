package pkg

// enum of road segment kind
type RoadKind uint8

const (
	HORIZONTAL RoadKind = iota
	VERTICAL
	FREEFORM
	SIGNAL
	ENTRANCE
	EXIT
	UNKNOWN_KIND
)

const (
	INF_WEIGHT float64 = 1e15

	NODE_EPSILON             = 1e-4 // node merge distance, local/geographic units
	PIXEL_NODE_EPSILON       = 5.0  // node merge distance for svg pixel-space graphs
	INTERSECTION_DECIMALS    = 4
	PARALLEL_DETERMINANT_EPS = 1e-10
	DEFAULT_EDGE_LENGTH      = 1000.0

	DEFAULT_MATCH_RADIUS      = 0.01
	TRIVIAL_ROUTE_THRESHOLD   = 0.0005
	DEFAULT_NOMINAL_SPEED_KMH = 40.0
	DEFAULT_MAX_ALTERNATIVES  = 5

	LOW_CONGESTION_SPEED_RATIO    = 0.8
	MEDIUM_CONGESTION_SPEED_RATIO = 0.5
)

func GetRoadKind(kind string) RoadKind {
	switch kind {
	case "horizontal":
		return HORIZONTAL
	case "vertical":
		return VERTICAL
	case "freeform", "route", "path":
		return FREEFORM
	case "signal":
		return SIGNAL
	case "entrance":
		return ENTRANCE
	case "exit":
		return EXIT
	default:
		return UNKNOWN_KIND
	}
}

func (k RoadKind) String() string {
	switch k {
	case HORIZONTAL:
		return "horizontal"
	case VERTICAL:
		return "vertical"
	case FREEFORM:
		return "freeform"
	case SIGNAL:
		return "signal"
	case ENTRANCE:
		return "entrance"
	case EXIT:
		return "exit"
	default:
		return "unknown"
	}
}

func (k RoadKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText never fails, unknown kinds decode to UNKNOWN_KIND so one bad record does not reject a whole file.
func (k *RoadKind) UnmarshalText(text []byte) error {
	*k = GetRoadKind(string(text))
	return nil
}

// IsMetadata. signal/entrance/exit segments are overlay features only and never become edges.
func (k RoadKind) IsMetadata() bool {
	return k == SIGNAL || k == ENTRANCE || k == EXIT
}

func (k RoadKind) IsRoutable() bool {
	return k == HORIZONTAL || k == VERTICAL || k == FREEFORM
}

// enum of congestion intensity
type CongestionLevel uint8

const (
	LOW_CONGESTION CongestionLevel = iota
	MEDIUM_CONGESTION
	HIGH_CONGESTION
)

func (c CongestionLevel) Multiplier() float64 {
	switch c {
	case MEDIUM_CONGESTION:
		return 2.0
	case HIGH_CONGESTION:
		return 3.0
	default:
		return 1.0
	}
}

func (c CongestionLevel) String() string {
	switch c {
	case MEDIUM_CONGESTION:
		return "medium"
	case HIGH_CONGESTION:
		return "high"
	default:
		return "low"
	}
}

// CongestionLevelFromMultiplier maps an averaged multiplier back onto the nearest discrete level.
func CongestionLevelFromMultiplier(m float64) CongestionLevel {
	switch {
	case m >= 2.5:
		return HIGH_CONGESTION
	case m >= 1.5:
		return MEDIUM_CONGESTION
	default:
		return LOW_CONGESTION
	}
}
