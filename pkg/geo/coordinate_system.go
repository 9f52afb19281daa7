package geo

import (
	"fmt"
	"strings"
)

// CoordinateSystem decides how lengths and separations are measured.
// planar: x/y in arbitrary units (pixels, normalized space). geographic: x = longitude, y = latitude.
type CoordinateSystem string

const (
	PLANAR     CoordinateSystem = "planar"
	GEOGRAPHIC CoordinateSystem = "geographic"
)

func ParseCoordinateSystem(s string) (CoordinateSystem, error) {
	switch CoordinateSystem(strings.ToLower(strings.TrimSpace(s))) {
	case PLANAR, "":
		return PLANAR, nil
	case GEOGRAPHIC:
		return GEOGRAPHIC, nil
	default:
		return "", fmt.Errorf("unknown coordinate system %q", s)
	}
}

func (cs CoordinateSystem) String() string {
	return string(cs)
}

// Length. real-world length of the straight line (x1,y1)-(x2,y2): euclidean units for planar, km for geographic.
func (cs CoordinateSystem) Length(x1, y1, x2, y2 float64) float64 {
	if cs == GEOGRAPHIC {
		return CalculateHaversineDistance(y1, x1, y2, x2)
	}
	return EuclideanDistance(x1, y1, x2, y2)
}

// Separation. distance compared against the trivial-route threshold: euclidean for planar, degrees of arc for geographic.
func (cs CoordinateSystem) Separation(x1, y1, x2, y2 float64) float64 {
	if cs == GEOGRAPHIC {
		return AngularDistanceDegrees(y1, x1, y2, x2)
	}
	return EuclideanDistance(x1, y1, x2, y2)
}

// Valid. geographic points must be normalized lat/lon.
func (cs CoordinateSystem) Valid(x, y float64) bool {
	if cs == GEOGRAPHIC {
		return ValidLatLon(y, x)
	}
	return true
}
