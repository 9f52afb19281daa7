package geo

import (
	"github.com/twpayne/go-polyline"
)

// PolylineFromCoords encodes coords with the google polyline algorithm (precision 5).
func PolylineFromCoords(coords []Coordinate) string {
	if len(coords) == 0 {
		return ""
	}
	s := make([][]float64, 0, len(coords))
	for _, c := range coords {
		s = append(s, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(s))
}

func CoordsFromPolyline(encoded string) ([]Coordinate, error) {
	decoded, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, 0, len(decoded))
	for _, c := range decoded {
		coords = append(coords, NewCoordinate(c[0], c[1]))
	}
	return coords, nil
}
