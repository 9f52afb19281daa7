package datastructure

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/Congestionx/pkg"
	"github.com/lintang-b-s/Congestionx/pkg/util"
)

// WriteGraph. bzip2-compressed text file:
//
//	numVertices numEdges numIntersections
//	id x y                                          (numVertices lines)
//	id from to baseLength lanes speedLimit kind "segmentId"  (numEdges lines)
//	x y                                             (numIntersections lines)
//	minX minY maxX maxY
//	width height defaultSpeedLimit minSeparation "coordinateSystem"
//
// multipliers are not persisted, a loaded graph starts at free flow.
func (g *Graph) WriteGraph(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	if err := g.Encode(bz); err != nil {
		bz.Close()
		return err
	}
	return bz.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Encode writes the uncompressed text form of the graph.
func (g *Graph) Encode(out io.Writer) error {
	w := bufio.NewWriter(out)

	fmt.Fprintf(w, "%d %d %d\n", g.NumberOfVertices(), g.NumberOfEdges(), len(g.intersections))

	for vId := 0; vId < g.NumberOfVertices(); vId++ {
		v := g.vertices[vId]
		fmt.Fprintf(w, "%d %s %s\n", v.id, formatFloat(v.x), formatFloat(v.y))
	}

	for _, e := range g.edges {
		fmt.Fprintf(w, "%d %d %d %s %d %s %d %s\n",
			e.id, e.from, e.to, formatFloat(e.baseLength), e.lanes, formatFloat(e.speedLimit), e.kind,
			strconv.Quote(e.segmentID))
	}

	for _, p := range g.intersections {
		fmt.Fprintf(w, "%s %s\n", formatFloat(p.X), formatFloat(p.Y))
	}

	bb := g.boundingBox
	if bb == nil || bb.IsEmpty() {
		bb = NewBoundingBox(0, 0, 0, 0)
	}
	fmt.Fprintf(w, "%s %s %s %s\n",
		formatFloat(bb.GetMinX()), formatFloat(bb.GetMinY()), formatFloat(bb.GetMaxX()), formatFloat(bb.GetMaxY()))

	md := g.metadata
	fmt.Fprintf(w, "%s %s %s %s %s\n",
		formatFloat(md.Width), formatFloat(md.Height), formatFloat(md.DefaultSpeedLimit), formatFloat(md.MinSeparation),
		strconv.Quote(md.CoordinateSystem))

	return w.Flush()
}

func fields(s string) []string {
	return strings.Fields(s)
}

func ParseIndex(s string) (Index, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return 0, fmt.Errorf("value %s overflows uint32", s)
	}
	return Index(u), nil
}

func ReadGraph(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	return ReadGraphFrom(bz)
}

// ReadGraphFrom parses the uncompressed text form written by Encode.
func ReadGraphFrom(in io.Reader) (*Graph, error) {
	br := bufio.NewReader(in)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}

	tokens := fields(line)
	if len(tokens) != 3 {
		return nil, fmt.Errorf("header: expected 3 fields, got %d", len(tokens))
	}

	numVertices, err := ParseIndex(tokens[0])
	if err != nil {
		return nil, err
	}
	numEdges, err := ParseIndex(tokens[1])
	if err != nil {
		return nil, err
	}
	numIntersections, err := ParseIndex(tokens[2])
	if err != nil {
		return nil, err
	}

	vertices := make([]*Vertex, numVertices)
	for i := 0; i < int(numVertices); i++ {
		vertexLine, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		vertices[i], err = parseVertex(vertexLine)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		if vertices[i].id != Index(i) {
			return nil, fmt.Errorf("vertex %d: out of order id %d", i, vertices[i].id)
		}
	}

	edges := make([]*Edge, numEdges)
	for i := 0; i < int(numEdges); i++ {
		edgeLine, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		edges[i], err = parseEdge(edgeLine)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		if edges[i].id != Index(i) || edges[i].from >= numVertices || edges[i].to >= numVertices {
			return nil, fmt.Errorf("edge %d: invalid id or endpoint", i)
		}
	}

	intersections := make([]Point, numIntersections)
	for i := 0; i < int(numIntersections); i++ {
		pLine, err := util.ReadLine(br)
		if err != nil {
			return nil, err
		}
		floats, err := parseFloats(fields(pLine), 2)
		if err != nil {
			return nil, fmt.Errorf("intersection %d: %w", i, err)
		}
		intersections[i] = NewPoint(floats[0], floats[1])
	}

	bbLine, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}
	bbf, err := parseFloats(fields(bbLine), 4)
	if err != nil {
		return nil, fmt.Errorf("bounding box: %w", err)
	}

	mdLine, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}
	md, err := parseMetadata(mdLine)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}

	graph := NewGraph(vertices, edges)
	graph.SetIntersections(intersections)
	graph.SetBoundingBox(NewBoundingBox(bbf[0], bbf[1], bbf[2], bbf[3]))
	graph.SetMetadata(md)
	return graph, nil
}

func parseFloats(tokens []string, n int) ([]float64, error) {
	if len(tokens) != n {
		return nil, fmt.Errorf("expected %d fields, got %d", n, len(tokens))
	}
	out := make([]float64, n)
	for i, tok := range tokens {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func parseVertex(line string) (*Vertex, error) {
	tokens := fields(line)
	if len(tokens) != 3 {
		return nil, fmt.Errorf("expected 3 fields, got %d", len(tokens))
	}
	id, err := ParseIndex(tokens[0])
	if err != nil {
		return nil, err
	}
	x, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return nil, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return nil, fmt.Errorf("y: %w", err)
	}
	return NewVertex(x, y, id), nil
}

func parseEdge(line string) (*Edge, error) {
	// the quoted segment id is last and may contain spaces
	tokens := strings.SplitN(line, " ", 8)
	if len(tokens) != 8 {
		return nil, fmt.Errorf("expected 8 fields, got %d", len(tokens))
	}
	id, err := ParseIndex(tokens[0])
	if err != nil {
		return nil, err
	}
	from, err := ParseIndex(tokens[1])
	if err != nil {
		return nil, err
	}
	to, err := ParseIndex(tokens[2])
	if err != nil {
		return nil, err
	}
	baseLength, err := strconv.ParseFloat(tokens[3], 64)
	if err != nil {
		return nil, fmt.Errorf("baseLength: %w", err)
	}
	lanes, err := strconv.ParseUint(tokens[4], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("lanes: %w", err)
	}
	speedLimit, err := strconv.ParseFloat(tokens[5], 64)
	if err != nil {
		return nil, fmt.Errorf("speedLimit: %w", err)
	}
	kind, err := strconv.Atoi(tokens[6])
	if err != nil {
		return nil, fmt.Errorf("kind: %w", err)
	}
	segmentID, err := strconv.Unquote(tokens[7])
	if err != nil {
		return nil, fmt.Errorf("segmentId: %w", err)
	}

	e := NewEdge(id, from, to, baseLength, pkg.RoadKind(kind), segmentID)
	e.SetLanes(uint8(lanes))
	e.SetSpeedLimit(speedLimit)
	return e, nil
}

func parseMetadata(line string) (MapMetadata, error) {
	tokens := strings.SplitN(line, " ", 5)
	if len(tokens) != 5 {
		return MapMetadata{}, fmt.Errorf("expected 5 fields, got %d", len(tokens))
	}
	floats, err := parseFloats(tokens[:4], 4)
	if err != nil {
		return MapMetadata{}, err
	}
	cs, err := strconv.Unquote(tokens[4])
	if err != nil {
		return MapMetadata{}, err
	}
	return MapMetadata{
		Width:             floats[0],
		Height:            floats[1],
		DefaultSpeedLimit: floats[2],
		MinSeparation:     floats[3],
		CoordinateSystem:  cs,
	}, nil
}
