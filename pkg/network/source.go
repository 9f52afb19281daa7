package network

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	da "github.com/lintang-b-s/Congestionx/pkg/datastructure"
	"github.com/lintang-b-s/Congestionx/pkg/util"
)

// Source supplies already-extracted segment records. Name identifies the source for caching.
type Source interface {
	Name() string
	Load(ctx context.Context) (Input, error)
}

// FileSource reads an Input encoded as json.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return filepath.Base(s.path)
}

func (s *FileSource) Load(ctx context.Context) (Input, error) {
	if err := ctx.Err(); err != nil {
		return Input{}, err
	}
	bb, err := os.ReadFile(s.path)
	if err != nil {
		return Input{}, fmt.Errorf("read network file %s: %w", s.path, err)
	}

	var raw fileInput
	if err := json.Unmarshal(bb, &raw); err != nil {
		return Input{}, util.WrapErrorf(err, util.ErrBadParamInput, "decode network file %s", s.path)
	}

	// segments decode one at a time so a single bad record is skipped instead of failing the file
	in := Input{
		Segments:      make([]RoadSegment, 0, len(raw.Segments)),
		Intersections: raw.Intersections,
		Metadata:      raw.Metadata,
	}
	for i, rec := range raw.Segments {
		var seg RoadSegment
		if err := json.Unmarshal(rec, &seg); err != nil {
			werr := util.WrapErrorf(err, util.ErrBadParamInput, "segment record %d", i)
			in.Rejected = append(in.Rejected, SkippedSegment{ID: recordID(rec, i), Reason: werr.Error()})
			continue
		}
		in.Segments = append(in.Segments, seg)
	}
	return in, nil
}

type fileInput struct {
	Segments      []json.RawMessage `json:"segments"`
	Intersections []da.Point        `json:"intersections,omitempty"`
	Metadata      da.MapMetadata    `json:"metadata"`
}

// recordID is the id of an undecodable segment record when it has a readable one, else its position.
func recordID(rec json.RawMessage, i int) string {
	var head struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(rec, &head); err == nil && head.ID != nil {
		return fmt.Sprint(head.ID)
	}
	return fmt.Sprintf("segments[%d]", i)
}

// GridInput is a rows x cols lattice with one horizontal/vertical segment per unit cell side, spacing apart, origin at (0,0).
func GridInput(rows, cols int, spacing float64) Input {
	segments := make([]RoadSegment, 0, 2*rows*cols)
	for r := 0; r < rows; r++ {
		y := float64(r) * spacing
		for c := 0; c+1 < cols; c++ {
			segments = append(segments, NewHorizontalSegment(fmt.Sprintf("h-%d-%d", r, c), y,
				float64(c)*spacing, float64(c+1)*spacing))
		}
	}
	for c := 0; c < cols; c++ {
		x := float64(c) * spacing
		for r := 0; r+1 < rows; r++ {
			segments = append(segments, NewVerticalSegment(fmt.Sprintf("v-%d-%d", c, r), x,
				float64(r)*spacing, float64(r+1)*spacing))
		}
	}
	return Input{
		Segments: segments,
		Metadata: da.MapMetadata{
			Width:  float64(cols-1) * spacing,
			Height: float64(rows-1) * spacing,
		},
	}
}
