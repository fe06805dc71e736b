package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidPlacement is returned for a placement line that does not hold a 4x4 matrix.
var ErrInvalidPlacement = errors.New("invalid placement line")

// Placement is one spawn transform read from a placement list.
type Placement struct {
	Matrix [16]float32
}

// Translation returns the translation stored in elements 12..14.
func (p Placement) Translation() [3]float32 {
	return [3]float32{p.Matrix[12], p.Matrix[13], p.Matrix[14]}
}

// ParsePlacements reads one matrix per line, written as sixteen floats
// separated by '{', '}', ',' or whitespace, e.g.
//
//	{1,0,0,0} {0,1,0,0} {0,0,1,0} {12.5,-3,0,1}
//
// Blank lines are skipped.
func ParsePlacements(r io.Reader) ([]Placement, error) {
	var out []Placement

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == '{' || r == '}' || r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) != 16 {
			return nil, fmt.Errorf("%w %d: %d values, want 16", ErrInvalidPlacement, line, len(fields))
		}

		var p Placement
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("%w %d: %v", ErrInvalidPlacement, line, err)
			}
			p.Matrix[i] = float32(v)
		}
		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading placements: %w", err)
	}
	return out, nil
}

// ParsePlacementsFile parses a placement list from disk.
func ParsePlacementsFile(path string) ([]Placement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening placements: %w", err)
	}
	defer f.Close()
	return ParsePlacements(f)
}

// WritePlacements writes placements in the format ParsePlacements reads,
// one braced row per matrix row.
func WritePlacements(w io.Writer, placements []Placement) error {
	bw := bufio.NewWriter(w)
	for _, p := range placements {
		for row := 0; row < 4; row++ {
			if row > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteByte('{')
			for col := 0; col < 4; col++ {
				if col > 0 {
					bw.WriteByte(',')
				}
				bw.WriteString(strconv.FormatFloat(float64(p.Matrix[row*4+col]), 'g', -1, 32))
			}
			bw.WriteByte('}')
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// TranslationPlacement returns an identity placement moved to (x, y, z).
func TranslationPlacement(x, y, z float32) Placement {
	return Placement{Matrix: [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}}
}
