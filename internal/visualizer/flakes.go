package visualizer

import (
	"strings"

	"github.com/olivier-w/snowglobe/internal/field"
)

// flakeRamp goes from an empty cell to a drift.
var flakeRamp = []rune{' ', '·', '*', '✻', '❄'}

// Flakes draws one glyph per terminal cell, heavier where more flakes
// share the cell.
type Flakes struct {
	counts []int
	output string
}

func NewFlakes() *Flakes {
	return &Flakes{}
}

func (f *Flakes) Name() string { return "flakes" }

func (f *Flakes) Update(points []field.Point, fieldW, fieldH, width, height int) {
	cols := max(1, width)
	rows := max(1, height)

	if cap(f.counts) < cols*rows {
		f.counts = make([]int, cols*rows)
	}
	f.counts = f.counts[:cols*rows]
	clear(f.counts)

	for _, p := range points {
		f.counts[scale(p.Y, fieldH, rows)*cols+scale(p.X, fieldW, cols)]++
	}

	lines := make([]string, rows)
	for row := range rows {
		var line strings.Builder
		for col := range cols {
			n := min(f.counts[row*cols+col], len(flakeRamp)-1)
			line.WriteRune(flakeRamp[n])
		}
		lines[row] = line.String()
	}
	f.output = strings.Join(lines, "\n")
}

func (f *Flakes) View() string {
	return f.output
}
