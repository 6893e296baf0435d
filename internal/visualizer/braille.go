package visualizer

import (
	"strings"

	"github.com/olivier-w/snowglobe/internal/field"
)

// Braille renders the field using Unicode Braille characters.
// Each cell is a 2x4 dot grid, giving 2x horizontal and 4x vertical resolution.
type Braille struct {
	dots   []uint8
	output string
}

func NewBraille() *Braille {
	return &Braille{}
}

func (b *Braille) Name() string { return "braille" }

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

func (b *Braille) Update(points []field.Point, fieldW, fieldH, width, height int) {
	cols := max(1, width)
	rows := max(1, height)

	// Each braille char covers 2 dot-columns and 4 dot-rows
	dotCols := cols * 2
	dotRows := rows * 4

	if cap(b.dots) < cols*rows {
		b.dots = make([]uint8, cols*rows)
	}
	b.dots = b.dots[:cols*rows]
	clear(b.dots)

	for _, p := range points {
		dc := scale(p.X, fieldW, dotCols)
		dr := scale(p.Y, fieldH, dotRows)
		b.dots[(dr/4)*cols+dc/2] |= 1 << brailleBits[dc%2][dr%4]
	}

	lines := make([]string, rows)
	for row := range rows {
		var line strings.Builder
		for col := range cols {
			line.WriteRune(rune(0x2800 + int(b.dots[row*cols+col])))
		}
		lines[row] = line.String()
	}
	b.output = strings.Join(lines, "\n")
}

func (b *Braille) View() string {
	return b.output
}
