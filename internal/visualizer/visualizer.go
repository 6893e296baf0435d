package visualizer

import "github.com/olivier-w/snowglobe/internal/field"

// Visualizer renders a field snapshot as terminal text.
type Visualizer interface {
	Name() string
	Update(points []field.Point, fieldW, fieldH, width, height int)
	View() string
}

// Modes returns all available visualizers.
func Modes() []Visualizer {
	return []Visualizer{
		NewBraille(),
		NewFlakes(),
	}
}

// scale maps v in [0, span] onto [0, cells).
func scale(v, span, cells int) int {
	if span <= 0 || cells <= 1 {
		return 0
	}
	return min(cells-1, max(0, v*(cells-1)/span))
}
