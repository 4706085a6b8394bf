package tiling

import (
	"fmt"
	"math"

	"github.com/1broseidon/floatwm/internal/config"
	"github.com/1broseidon/floatwm/internal/platform"
)

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Geometry converts r to a platform geometry, clamping negative sizes to zero.
func (r Rect) Geometry() platform.Geometry {
	w, h := r.Width, r.Height
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return platform.Geometry{
		Origin: platform.Point{X: r.X, Y: r.Y},
		Size:   platform.Size{W: uint32(w), H: uint32(h)},
	}
}

// RectFromGeometry converts a platform geometry to a Rect.
func RectFromGeometry(g platform.Geometry) Rect {
	return Rect{X: g.Origin.X, Y: g.Origin.Y, Width: int(g.Size.W), Height: int(g.Size.H)}
}

// CalculateGrid determines the optimal grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows == 0 {
		return 0, 0
	}

	// Calculate columns first (ceiling of square root)
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))

	// Calculate rows needed
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	return rows, cols
}

// CalculatePositions computes window positions for a grid layout with gaps
func CalculatePositions(numWindows int, monitor Rect, gapSize int) []Rect {
	if numWindows == 0 {
		return nil
	}

	rows, cols := CalculateGrid(numWindows)

	// One gap before each column and one after the last.
	totalHorizontalGaps := (cols + 1) * gapSize
	totalVerticalGaps := (rows + 1) * gapSize

	cellWidth := (monitor.Width - totalHorizontalGaps) / cols
	cellHeight := (monitor.Height - totalVerticalGaps) / rows

	positions := make([]Rect, numWindows)

	for i := 0; i < numWindows; i++ {
		row := i / cols
		col := i % cols

		positions[i] = Rect{
			X:      monitor.X + gapSize + col*(cellWidth+gapSize),
			Y:      monitor.Y + gapSize + row*(cellHeight+gapSize),
			Width:  cellWidth,
			Height: cellHeight,
		}
	}

	return positions
}

// CalculateColumns splits the output into two columns filled left to right,
// top to bottom. Every row has the same height; with an odd window count the
// last window spans the full width.
func CalculateColumns(numWindows int, monitor Rect, gapSize int) []Rect {
	if numWindows == 0 {
		return nil
	}

	rows := (numWindows + 1) / 2
	if rows < 1 {
		rows = 1
	}

	colWidth := (monitor.Width - 3*gapSize) / 2
	rowHeight := (monitor.Height - (rows+1)*gapSize) / rows

	positions := make([]Rect, numWindows)
	for i := 0; i < numWindows; i++ {
		row := i / 2
		right := i%2 == 1

		r := Rect{
			X:      monitor.X + gapSize,
			Y:      monitor.Y + gapSize + row*(rowHeight+gapSize),
			Width:  colWidth,
			Height: rowHeight,
		}
		if right {
			r.X += colWidth + gapSize
		} else if i == numWindows-1 {
			r.Width = monitor.Width - 2*gapSize
		}
		positions[i] = r
	}

	return positions
}

// Arrange computes geometries for numWindows windows on an output using the
// given layout mode. LayoutNone returns nil so windows keep their placement.
func Arrange(mode config.LayoutMode, output platform.Geometry, numWindows int, gapSize int) ([]platform.Geometry, error) {
	if numWindows == 0 {
		return nil, nil
	}

	monitor := RectFromGeometry(output)

	var rects []Rect
	switch mode {
	case config.LayoutNone:
		return nil, nil
	case config.LayoutColumns:
		rects = CalculateColumns(numWindows, monitor, gapSize)
	case config.LayoutGrid:
		rects = CalculatePositions(numWindows, monitor, gapSize)
	default:
		return nil, fmt.Errorf("unsupported layout mode: %q", mode)
	}

	out := make([]platform.Geometry, len(rects))
	for i, r := range rects {
		if r.Width <= 0 || r.Height <= 0 {
			return nil, fmt.Errorf(
				"insufficient space for layout: output=%dx%d windows=%d gap=%d (slot=%dx%d)",
				monitor.Width, monitor.Height, numWindows, gapSize, r.Width, r.Height,
			)
		}
		out[i] = r.Geometry()
	}
	return out, nil
}
