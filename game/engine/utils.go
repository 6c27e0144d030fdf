package engine

import (
	"math"
	"time"
)

// ManhattanDistance calculates the Manhattan distance between two cells
func ManhattanDistance(from, to Cell) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// RowsForViewport derives the row count for a map drawn into a viewport of the
// given size with cols square cells across
func RowsForViewport(width, height float64, cols int) int {
	if cols <= 0 || width <= 0 || height <= 0 {
		return 0
	}
	cellSize := width / float64(cols)
	return int(math.Floor(height / cellSize))
}

// NearestCell rounds a continuous position to the closest grid cell
func NearestCell(p Point) Cell {
	return Cell{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Lerp interpolates between two cell centers; t is clamped to [0, 1]
func Lerp(from, to Cell, t float64) Point {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	a, b := from.Center(), to.Center()
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// PathDuration returns the total time the sequencer needs to walk the path
func PathDuration(path Path, timing Timing) time.Duration {
	var total time.Duration
	for i := 1; i < len(path); i++ {
		total += stepDuration(path[i-1], path[i], timing)
	}
	return total
}

// stepDuration picks the horizontal or vertical duration for one step
func stepDuration(from, to Cell, timing Timing) time.Duration {
	if from.X != to.X {
		return timing.HorizontalStep()
	}
	return timing.VerticalStep()
}
