package engine

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// directions is the fixed neighbor enumeration order: up, down, left, right.
// Search tie-breaking and adjacent-cell selection depend on it.
var directions = [4]Cell{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

// Grid is the read-only query surface over a map's cells, obstacles and stations
type Grid struct {
	cols      int
	rows      int
	obstacles mapset.Set[Cell]
	stations  []Station
	byKey     map[string]Station
	byCell    map[Cell]Station
}

// NewGrid builds a grid. Every targetable station must have at least one open
// neighbor; a map that breaks this is rejected here rather than during play.
func NewGrid(cols, rows int, obstacles []Cell, stations []Station) (*Grid, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidMap, cols, rows)
	}

	g := &Grid{
		cols:      cols,
		rows:      rows,
		obstacles: mapset.New[Cell](),
		byKey:     make(map[string]Station, len(stations)),
		byCell:    make(map[Cell]Station, len(stations)),
	}

	for _, c := range obstacles {
		if !g.InBounds(c) {
			return nil, fmt.Errorf("%w: obstacle (%d,%d) is outside the grid", ErrInvalidMap, c.X, c.Y)
		}
		g.obstacles.Put(c)
	}

	for _, st := range stations {
		if st.Key == "" {
			return nil, fmt.Errorf("%w: station at (%d,%d) has no key", ErrInvalidMap, st.X, st.Y)
		}
		if _, dup := g.byKey[st.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate station key %q", ErrInvalidMap, st.Key)
		}
		if !g.InBounds(st.Cell()) {
			return nil, fmt.Errorf("%w: station %q at (%d,%d) is outside the grid", ErrInvalidMap, st.Key, st.X, st.Y)
		}
		if other, taken := g.byCell[st.Cell()]; taken {
			return nil, fmt.Errorf("%w: stations %q and %q share cell (%d,%d)", ErrInvalidMap, other.Key, st.Key, st.X, st.Y)
		}
		g.stations = append(g.stations, st)
		g.byKey[st.Key] = st
		g.byCell[st.Cell()] = st
	}

	for _, st := range g.stations {
		if !st.Targetable() {
			continue
		}
		if _, ok := g.AdjacentOpenCell(st.Cell(), st.Cell()); !ok {
			return nil, fmt.Errorf("%w: station %q at (%d,%d)", ErrNoAdjacentCell, st.Key, st.X, st.Y)
		}
	}

	return g, nil
}

// NewGridFromConfig builds the grid described by a map configuration's layout and stations
func NewGridFromConfig(config *MapConfig) (*Grid, error) {
	return NewGrid(config.Cols, config.Rows, ObstaclesFromLayout(config.Layout), config.Stations)
}

// Cols returns the number of columns
func (g *Grid) Cols() int {
	return g.cols
}

// Rows returns the number of rows
func (g *Grid) Rows() int {
	return g.rows
}

// InBounds reports whether the cell lies inside the grid
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.cols && c.Y >= 0 && c.Y < g.rows
}

// IsBlocked reports whether the cell is an obstacle or outside the grid
func (g *Grid) IsBlocked(c Cell) bool {
	return !g.InBounds(c) || g.obstacles.Has(c)
}

// Neighbors returns the open 4-neighbors of c in up, down, left, right order
func (g *Grid) Neighbors(c Cell) []Cell {
	out := make([]Cell, 0, len(directions))
	for _, d := range directions {
		n := Cell{X: c.X + d.X, Y: c.Y + d.Y}
		if !g.IsBlocked(n) {
			out = append(out, n)
		}
	}
	return out
}

// StationAt returns the station occupying the cell, if any
func (g *Grid) StationAt(c Cell) (Station, bool) {
	st, ok := g.byCell[c]
	return st, ok
}

// Station looks a station up by key
func (g *Grid) Station(key string) (Station, bool) {
	st, ok := g.byKey[key]
	return st, ok
}

// Stations returns the stations in declaration order
func (g *Grid) Stations() []Station {
	out := make([]Station, len(g.stations))
	copy(out, g.stations)
	return out
}

// ObstacleCount returns the number of blocked in-bounds cells
func (g *Grid) ObstacleCount() int {
	return g.obstacles.Size()
}

// AdjacentOpenCell picks the open neighbor of stationCell closest to from by
// Manhattan distance. Ties go to the earlier direction in enumeration order.
func (g *Grid) AdjacentOpenCell(stationCell, from Cell) (Cell, bool) {
	var best Cell
	bestDistance := -1
	for _, n := range g.Neighbors(stationCell) {
		d := ManhattanDistance(n, from)
		if bestDistance == -1 || d < bestDistance {
			best = n
			bestDistance = d
		}
	}
	return best, bestDistance != -1
}

// IsAdjacent reports whether a and b are exactly one orthogonal step apart
func IsAdjacent(a, b Cell) bool {
	return ManhattanDistance(a, b) == 1
}

// ObstaclesFromLayout returns the cells marked with ObstacleChar in the layout rows
func ObstaclesFromLayout(layout []string) []Cell {
	var cells []Cell
	for y, row := range layout {
		for x, ch := range row {
			if ch == ObstacleChar {
				cells = append(cells, Cell{X: x, Y: y})
			}
		}
	}
	return cells
}
