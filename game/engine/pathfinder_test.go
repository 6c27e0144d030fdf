package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bfsDistance is an independent oracle for shortest path lengths
func bfsDistance(grid *Grid, start, goal Cell) int {
	if grid.IsBlocked(goal) {
		return -1
	}
	dist := map[Cell]int{start: 0}
	queue := []Cell{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == goal {
			return dist[c]
		}
		for _, n := range grid.Neighbors(c) {
			if _, seen := dist[n]; !seen {
				dist[n] = dist[c] + 1
				queue = append(queue, n)
			}
		}
	}
	return -1
}

func assertValidPath(t *testing.T, grid *Grid, path Path, start, goal Cell) {
	t.Helper()
	require.NotEmpty(t, path)
	assert.Equal(t, start, path[0])
	assert.Equal(t, goal, path.Last())

	seen := make(map[Cell]bool, len(path))
	for i, c := range path {
		assert.False(t, seen[c], "cell %v repeats", c)
		seen[c] = true
		if i > 0 {
			assert.False(t, grid.IsBlocked(c), "cell %v is blocked", c)
			assert.True(t, IsAdjacent(path[i-1], c), "%v -> %v is not a single step", path[i-1], c)
		}
	}
}

func TestFindPathMatchesBFS(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		cols, rows := 3+rng.Intn(8), 3+rng.Intn(8)
		var obstacles []Cell
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				if rng.Float64() < 0.3 {
					obstacles = append(obstacles, Cell{X: x, Y: y})
				}
			}
		}
		grid, err := NewGrid(cols, rows, obstacles, nil)
		require.NoError(t, err)

		start := Cell{X: rng.Intn(cols), Y: rng.Intn(rows)}
		goal := Cell{X: rng.Intn(cols), Y: rng.Intn(rows)}
		if grid.IsBlocked(start) {
			continue
		}

		path := NewPathFinder(grid).FindPath(start, goal)
		want := bfsDistance(grid, start, goal)
		if want < 0 {
			assert.Empty(t, path, "trial %d: expected no path from %v to %v", trial, start, goal)
			continue
		}
		assertValidPath(t, grid, path, start, goal)
		assert.Equal(t, want, len(path)-1, "trial %d: path from %v to %v is not minimal", trial, start, goal)
	}
}

func TestFindPathEdgeCases(t *testing.T) {
	// (4,4) is sealed off by (3,4) and (4,3)
	grid, err := NewGrid(5, 5, []Cell{{X: 3, Y: 4}, {X: 4, Y: 3}, {X: 2, Y: 2}}, nil)
	require.NoError(t, err)
	finder := NewPathFinder(grid)

	t.Run("start equals goal", func(t *testing.T) {
		assert.Equal(t, Path{{X: 1, Y: 1}}, finder.FindPath(Cell{X: 1, Y: 1}, Cell{X: 1, Y: 1}))
	})
	t.Run("blocked goal", func(t *testing.T) {
		assert.Empty(t, finder.FindPath(Cell{X: 0, Y: 0}, Cell{X: 2, Y: 2}))
	})
	t.Run("goal outside grid", func(t *testing.T) {
		assert.Empty(t, finder.FindPath(Cell{X: 0, Y: 0}, Cell{X: 9, Y: 0}))
	})
	t.Run("enclosed goal", func(t *testing.T) {
		assert.Empty(t, finder.FindPath(Cell{X: 0, Y: 0}, Cell{X: 4, Y: 4}))
		assert.Equal(t, -1, finder.Distance(Cell{X: 0, Y: 0}, Cell{X: 4, Y: 4}))
	})
	t.Run("around an obstacle", func(t *testing.T) {
		path := finder.FindPath(Cell{X: 2, Y: 1}, Cell{X: 2, Y: 3})
		assertValidPath(t, grid, path, Cell{X: 2, Y: 1}, Cell{X: 2, Y: 3})
		assert.Len(t, path, 5)
	})
}

func TestFindPathIsDeterministic(t *testing.T) {
	grid := branchGrid(t)
	finder := NewPathFinder(grid)

	first := finder.FindPath(Cell{X: 0, Y: 0}, Cell{X: 6, Y: 5})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, finder.FindPath(Cell{X: 0, Y: 0}, Cell{X: 6, Y: 5}))
	}
}

func TestFindPathOnBranchMap(t *testing.T) {
	grid := branchGrid(t)
	finder := NewPathFinder(grid)

	path := finder.FindPath(Cell{X: 3, Y: 3}, Cell{X: 1, Y: 3})
	assert.Equal(t, Path{{X: 3, Y: 3}, {X: 2, Y: 3}, {X: 1, Y: 3}}, path)

	// Crossing the help desk counter row
	path = finder.FindPath(Cell{X: 3, Y: 3}, Cell{X: 3, Y: 1})
	assertValidPath(t, grid, path, Cell{X: 3, Y: 3}, Cell{X: 3, Y: 1})
	assert.Equal(t, 6, len(path)-1)
}
