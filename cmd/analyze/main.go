// Command analyze prints walking heuristics for bank branch maps: how much of
// the floor the token can reach, the walk from spawn to each station, the
// station-to-station step matrix and the total walk of a perfect run through
// the map's exercises.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/bank-branch-game/game/engine"
	"github.com/zyedidia/generic/mapset"
)

// StationReach is the walk from spawn to the stand cell of one station
type StationReach struct {
	Key       string
	Stand     engine.Cell
	Steps     int // -1 when unreachable
	Duration  time.Duration
	Exercises int
}

// Analysis summarizes one map
type Analysis struct {
	Name          string
	Cols, Rows    int
	OpenCells     int
	ReachableFrom int // open cells reachable from spawn, spawn included
	Stations      []StationReach
	// Matrix[i][j] is the step count between the stand cells of Stations[i] and Stations[j]
	Matrix      [][]int
	RunSteps    int
	RunDuration time.Duration
}

// analyzeMap computes the heuristics for a validated map
func analyzeMap(config *engine.MapConfig) (*Analysis, error) {
	grid, err := engine.NewGridFromConfig(config)
	if err != nil {
		return nil, err
	}
	finder := engine.NewPathFinder(grid)

	a := &Analysis{
		Name:          config.Name,
		Cols:          config.Cols,
		Rows:          config.Rows,
		OpenCells:     config.Cols*config.Rows - grid.ObstacleCount(),
		ReachableFrom: floodSize(grid, config.Spawn),
	}

	targets := make(map[string]int)
	for _, ex := range config.Exercises {
		targets[ex.TargetStation]++
	}

	for _, st := range grid.Stations() {
		if !st.Targetable() {
			continue
		}
		reach := StationReach{Key: st.Key, Steps: -1, Exercises: targets[st.Key]}
		if stand, ok := grid.AdjacentOpenCell(st.Cell(), config.Spawn); ok {
			reach.Stand = stand
			if path := finder.FindPath(config.Spawn, stand); len(path) > 0 {
				reach.Steps = len(path) - 1
				reach.Duration = engine.PathDuration(path, config.Timing)
			}
		}
		a.Stations = append(a.Stations, reach)
	}

	a.Matrix = make([][]int, len(a.Stations))
	for i, from := range a.Stations {
		a.Matrix[i] = make([]int, len(a.Stations))
		for j, to := range a.Stations {
			a.Matrix[i][j] = finder.Distance(from.Stand, to.Stand)
		}
	}

	a.RunSteps, a.RunDuration = perfectRun(config, grid, finder)
	return a, nil
}

// floodSize counts the open cells connected to start
func floodSize(grid *engine.Grid, start engine.Cell) int {
	if grid.IsBlocked(start) {
		return 0
	}
	seen := mapset.New[engine.Cell]()
	seen.Put(start)
	queue := []engine.Cell{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range grid.Neighbors(current) {
			if !seen.Has(n) {
				seen.Put(n)
				queue = append(queue, n)
			}
		}
	}
	return seen.Size()
}

// perfectRun walks every exercise target in order, starting at spawn and
// carrying the position over, the way a flawless player would. Stand cells
// are picked relative to the current position like a station tap does.
func perfectRun(config *engine.MapConfig, grid *engine.Grid, finder *engine.PathFinder) (int, time.Duration) {
	pos := config.Spawn
	steps := 0
	var total time.Duration
	for _, ex := range config.Exercises {
		st, ok := grid.Station(ex.TargetStation)
		if !ok {
			continue
		}
		if engine.IsAdjacent(pos, st.Cell()) {
			continue
		}
		stand, ok := grid.AdjacentOpenCell(st.Cell(), pos)
		if !ok {
			continue
		}
		path := finder.FindPath(pos, stand)
		if len(path) == 0 {
			continue
		}
		steps += len(path) - 1
		total += engine.PathDuration(path, config.Timing)
		pos = stand
	}
	return steps, total
}

func printAnalysis(a *Analysis) {
	fmt.Printf("Name: %s\n", a.Name)
	fmt.Printf("Grid Size: %d x %d\n", a.Cols, a.Rows)
	fmt.Printf("Open Cells: %d (%d reachable from spawn)\n", a.OpenCells, a.ReachableFrom)
	if a.ReachableFrom < a.OpenCells {
		fmt.Printf("⚠️  %d open cells can never be visited\n", a.OpenCells-a.ReachableFrom)
	}

	fmt.Println("\nFrom spawn:")
	for _, st := range a.Stations {
		if st.Steps < 0 {
			fmt.Printf("  ⚠️  %-16s unreachable\n", st.Key)
			continue
		}
		fmt.Printf("  %-16s stand (%d,%d)  %2d steps  %6v  %d exercises\n",
			st.Key, st.Stand.X, st.Stand.Y, st.Steps, st.Duration, st.Exercises)
	}

	if len(a.Stations) > 1 {
		fmt.Println("\nStation to station (steps):")
		keys := make([]string, len(a.Stations))
		for i, st := range a.Stations {
			keys[i] = st.Key
		}
		fmt.Printf("  %-16s %s\n", "", strings.Join(keys, "  "))
		for i, row := range a.Matrix {
			cells := make([]string, len(row))
			for j, d := range row {
				cells[j] = fmt.Sprintf("%*d", len(keys[j]), d)
			}
			fmt.Printf("  %-16s %s\n", keys[i], strings.Join(cells, "  "))
		}
	}

	fmt.Printf("\nPerfect run: %d steps, %v walking\n", a.RunSteps, a.RunDuration)
}

// mapFiles lists the map files of a directory in name order
func mapFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	if rows := cmd.Int("builtin"); rows > 0 {
		fmt.Printf("\n=== Analyzing built-in branch (%d rows) ===\n", rows)
		a, err := analyzeMap(engine.DefaultMapConfig(rows))
		if err != nil {
			return err
		}
		printAnalysis(a)
		return nil
	}

	files := cmd.Args().Slice()
	if len(files) == 0 {
		var err error
		if files, err = mapFiles(cmd.String("dir")); err != nil {
			return err
		}
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		config, err := engine.LoadMapConfig(file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		a, err := analyzeMap(config)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printAnalysis(a)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "print walking heuristics for bank branch maps",
		ArgsUsage: "[file ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "configs",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.IntFlag{
				Name:  "builtin",
				Usage: "analyze the built-in branch map with this many rows instead of files",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
