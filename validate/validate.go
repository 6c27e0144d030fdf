// Command validate checks the map files (*.json, *.yaml, *.yml) of a config
// directory. Each file goes through the same parser the server uses, so a map
// that passes here loads at runtime. For valid maps it also reports:
//   - grid size and obstacle count
//   - the walk from spawn to every targetable station
//   - how many exercises target each station
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/bank-branch-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Valid maps carry informational lines in Info; invalid ones carry the
// parse or validation error in Errors.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

// validateMap loads one map file and describes it
func validateMap(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	config, err := engine.ParseMapConfig(data, engine.FormatForFile(filePath))
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	grid, err := engine.NewGridFromConfig(config)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Grid: %dx%d, %d obstacles", config.Cols, config.Rows, grid.ObstacleCount()),
		fmt.Sprintf("✓ Spawn: (%d,%d)", config.Spawn.X, config.Spawn.Y),
	)
	result.Info = append(result.Info, describeReachability(config, grid)...)
	result.Info = append(result.Info, describeExercises(config, grid)...)
	return result
}

// describeReachability reports the walk from spawn to the stand cell of every
// targetable station
func describeReachability(config *engine.MapConfig, grid *engine.Grid) []string {
	finder := engine.NewPathFinder(grid)
	var lines []string
	for _, st := range grid.Stations() {
		if !st.Targetable() {
			continue
		}
		stand, ok := grid.AdjacentOpenCell(st.Cell(), config.Spawn)
		if !ok {
			lines = append(lines, fmt.Sprintf("⚠ %s: no open cell next to it", st.Key))
			continue
		}
		path := finder.FindPath(config.Spawn, stand)
		if len(path) == 0 {
			// the closest stand cell can be walled off while another side is open
			lines = append(lines, fmt.Sprintf("⚠ %s: nearest stand cell (%d,%d) unreachable", st.Key, stand.X, stand.Y))
			continue
		}
		lines = append(lines, fmt.Sprintf("✓ %s: %d steps, %v from spawn",
			st.Key, len(path)-1, engine.PathDuration(path, config.Timing)))
	}
	return lines
}

// describeExercises counts exercises per target and flags stations no exercise uses
func describeExercises(config *engine.MapConfig, grid *engine.Grid) []string {
	counts := make(map[string]int)
	for _, ex := range config.Exercises {
		counts[ex.TargetStation]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	lines := []string{fmt.Sprintf("✓ Exercises: %d (%s)", len(config.Exercises), strings.Join(parts, ", "))}

	for _, st := range grid.Stations() {
		if st.Targetable() && counts[st.Key] == 0 {
			lines = append(lines, fmt.Sprintf("⚠ %s is never a target", st.Key))
		}
	}
	return lines
}

// findMaps lists the map files of a directory in name order
func findMaps(dir string) ([]string, error) {
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

// report prints every result and returns whether all maps were valid
func report(results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
			continue
		}

		fmt.Println("❌ INVALID")
		allValid = false
		for _, err := range result.Errors {
			fmt.Println("  ❌ " + err)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All maps are valid!")
	} else {
		fmt.Println("❌ Some maps have errors")
	}
	return allValid
}

func run(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		var err error
		files, err = findMaps(cmd.String("dir"))
		if err != nil {
			return fmt.Errorf("finding map files: %w", err)
		}
	}
	if len(files) == 0 {
		return cli.Exit(fmt.Sprintf("no map files in %s", cmd.String("dir")), 1)
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateMap(file))
	}
	if !report(results) {
		return cli.Exit("", 1)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "check bank branch map files",
		ArgsUsage: "[file ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "../configs",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
