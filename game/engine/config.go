package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MinBranchRows is the smallest row count the default branch map fits in
const MinBranchRows = 7

// ValidateMapConfig validates a map configuration for correctness and playability
func ValidateMapConfig(config *MapConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidMap)
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	// Validate grid size
	if config.Cols < MinGridSize || config.Cols > MaxGridSize {
		return fmt.Errorf("config validation: cols must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Cols)
	}
	if config.Rows < MinGridSize || config.Rows > MaxGridSize {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Rows)
	}

	// Validate layout
	if len(config.Layout) != config.Rows {
		return fmt.Errorf("config validation: layout must have %d rows, got %d", config.Rows, len(config.Layout))
	}
	for i, row := range config.Layout {
		if len(row) != config.Cols {
			return fmt.Errorf("config validation: row %d must have %d characters, got %d", i+1, config.Cols, len(row))
		}
		for j, ch := range row {
			if ch != OpenChar && ch != ObstacleChar {
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", ch, i+1, j+1)
			}
		}
	}

	// Validate stations
	for _, st := range config.Stations {
		switch st.Type {
		case Entrance, ATM, HelpDesk, PaymentStation:
		default:
			return fmt.Errorf("config validation: station %q has unknown type %q", st.Key, st.Type)
		}
	}
	grid, err := NewGridFromConfig(config)
	if err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	// Validate spawn
	if grid.IsBlocked(config.Spawn) {
		return fmt.Errorf("config validation: spawn (%d,%d) is blocked or outside the grid", config.Spawn.X, config.Spawn.Y)
	}
	if st, ok := grid.StationAt(config.Spawn); ok && st.Type != Entrance {
		return fmt.Errorf("config validation: spawn (%d,%d) is on station %q", config.Spawn.X, config.Spawn.Y, st.Key)
	}

	// Validate timing
	if config.Timing.HorizontalStepMS < 0 || config.Timing.VerticalStepMS < 0 || config.Timing.RejectionWindowMS < 0 {
		return fmt.Errorf("config validation: timing values must not be negative")
	}
	if config.PointsPerExercise < 0 {
		return fmt.Errorf("config validation: points_per_exercise must not be negative, got %d", config.PointsPerExercise)
	}

	// Validate exercises
	if len(config.Exercises) == 0 {
		return fmt.Errorf("config validation: at least one exercise is required")
	}
	seen := make(map[string]bool, len(config.Exercises))
	for i, ex := range config.Exercises {
		if ex.ID == "" {
			return fmt.Errorf("config validation: exercise %d has no id", i+1)
		}
		if seen[ex.ID] {
			return fmt.Errorf("config validation: duplicate exercise id %q", ex.ID)
		}
		seen[ex.ID] = true

		st, ok := grid.Station(ex.TargetStation)
		if !ok {
			return fmt.Errorf("config validation: exercise %q: %w %q", ex.ID, ErrUnknownStation, ex.TargetStation)
		}
		if !st.Targetable() {
			return fmt.Errorf("config validation: exercise %q targets %s station %q", ex.ID, st.Type, st.Key)
		}
		if len(ex.Dialogue.Messages) == 0 {
			return fmt.Errorf("config validation: exercise %q needs at least one dialogue message", ex.ID)
		}
		if ex.Points < 0 {
			return fmt.Errorf("config validation: exercise %q has negative points", ex.ID)
		}
	}

	// Validate winnability - every targetable station must be reachable from spawn
	finder := NewPathFinder(grid)
	for _, st := range grid.Stations() {
		if !st.Targetable() {
			continue
		}
		reachable := false
		for _, n := range grid.Neighbors(st.Cell()) {
			if finder.Distance(config.Spawn, n) >= 0 {
				reachable = true
				break
			}
		}
		if !reachable {
			return fmt.Errorf("config validation: station %q at (%d,%d) is unreachable from spawn", st.Key, st.X, st.Y)
		}
	}

	return nil
}

// ApplyDefaults fills unset timing and scoring fields with the branch defaults.
// A map without a timing block gets the full default timing; a zero
// rejection window is kept when step timings are given.
func ApplyDefaults(config *MapConfig) {
	if config.Timing == (Timing{}) {
		config.Timing = DefaultTiming()
	}
	if config.Timing.HorizontalStepMS == 0 {
		config.Timing.HorizontalStepMS = DefaultHorizontalStepMS
	}
	if config.Timing.VerticalStepMS == 0 {
		config.Timing.VerticalStepMS = DefaultVerticalStepMS
	}
	if config.PointsPerExercise == 0 {
		config.PointsPerExercise = DefaultPointsPerExercise
	}
}

// ParseMapConfig decodes a map configuration. format is "json" or "yaml".
func ParseMapConfig(data []byte, format string) (*MapConfig, error) {
	var config MapConfig
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	ApplyDefaults(&config)
	if err := ValidateMapConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// FormatForFile returns the config format implied by a file extension
func FormatForFile(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// LoadMapConfig loads a map configuration from a JSON or YAML file
func LoadMapConfig(filename string) (*MapConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := ParseMapConfig(data, FormatForFile(configPath))
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filename, err)
	}
	return config, nil
}

// DefaultMapConfig returns the bank branch map sized for the given row count.
// Station rows are anchored to the bottom of the map, so taller viewports get
// more floor between the counters and the entrance.
func DefaultMapConfig(rows int) *MapConfig {
	if rows < MinBranchRows {
		rows = MinBranchRows
	}
	if rows > MaxGridSize {
		rows = MaxGridSize
	}
	cols := DefaultCols

	stations := []Station{
		{Key: "entrance", Type: Entrance, X: 3, Y: rows - 1},
		{Key: "atm", Type: ATM, X: 1, Y: rows - 3},
		{Key: "helpDesk", Type: HelpDesk, X: 3, Y: 2},
		{Key: "paymentStation", Type: PaymentStation, X: 5, Y: 6},
	}

	// Counters span three cells centered on their station; the ATM blocks its own cell
	blocked := map[Cell]bool{
		{X: 2, Y: 2}: true, {X: 3, Y: 2}: true, {X: 4, Y: 2}: true,
		{X: 4, Y: 6}: true, {X: 5, Y: 6}: true, {X: 6, Y: 6}: true,
		{X: 1, Y: rows - 3}: true,
	}

	layout := make([]string, rows)
	for y := 0; y < rows; y++ {
		var b strings.Builder
		for x := 0; x < cols; x++ {
			if blocked[Cell{X: x, Y: y}] {
				b.WriteRune(ObstacleChar)
			} else {
				b.WriteRune(OpenChar)
			}
		}
		layout[y] = b.String()
	}

	return &MapConfig{
		Name:              "branch",
		Description:       "Bank branch: walk to the station that solves each customer request",
		Cols:              cols,
		Rows:              rows,
		Layout:            layout,
		Stations:          stations,
		Spawn:             Cell{X: 3, Y: rows - 2},
		Timing:            DefaultTiming(),
		PointsPerExercise: DefaultPointsPerExercise,
		Exercises:         DefaultExercises(),
	}
}
