package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultMapConfigIsValid(t *testing.T) {
	for _, rows := range []int{1, MinBranchRows, 8, 12, 20, MaxGridSize + 5} {
		config := DefaultMapConfig(rows)
		if err := ValidateMapConfig(config); err != nil {
			t.Errorf("rows=%d: %v", rows, err)
		}
		if config.Rows < MinBranchRows || config.Rows > MaxGridSize {
			t.Errorf("rows=%d: expected rows to be clamped, got %d", rows, config.Rows)
		}
	}
}

func TestDefaultMapConfigStations(t *testing.T) {
	config := DefaultMapConfig(10)
	want := map[string]Cell{
		"entrance":       {X: 3, Y: 9},
		"atm":            {X: 1, Y: 7},
		"helpDesk":       {X: 3, Y: 2},
		"paymentStation": {X: 5, Y: 6},
	}
	for _, st := range config.Stations {
		if want[st.Key] != st.Cell() {
			t.Errorf("Station %s: expected %v, got %v", st.Key, want[st.Key], st.Cell())
		}
	}
	if config.Spawn != (Cell{X: 3, Y: 8}) {
		t.Errorf("Expected spawn one row above the entrance, got %v", config.Spawn)
	}
	if config.Layout[7] != ".#....." {
		t.Errorf("Expected the ATM cell to be blocked, got %q", config.Layout[7])
	}
}

func TestValidateMapConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *MapConfig)
		wantErr string
	}{
		{"valid", func(c *MapConfig) {}, ""},
		{"missing name", func(c *MapConfig) { c.Name = "" }, "name is required"},
		{"too few cols", func(c *MapConfig) { c.Cols = 2 }, "cols must be between"},
		{"layout row count", func(c *MapConfig) { c.Layout = c.Layout[1:] }, "layout must have"},
		{"layout row width", func(c *MapConfig) { c.Layout[0] = "..." }, "must have 7 characters"},
		{"bad layout char", func(c *MapConfig) { c.Layout[0] = "..X...." }, "invalid character 'X'"},
		{"unknown station type", func(c *MapConfig) { c.Stations[1].Type = "vault" }, "unknown type"},
		{"spawn on obstacle", func(c *MapConfig) { c.Spawn = Cell{X: 3, Y: 2} }, "spawn (3,2) is blocked"},
		{"negative timing", func(c *MapConfig) { c.Timing.RejectionWindowMS = -1 }, "must not be negative"},
		{"no exercises", func(c *MapConfig) { c.Exercises = nil }, "at least one exercise"},
		{"duplicate exercise", func(c *MapConfig) { c.Exercises[1].ID = c.Exercises[0].ID }, "duplicate exercise id"},
		{"unknown target", func(c *MapConfig) { c.Exercises[0].TargetStation = "vault" }, "unknown station"},
		{"entrance target", func(c *MapConfig) { c.Exercises[0].TargetStation = "entrance" }, "targets entrance station"},
		{"empty dialogue", func(c *MapConfig) { c.Exercises[0].Dialogue.Messages = nil }, "dialogue message"},
		{"walled in station", func(c *MapConfig) { c.Layout[5] = ".....#." }, "no open adjacent cell"},
		{"unreachable station", func(c *MapConfig) {
			// Seal the top two rows off from the rest of the floor
			c.Layout[2] = "#######"
			c.Stations[2].Y = 1
			c.Layout[1] = "...#..."
		}, "unreachable from spawn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultMapConfig(MinBranchRows)
			tt.mutate(config)
			err := ValidateMapConfig(config)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

const yamlMap = `
name: tiny
description: three by four
cols: 3
rows: 4
layout:
  - "..."
  - ".#."
  - "..."
  - "..."
stations:
  - {key: desk, type: helpDesk, x: 1, y: 1}
  - {key: door, type: entrance, x: 1, y: 3}
spawn: {x: 0, y: 3}
exercises:
  - id: only
    target_station: desk
    dialogue:
      speaker: Clerk
      messages: ["Hello"]
    feedback:
      correct: right
      incorrect: wrong
`

func TestParseMapConfigYAMLAppliesDefaults(t *testing.T) {
	config, err := ParseMapConfig([]byte(yamlMap), "yaml")
	if err != nil {
		t.Fatalf("ParseMapConfig failed: %v", err)
	}
	if config.Timing != DefaultTiming() {
		t.Errorf("Expected default timing, got %+v", config.Timing)
	}
	if config.PointsPerExercise != DefaultPointsPerExercise {
		t.Errorf("Expected default points, got %d", config.PointsPerExercise)
	}
	if config.Exercises[0].TargetStation != "desk" || config.Exercises[0].Feedback.Correct != "right" {
		t.Errorf("Unexpected exercise %+v", config.Exercises[0])
	}
}

func TestParseMapConfigErrors(t *testing.T) {
	if _, err := ParseMapConfig([]byte("{"), "json"); err == nil {
		t.Error("Expected a JSON syntax error")
	}
	if _, err := ParseMapConfig([]byte("name: x"), "toml"); err == nil {
		t.Error("Expected an unsupported format error")
	}
	if _, err := ParseMapConfig([]byte(`{"name": "x"}`), "json"); err == nil {
		t.Error("Expected a validation error")
	}
}

func TestLoadMapConfigHonorsConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tiny.yml"), []byte(yamlMap), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadMapConfig("configs/tiny.yml")
	if err != nil {
		t.Fatalf("LoadMapConfig failed: %v", err)
	}
	if config.Name != "tiny" {
		t.Errorf("Expected tiny map, got %q", config.Name)
	}

	if _, err := LoadMapConfig("configs/missing.json"); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestFormatForFile(t *testing.T) {
	tests := map[string]string{
		"branch.json": "json",
		"branch.yaml": "yaml",
		"BRANCH.YML":  "yaml",
		"branch":      "json",
	}
	for name, want := range tests {
		if got := FormatForFile(name); got != want {
			t.Errorf("FormatForFile(%q) = %q, want %q", name, got, want)
		}
	}
}
