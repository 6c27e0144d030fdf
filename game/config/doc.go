// Package config loads bank branch maps from a directory.
//
// Maps are JSON or YAML files (.json, .yaml, .yml). A map is addressed by
// its config ID, the file name without extension, so "branch" resolves to
// branch.json, branch.yaml or branch.yml in that order. Every map is run
// through engine.ParseMapConfig, which fills in default timing and points
// and rejects maps whose stations cannot be reached from the spawn cell.
//
// The default map is branch. When the directory has no valid branch file the
// first valid map is used, and when it has none at all the built-in
// engine.DefaultMapConfig takes its place.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mapConfig, err := manager.LoadConfig("branch")
//	maps, err := manager.ListConfigs()
package config
