package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/bank-branch-game/game/engine"
	"github.com/wricardo/bank-branch-game/game/service"
)

// Shared with the service layer so callers can match them with errors.Is
var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultConfigName is the map used when a session names none
const DefaultConfigName = "branch"

// extensions are tried in order when a name has none
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles map configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.MapConfig
	configs       map[string]*engine.MapConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.MapConfig),
	}
	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a map by ID. The ID is a file name in the config
// directory with or without its .json, .yaml or .yml extension.
func (m *Manager) LoadConfig(name string) (*engine.MapConfig, error) {
	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	configPath, err := m.resolvePath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.ParseMapConfig(data, engine.FormatForFile(configPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(configPath), err)
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all valid maps in the config directory
func (m *Manager) ListConfigs() ([]*service.MapInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	configs := []*service.MapInfo{}
	seen := map[string]bool{}

	for _, entry := range entries {
		if entry.IsDir() || !hasConfigExtension(entry.Name()) {
			continue
		}
		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[id] = true

		stations := make([]string, 0, len(config.Stations))
		for _, st := range config.Stations {
			stations = append(stations, st.Key)
		}

		configs = append(configs, &service.MapInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Cols:        config.Cols,
			Rows:        config.Rows,
			Stations:    stations,
			Exercises:   len(config.Exercises),
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.MapConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached maps so the next load reads them from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.MapConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// SaveConfig validates a map and writes it to disk. Names ending in .yaml or
// .yml are written as YAML, everything else as indented JSON.
func (m *Manager) SaveConfig(name string, config *engine.MapConfig) error {
	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: invalid config name %q", ErrInvalidConfig, name)
	}

	engine.ApplyDefaults(config)
	if err := engine.ValidateMapConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	if !hasConfigExtension(filename) {
		filename = name + ".json"
	}
	configPath := filepath.Join(m.configDir, filename)

	var data []byte
	var err error
	if engine.FormatForFile(filename) == "yaml" {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()
	return nil
}

// resolvePath finds the file behind a map name; callers hold m.mu
func (m *Manager) resolvePath(name string) (string, error) {
	candidates := []string{name}
	if !hasConfigExtension(name) {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, candidate := range candidates {
		path := filepath.Join(m.configDir, candidate)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat config file: %w", err)
		}
	}
	return "", fmt.Errorf("%w: %q", ErrConfigNotFound, name)
}

// loadDefaultConfig picks branch, then the first valid map on disk, then the
// built-in branch map
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr == nil && len(configs) > 0 {
			config, err = m.LoadConfig(configs[0].Filename)
		}
	}
	if err != nil || config == nil {
		config = engine.DefaultMapConfig(engine.MinBranchRows)
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

func configID(name string) string {
	if hasConfigExtension(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

func hasConfigExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
