package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by defaults in main.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	SeriesDir string `json:"series_dir" yaml:"series_dir" toml:"series_dir"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`

	// Item fetching. FetchBaseURL empty selects the simulated fetcher.
	FetchBaseURL string `json:"fetch_base_url" yaml:"fetch_base_url" toml:"fetch_base_url"`

	// Viewport pool.
	PoolMinSize        int     `json:"pool_min_size" yaml:"pool_min_size" toml:"pool_min_size"`
	PoolMaxSize        int     `json:"pool_max_size" yaml:"pool_max_size" toml:"pool_max_size"`
	PoolMaxIdleSeconds int     `json:"pool_max_idle_seconds" yaml:"pool_max_idle_seconds" toml:"pool_max_idle_seconds"`
	PoolGCSeconds      int     `json:"pool_gc_seconds" yaml:"pool_gc_seconds" toml:"pool_gc_seconds"`
	MemoryThreshold    float64 `json:"memory_threshold" yaml:"memory_threshold" toml:"memory_threshold"`

	// Lazy activation layer.
	MaxActiveViewports int    `json:"max_active_viewports" yaml:"max_active_viewports" toml:"max_active_viewports"`
	InactivitySeconds  int    `json:"inactivity_seconds" yaml:"inactivity_seconds" toml:"inactivity_seconds"`
	AdjacencyPreload   bool   `json:"adjacency_preload" yaml:"adjacency_preload" toml:"adjacency_preload"`
	AccessHistoryPath  string `json:"access_history_path" yaml:"access_history_path" toml:"access_history_path"`

	// Progressive scheduler.
	MaxConcurrentChunks int `json:"max_concurrent_chunks" yaml:"max_concurrent_chunks" toml:"max_concurrent_chunks"`
	BaseChunkSize       int `json:"base_chunk_size" yaml:"base_chunk_size" toml:"base_chunk_size"`
	ChunkTimeoutSeconds int `json:"chunk_timeout_seconds" yaml:"chunk_timeout_seconds" toml:"chunk_timeout_seconds"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
