package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"viewportd/internal/common/fsutil"
	"viewportd/pkg/types"
)

// LoadDir scans a directory for series manifest files (*.json, *.yaml, *.yml)
// and builds a registry from their contents. A manifest describes one series;
// files that fail to parse or carry no id are skipped.
func LoadDir(dir string) ([]types.Series, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var series []types.Series
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		s, err := loadManifest(filepath.Join(abs, name))
		if err != nil || s.ID == "" {
			continue
		}
		series = append(series, s)
	}
	return series, nil
}

// loadManifest parses a single manifest file based on its extension.
func loadManifest(path string) (types.Series, error) {
	var s types.Series
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(b, &s)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &s)
	default:
		return s, fmt.Errorf("unsupported manifest extension: %s", ext)
	}
	return s, err
}

// Find returns the series with the given id from reg.
func Find(reg []types.Series, id string) (types.Series, bool) {
	for _, s := range reg {
		if s.ID == id {
			return s, true
		}
	}
	return types.Series{}, false
}
