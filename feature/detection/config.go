package detection

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config locates the manifests written by platform scanners.
type Config struct {
	// ManifestDir holds one <Platform>.json file per scanned platform.
	ManifestDir string `mapstructure:"manifest_dir" default:"detectors"`
	// KeepStale keeps installed records of games that are no longer detected.
	KeepStale bool `mapstructure:"keep_stale" default:"false"`
}

// LoadRegistry builds a registry with one ManifestDetector per manifest file.
// A missing directory yields an empty registry.
func LoadRegistry(cfg Config) (*Registry, error) {
	if cfg.ManifestDir == "" {
		return NewRegistry(), nil
	}

	entries, err := os.ReadDir(cfg.ManifestDir)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest dir: %w", err)
	}

	var detectors []Detector
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		platform := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		detectors = append(detectors, NewManifestDetector(platform, filepath.Join(cfg.ManifestDir, entry.Name()), ""))
	}
	return NewRegistry(detectors...), nil
}
