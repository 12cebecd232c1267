package detection

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ManifestDetector reads the records written by an external platform scanner
// from a JSON file. The file is read again on every call.
type ManifestDetector struct {
	platform    string
	path        string
	installPath string
}

// NewManifestDetector creates a detector for platform backed by the JSON file at path.
func NewManifestDetector(platform, path, installPath string) *ManifestDetector {
	return &ManifestDetector{platform: platform, path: path, installPath: installPath}
}

func (m *ManifestDetector) PlatformName() string { return m.platform }

func (m *ManifestDetector) InstallPath() string { return m.installPath }

// IsInstalled reports whether the manifest file exists.
func (m *ManifestDetector) IsInstalled() bool {
	info, err := os.Stat(m.path)
	return err == nil && !info.IsDir()
}

// InstalledGames decodes the manifest. Records without a platform inherit the detector's.
func (m *ManifestDetector) InstalledGames(ctx context.Context) ([]InstalledGameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", m.path, err)
	}

	var records []InstalledGameRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", m.path, err)
	}

	for i := range records {
		if records[i].Platform == "" {
			records[i].Platform = m.platform
		}
	}
	return records, nil
}

// CreateGameShortcut writes an internet shortcut pointing at the game's
// executable and returns its path.
func (m *ManifestDetector) CreateGameShortcut(id, name, outputDir string) (string, error) {
	records, err := m.InstalledGames(context.Background())
	if err != nil {
		return "", err
	}

	for _, record := range records {
		if record.GameID != id {
			continue
		}
		if record.ExecutablePath == "" {
			return "", ErrShortcutUnsupported
		}
		if name == "" {
			name = record.Name
		}
		path := filepath.Join(outputDir, shortcutFileName(name)+".url")
		body := "[InternetShortcut]\r\nURL=file:///" + filepath.ToSlash(record.ExecutablePath) + "\r\n"
		if record.IconPath != "" {
			body += "IconFile=" + record.IconPath + "\r\nIconIndex=0\r\n"
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return "", fmt.Errorf("failed to write shortcut: %w", err)
		}
		return path, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownGame, id)
}

func shortcutFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) || r < 32 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
}
