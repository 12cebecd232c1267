package detection

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrShortcutUnsupported is returned when no launch target is known for a game.
	ErrShortcutUnsupported = errors.New("shortcut creation not supported")
	// ErrUnknownGame is returned when a detector does not report the requested game.
	ErrUnknownGame = errors.New("game not detected")
)

// InstalledGameRecord is the normalized output of a platform scanner.
type InstalledGameRecord struct {
	GameID         string    `json:"game_id"`
	Name           string    `json:"name"`
	InstallDir     string    `json:"install_dir"`
	ExecutablePath string    `json:"executable_path"`
	IconPath       string    `json:"icon_path"`
	SizeOnDisk     int64     `json:"size_on_disk"`
	LastUpdated    time.Time `json:"last_updated"`
	Platform       string    `json:"platform"`
}

// Detector scans one platform for locally installed games.
type Detector interface {
	// PlatformName is also used as the catalog source of detected entries.
	PlatformName() string

	// InstalledGames rescans on every call.
	InstalledGames(ctx context.Context) ([]InstalledGameRecord, error)

	IsInstalled() bool

	// InstallPath returns "" when the platform client is not installed.
	InstallPath() string

	CreateGameShortcut(id, name, outputDir string) (string, error)
}

var placeholderNames = map[string]struct{}{
	"unknown game": {},
	"unknown":      {},
	"n/a":          {},
	"untitled":     {},
}

// IsPlaceholderName reports whether name is empty or a scanner placeholder.
func IsPlaceholderName(name string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return true
	}
	_, ok := placeholderNames[trimmed]
	return ok
}

// FilterValid drops records without an id or with a placeholder name, and
// keeps the first record of each id. The second return value counts dropped records.
func FilterValid(records []InstalledGameRecord) ([]InstalledGameRecord, int) {
	valid := make([]InstalledGameRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	dropped := 0

	for _, record := range records {
		id := strings.TrimSpace(record.GameID)
		if id == "" || IsPlaceholderName(record.Name) {
			dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			dropped++
			continue
		}
		seen[id] = struct{}{}

		record.GameID = id
		record.Name = strings.TrimSpace(record.Name)
		valid = append(valid, record)
	}

	return valid, dropped
}
