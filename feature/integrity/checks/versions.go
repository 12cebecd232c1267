package checks

import (
	"context"
	"fmt"

	"catalog-manager/feature/catalog"

	"gorm.io/gorm"
)

// VersionReport describes the consistency of the version counter and audit trail.
type VersionReport struct {
	Matched           bool           `json:"matched"`
	CurrentVersion    int64          `json:"current_version"`
	MaxEntryVersion   int64          `json:"max_entry_version"`
	MaxChangeVersion  int64          `json:"max_change_version"`
	CounterBehind     bool           `json:"counter_behind"`
	MissingAudit      []EntryVersion `json:"missing_audit"`
	DuplicateKeys     []string       `json:"duplicate_keys"`
	DuplicateVersions []int64        `json:"duplicate_versions"`
}

// EntryVersion identifies an entry at the version it currently carries.
type EntryVersion struct {
	ID      uint  `json:"id"`
	Version int64 `json:"version"`
}

// CheckVersions verifies that the counter is ahead of every stamped version,
// that every entry's current version has its audit row, and that neither
// keys nor versions are duplicated.
func CheckVersions(ctx context.Context, db *gorm.DB) (*VersionReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	db = db.WithContext(ctx)

	report := &VersionReport{
		MissingAudit:      []EntryVersion{},
		DuplicateKeys:     []string{},
		DuplicateVersions: []int64{},
	}

	var counter catalog.CatalogVersion
	if err := db.Take(&counter, 1).Error; err != nil {
		return nil, fmt.Errorf("failed to read version counter: %w", err)
	}
	report.CurrentVersion = counter.CurrentVersion

	if err := db.Model(&catalog.ReferenceEntry{}).Select("COALESCE(MAX(version), 0)").Scan(&report.MaxEntryVersion).Error; err != nil {
		return nil, fmt.Errorf("failed to read max entry version: %w", err)
	}
	if err := db.Model(&catalog.ChangeLog{}).Select("COALESCE(MAX(catalog_version), 0)").Scan(&report.MaxChangeVersion).Error; err != nil {
		return nil, fmt.Errorf("failed to read max change version: %w", err)
	}
	report.CounterBehind = report.CurrentVersion < report.MaxEntryVersion || report.CurrentVersion < report.MaxChangeVersion

	err := db.Table("reference_entries AS e").
		Select("e.id AS id, e.version AS version").
		Joins("LEFT JOIN change_log AS c ON c.entity_type = ? AND c.entity_id = e.id AND c.catalog_version = e.version", catalog.EntityReferenceEntry).
		Where("c.id IS NULL").
		Order("e.id").
		Scan(&report.MissingAudit).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check audit rows: %w", err)
	}

	var dupKeys []struct {
		Source     string
		ExternalID string
	}
	err = db.Model(&catalog.ReferenceEntry{}).
		Select("source, external_id").
		Group("source, external_id").
		Having("COUNT(*) > 1").
		Scan(&dupKeys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate keys: %w", err)
	}
	for _, k := range dupKeys {
		report.DuplicateKeys = append(report.DuplicateKeys, k.Source+"/"+k.ExternalID)
	}

	err = db.Model(&catalog.ChangeLog{}).
		Select("catalog_version").
		Group("catalog_version").
		Having("COUNT(*) > 1").
		Order("catalog_version").
		Scan(&report.DuplicateVersions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate versions: %w", err)
	}

	report.Matched = !report.CounterBehind &&
		len(report.MissingAudit) == 0 &&
		len(report.DuplicateKeys) == 0 &&
		len(report.DuplicateVersions) == 0

	return report, nil
}
