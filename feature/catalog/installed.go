package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// InstalledFields describes a detected installation of an entry.
type InstalledFields struct {
	Platform        string
	InstallLocation string
	ExecutablePath  string
	Version         string
	InstallDate     *time.Time
	SizeBytes       int64
}

// UpsertInstalled creates or refreshes the installed record of an entry.
// Installed records are machine-local and leave the catalog version untouched.
func (s *Store) UpsertInstalled(ctx context.Context, entryID uint, fields InstalledFields) (*InstalledRecord, bool, error) {
	var record InstalledRecord
	created := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ReferenceEntry{}).Where("id = ?", entryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		err := tx.Where("reference_entry_id = ?", entryID).Take(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			record = InstalledRecord{ReferenceEntryID: entryID}
		} else if err != nil {
			return err
		}

		record.Platform = fields.Platform
		record.InstallLocation = fields.InstallLocation
		record.ExecutablePath = fields.ExecutablePath
		record.Version = fields.Version
		record.SizeBytes = fields.SizeBytes
		if fields.InstallDate != nil {
			record.InstallDate = Ptr(normalizeTime(*fields.InstallDate))
		}
		record.LastDetected = s.now()
		return tx.Save(&record).Error
	})
	if errors.Is(err, ErrNotFound) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert installed record for entry %d: %w", entryID, err)
	}
	return &record, created, nil
}

// DeleteInstalled removes one installed record.
func (s *Store) DeleteInstalled(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&InstalledRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete installed record %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInstalled returns installed records with their entries, optionally
// restricted to one platform.
func (s *Store) ListInstalled(ctx context.Context, platform string) ([]InstalledRecord, error) {
	query := s.db.WithContext(ctx).Preload("ReferenceEntry").Order("id")
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}
	var records []InstalledRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list installed records: %w", err)
	}
	return records, nil
}
