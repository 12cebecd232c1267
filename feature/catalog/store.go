package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	counterRowID        = 1
	initialVersion      = 1
	defaultWriteRetries = 3
)

// Store is the durable, deduplicated and versioned catalog.
// Every mutation bumps the global version counter and appends one change log
// row inside the same transaction.
type Store struct {
	db      *gorm.DB
	logger  *zap.Logger
	mu      sync.Mutex
	now     func() time.Time
	retries int
}

// NewStore creates a store over an already migrated database.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:      db,
		logger:  logger,
		now:     func() time.Time { return normalizeTime(time.Now()) },
		retries: defaultWriteRetries,
	}
}

// Migrate creates the catalog tables and seeds the version counter.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	seed := CatalogVersion{ID: counterRowID, CurrentVersion: initialVersion, UpdatedAt: normalizeTime(time.Now())}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return fmt.Errorf("failed to seed version counter: %w", err)
	}
	return nil
}

type writeOptions struct {
	changedBy string
}

// WriteOption customises a catalog write.
type WriteOption func(*writeOptions)

// ChangedBy records the actor responsible for the mutation.
func ChangedBy(actor string) WriteOption {
	return func(o *writeOptions) { o.changedBy = actor }
}

func collectOptions(opts []WriteOption) writeOptions {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Upsert creates the entry keyed by (source, externalID) or applies the
// provided fields to it. It reports whether the entry was created.
// An update whose diff is empty does not touch the database.
func (s *Store) Upsert(ctx context.Context, source, externalID string, fields EntryFields, opts ...WriteOption) (*ReferenceEntry, bool, error) {
	source = strings.TrimSpace(source)
	externalID = strings.TrimSpace(externalID)
	if source == "" || externalID == "" {
		return nil, false, ErrInvalidKey
	}
	wo := collectOptions(opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		entry, created, err := s.upsertOnce(ctx, source, externalID, fields, wo)
		if err == nil {
			return entry, created, nil
		}
		if !isDuplicateKey(err) {
			if IsValidation(err) {
				return nil, false, err
			}
			return nil, false, fmt.Errorf("failed to upsert %s/%s: %w", source, externalID, err)
		}
		lastErr = err
		s.logger.Debug("Insert lost a duplicate key race, retrying as update",
			zap.String("source", source),
			zap.String("external_id", externalID),
			zap.Int("attempt", attempt+1))
	}
	return nil, false, fmt.Errorf("failed to upsert %s/%s after %d attempts: %w", source, externalID, s.retries+1, lastErr)
}

func (s *Store) upsertOnce(ctx context.Context, source, externalID string, fields EntryFields, wo writeOptions) (*ReferenceEntry, bool, error) {
	var result ReferenceEntry
	created := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ReferenceEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("source = ? AND external_id = ?", source, externalID).
			Take(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			if fields.Name == nil || strings.TrimSpace(*fields.Name) == "" {
				return ErrNameRequired
			}
			now := s.now()
			version, err := nextVersion(tx, now)
			if err != nil {
				return err
			}
			entry := ReferenceEntry{
				Source:     source,
				ExternalID: externalID,
				Type:       TypeUnknown,
				Metadata:   datatypes.NewJSONType(Metadata{}),
				CreatedAt:  now,
				UpdatedAt:  now,
				Version:    version,
			}
			diff := fields.Diff(&entry)
			fields.ApplyTo(&entry)
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			diff["source"] = FieldChange{New: source}
			diff["external_id"] = FieldChange{New: externalID}
			for col, change := range diff {
				diff[col] = FieldChange{New: change.New}
			}
			if err := s.RecordChange(tx, EntityReferenceEntry, entry.ID, ActionCreated, diff, version, wo.changedBy); err != nil {
				return err
			}
			result = entry
			created = true
			return nil
		}
		if err != nil {
			return err
		}

		diff := fields.Diff(&existing)
		if len(diff) == 0 {
			result = existing
			return nil
		}
		now := s.now()
		version, err := nextVersion(tx, now)
		if err != nil {
			return err
		}
		fields.ApplyTo(&existing)
		existing.UpdatedAt = now
		existing.Version = version
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		if err := s.RecordChange(tx, EntityReferenceEntry, existing.ID, ActionUpdated, diff, version, wo.changedBy); err != nil {
			return err
		}
		result = existing
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

// NextVersion atomically increments the global counter and returns the new value.
// Callers outside Upsert and Delete consume a version without a paired mutation.
func (s *Store) NextVersion(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var version int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := nextVersion(tx, s.now())
		version = v
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance catalog version: %w", err)
	}
	return version, nil
}

// CurrentVersion returns the counter value without changing it.
func (s *Store) CurrentVersion(ctx context.Context) (int64, error) {
	var counter CatalogVersion
	err := s.db.WithContext(ctx).Take(&counter, counterRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrCounterMissing
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog version: %w", err)
	}
	return counter.CurrentVersion, nil
}

func nextVersion(tx *gorm.DB, now time.Time) (int64, error) {
	res := tx.Model(&CatalogVersion{}).
		Where("id = ?", counterRowID).
		Updates(map[string]any{
			"current_version": gorm.Expr("current_version + ?", 1),
			"updated_at":      now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrCounterMissing
	}
	var counter CatalogVersion
	if err := tx.Take(&counter, counterRowID).Error; err != nil {
		return 0, err
	}
	return counter.CurrentVersion, nil
}

// RecordChange appends an audit row using tx, the transaction of the mutation it describes.
func (s *Store) RecordChange(tx *gorm.DB, entityType string, entityID uint, action ChangeAction, diff Diff, version int64, changedBy string) error {
	if diff == nil {
		diff = Diff{}
	}
	row := ChangeLog{
		EntityType:     entityType,
		EntityID:       entityID,
		Action:         action,
		ChangedAt:      s.now(),
		Changes:        datatypes.NewJSONType(diff),
		CatalogVersion: version,
	}
	if changedBy != "" {
		row.ChangedBy = Ptr(changedBy)
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record %s change for %s %d: %w", action, entityType, entityID, err)
	}
	return nil
}

// Delete removes an entry and its installed records, bumping the version.
func (s *Store) Delete(ctx context.Context, id uint, opts ...WriteOption) error {
	wo := collectOptions(opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry ReferenceEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&entry, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load entry %d: %w", id, err)
		}
		version, err := nextVersion(tx, s.now())
		if err != nil {
			return fmt.Errorf("failed to advance catalog version: %w", err)
		}
		if err := tx.Where("reference_entry_id = ?", id).Delete(&InstalledRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete installed records of entry %d: %w", id, err)
		}
		if err := tx.Delete(&ReferenceEntry{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete entry %d: %w", id, err)
		}
		diff := Diff{
			"source":      {Old: entry.Source},
			"external_id": {Old: entry.ExternalID},
			"name":        {Old: entry.Name},
		}
		return s.RecordChange(tx, EntityReferenceEntry, entry.ID, ActionDeleted, diff, version, wo.changedBy)
	})
}
