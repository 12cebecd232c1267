package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ListQuery filters List results.
type ListQuery struct {
	Source string
	Type   EntryType
	Search string
	Limit  int
	Offset int
}

// Stats summarises catalog contents.
type Stats struct {
	Entries        int64               `json:"entries"`
	Enriched       int64               `json:"enriched"`
	NeverAttempted int64               `json:"never_attempted"`
	Installed      int64               `json:"installed"`
	CurrentVersion int64               `json:"current_version"`
	BySource       map[string]int64    `json:"by_source"`
	ByType         map[EntryType]int64 `json:"by_type"`
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id uint) (*ReferenceEntry, error) {
	var entry ReferenceEntry
	err := s.db.WithContext(ctx).Take(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load entry %d: %w", id, err)
	}
	return &entry, nil
}

// FindByKey returns the entry identified by (source, externalID).
func (s *Store) FindByKey(ctx context.Context, source, externalID string) (*ReferenceEntry, error) {
	var entry ReferenceEntry
	err := s.db.WithContext(ctx).
		Where("source = ? AND external_id = ?", strings.TrimSpace(source), strings.TrimSpace(externalID)).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s/%s: %w", source, externalID, err)
	}
	return &entry, nil
}

// List returns a page of entries ordered by id and the total match count.
func (s *Store) List(ctx context.Context, q ListQuery) ([]ReferenceEntry, int64, error) {
	query := s.db.WithContext(ctx).Model(&ReferenceEntry{})
	if q.Source != "" {
		query = query.Where("source = ?", q.Source)
	}
	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}
	if q.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []ReferenceEntry
	if err := query.Order("id").Limit(limit).Offset(q.Offset).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, total, nil
}

// PendingEnrichment returns entries without fresh metadata whose last attempt
// is older than cooldown, oldest ids first. A cooldown <= 0 selects every entry.
func (s *Store) PendingEnrichment(ctx context.Context, limit int, cooldown time.Duration) ([]ReferenceEntry, error) {
	query := s.db.WithContext(ctx).Order("id")
	if cooldown > 0 {
		cutoff := normalizeTime(s.now().Add(-cooldown))
		query = query.
			Where("last_enriched_date IS NULL OR last_enriched_date < ?", cutoff).
			Where("last_enrichment_attempt IS NULL OR last_enrichment_attempt < ?", cutoff)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var entries []ReferenceEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to select entries pending enrichment: %w", err)
	}
	return entries, nil
}

// History returns the audit trail of one entity in version order.
func (s *Store) History(ctx context.Context, entityType string, id uint) ([]ChangeLog, error) {
	var rows []ChangeLog
	err := s.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, id).
		Order("catalog_version").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history of %s %d: %w", entityType, id, err)
	}
	return rows, nil
}

// ChangesSince returns audit rows with a catalog version greater than version.
func (s *Store) ChangesSince(ctx context.Context, version int64, limit int) ([]ChangeLog, error) {
	if limit <= 0 {
		limit = 1000
	}
	var rows []ChangeLog
	err := s.db.WithContext(ctx).
		Where("catalog_version > ?", version).
		Order("catalog_version").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load changes since %d: %w", version, err)
	}
	return rows, nil
}

// Stats counts entries by state, source and type.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	stats := &Stats{BySource: map[string]int64{}, ByType: map[EntryType]int64{}}

	if err := db.Model(&ReferenceEntry{}).Count(&stats.Entries).Error; err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	if err := db.Model(&ReferenceEntry{}).Where("last_enriched_date IS NOT NULL").Count(&stats.Enriched).Error; err != nil {
		return nil, fmt.Errorf("failed to count enriched entries: %w", err)
	}
	if err := db.Model(&ReferenceEntry{}).Where("last_enrichment_attempt IS NULL").Count(&stats.NeverAttempted).Error; err != nil {
		return nil, fmt.Errorf("failed to count unattempted entries: %w", err)
	}
	if err := db.Model(&InstalledRecord{}).Count(&stats.Installed).Error; err != nil {
		return nil, fmt.Errorf("failed to count installed records: %w", err)
	}

	type bucket struct {
		Name  string
		Total int64
	}
	var sources []bucket
	if err := db.Model(&ReferenceEntry{}).Select("source AS name, COUNT(*) AS total").Group("source").Scan(&sources).Error; err != nil {
		return nil, fmt.Errorf("failed to group entries by source: %w", err)
	}
	for _, b := range sources {
		stats.BySource[b.Name] = b.Total
	}
	var types []bucket
	if err := db.Model(&ReferenceEntry{}).Select("type AS name, COUNT(*) AS total").Group("type").Scan(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to group entries by type: %w", err)
	}
	for _, b := range types {
		stats.ByType[EntryType(b.Name)] = b.Total
	}

	version, err := s.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	stats.CurrentVersion = version
	return stats, nil
}
