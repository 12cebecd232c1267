package catalog

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// EntryType classifies a reference entry.
type EntryType string

const (
	TypeUnknown     EntryType = "Unknown"
	TypeGame        EntryType = "Game"
	TypeApplication EntryType = "Application"
	TypeTool        EntryType = "Tool"
	TypeUtility     EntryType = "Utility"
)

// ParseEntryType maps a case-insensitive name to an EntryType.
// Unrecognised values map to TypeUnknown.
func ParseEntryType(s string) EntryType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "game":
		return TypeGame
	case "application", "app":
		return TypeApplication
	case "tool":
		return TypeTool
	case "utility":
		return TypeUtility
	default:
		return TypeUnknown
	}
}

// Metadata is the structured extra information attached to an entry.
// It is persisted as a JSON document in the metadata_json column.
type Metadata struct {
	Website     string            `json:"website,omitempty"`
	Rating      *float64          `json:"rating,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Platforms   []string          `json:"platforms,omitempty"`
	ProviderRef string            `json:"provider_ref,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// ReferenceEntry is one deduplicated catalog item, keyed by (Source, ExternalID).
type ReferenceEntry struct {
	ID                    uint                         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name                  string                       `gorm:"column:name;type:varchar(255);not null" json:"name"`
	ExternalID            string                       `gorm:"column:external_id;type:varchar(191);not null;uniqueIndex:idx_entry_source_external,priority:2" json:"external_id"`
	Source                string                       `gorm:"column:source;type:varchar(64);not null;uniqueIndex:idx_entry_source_external,priority:1" json:"source"`
	Publisher             string                       `gorm:"column:publisher;type:varchar(255)" json:"publisher"`
	Category              string                       `gorm:"column:category;type:varchar(128)" json:"category"`
	Type                  EntryType                    `gorm:"column:type;type:varchar(32);not null;default:Unknown" json:"type"`
	Description           string                       `gorm:"column:description;type:text" json:"description"`
	Genres                string                       `gorm:"column:genres;type:varchar(512)" json:"genres"`
	Developers            string                       `gorm:"column:developers;type:varchar(512)" json:"developers"`
	ReleaseDate           *time.Time                   `gorm:"column:release_date" json:"release_date,omitempty"`
	CoverImageURL         string                       `gorm:"column:cover_image_url;type:varchar(1024)" json:"cover_image_url"`
	Metadata              datatypes.JSONType[Metadata] `gorm:"column:metadata_json;not null" json:"metadata"`
	LastEnrichedDate      *time.Time                   `gorm:"column:last_enriched_date;index" json:"last_enriched_date,omitempty"`
	MetadataSource        *string                      `gorm:"column:metadata_source;type:varchar(64)" json:"metadata_source,omitempty"`
	LastEnrichmentAttempt *time.Time                   `gorm:"column:last_enrichment_attempt" json:"last_enrichment_attempt,omitempty"`
	CreatedAt             time.Time                    `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt             time.Time                    `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updated_at"`
	Version               int64                        `gorm:"column:version;not null;index" json:"version"`
}

func (ReferenceEntry) TableName() string { return "reference_entries" }

// CatalogVersion is the single-row global version counter.
type CatalogVersion struct {
	ID             int       `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	CurrentVersion int64     `gorm:"column:current_version;not null" json:"current_version"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updated_at"`
}

func (CatalogVersion) TableName() string { return "catalog_versions" }

// ChangeAction is the kind of mutation recorded in the change log.
type ChangeAction string

const (
	ActionCreated ChangeAction = "Created"
	ActionUpdated ChangeAction = "Updated"
	ActionDeleted ChangeAction = "Deleted"
)

// EntityReferenceEntry is the change log entity type for reference entries.
const EntityReferenceEntry = "ReferenceEntry"

// FieldChange holds the before and after value of one column.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Diff maps column names to their change.
type Diff map[string]FieldChange

// Columns returns the changed column names.
func (d Diff) Columns() []string {
	cols := make([]string, 0, len(d))
	for col := range d {
		cols = append(cols, col)
	}
	return cols
}

// ChangeLog is an append-only audit row, one per committed mutation.
type ChangeLog struct {
	ID             uint                     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntityType     string                   `gorm:"column:entity_type;type:varchar(64);not null;index:idx_change_entity,priority:1" json:"entity_type"`
	EntityID       uint                     `gorm:"column:entity_id;not null;index:idx_change_entity,priority:2" json:"entity_id"`
	Action         ChangeAction             `gorm:"column:action;type:varchar(16);not null" json:"action"`
	ChangedAt      time.Time                `gorm:"column:changed_at;not null;index:idx_change_changed_at" json:"changed_at"`
	ChangedBy      *string                  `gorm:"column:changed_by;type:varchar(128)" json:"changed_by,omitempty"`
	Changes        datatypes.JSONType[Diff] `gorm:"column:changes;not null" json:"changes"`
	CatalogVersion int64                    `gorm:"column:catalog_version;not null;index" json:"catalog_version"`
}

func (ChangeLog) TableName() string { return "change_log" }

// InstalledRecord is a machine-local installation of a reference entry.
type InstalledRecord struct {
	ID               uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReferenceEntryID uint            `gorm:"column:reference_entry_id;not null;uniqueIndex" json:"reference_entry_id"`
	ReferenceEntry   *ReferenceEntry `gorm:"foreignKey:ReferenceEntryID;constraint:OnDelete:CASCADE" json:"reference_entry,omitempty"`
	Platform         string          `gorm:"column:platform;type:varchar(64);index" json:"platform"`
	InstallLocation  string          `gorm:"column:install_location;type:varchar(1024)" json:"install_location"`
	ExecutablePath   string          `gorm:"column:executable_path;type:varchar(1024)" json:"executable_path"`
	Version          string          `gorm:"column:version;type:varchar(64)" json:"version"`
	InstallDate      *time.Time      `gorm:"column:install_date" json:"install_date,omitempty"`
	SizeBytes        int64           `gorm:"column:size_bytes" json:"size_bytes"`
	LastDetected     time.Time       `gorm:"column:last_detected;not null" json:"last_detected"`
}

func (InstalledRecord) TableName() string { return "installed_records" }

// Models lists every table owned by the catalog, in migration order.
func Models() []any {
	return []any{&CatalogVersion{}, &ReferenceEntry{}, &ChangeLog{}, &InstalledRecord{}}
}
