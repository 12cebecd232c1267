package catalog

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// EntryFields carries the fields provided to Upsert. Nil pointers are left
// untouched, so only provided fields take part in the diff.
type EntryFields struct {
	Name                  *string    `json:"name,omitempty"`
	Publisher             *string    `json:"publisher,omitempty"`
	Category              *string    `json:"category,omitempty"`
	Type                  *EntryType `json:"type,omitempty"`
	Description           *string    `json:"description,omitempty"`
	Genres                *string    `json:"genres,omitempty"`
	Developers            *string    `json:"developers,omitempty"`
	ReleaseDate           *time.Time `json:"release_date,omitempty"`
	CoverImageURL         *string    `json:"cover_image_url,omitempty"`
	Metadata              *Metadata  `json:"metadata,omitempty"`
	LastEnrichedDate      *time.Time `json:"last_enriched_date,omitempty"`
	MetadataSource        *string    `json:"metadata_source,omitempty"`
	LastEnrichmentAttempt *time.Time `json:"last_enrichment_attempt,omitempty"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// normalizeTime truncates to the precision every supported driver round-trips.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Diff compares the provided fields against e. Unchanged values are omitted.
func (f EntryFields) Diff(e *ReferenceEntry) Diff {
	d := Diff{}
	diffString(d, "name", f.Name, e.Name)
	diffString(d, "publisher", f.Publisher, e.Publisher)
	diffString(d, "category", f.Category, e.Category)
	if f.Type != nil && *f.Type != e.Type {
		d["type"] = FieldChange{Old: e.Type, New: *f.Type}
	}
	diffString(d, "description", f.Description, e.Description)
	diffString(d, "genres", f.Genres, e.Genres)
	diffString(d, "developers", f.Developers, e.Developers)
	diffTime(d, "release_date", f.ReleaseDate, e.ReleaseDate)
	diffString(d, "cover_image_url", f.CoverImageURL, e.CoverImageURL)
	if f.Metadata != nil {
		current := e.Metadata.Data()
		if !sameJSON(*f.Metadata, current) {
			d["metadata_json"] = FieldChange{Old: current, New: *f.Metadata}
		}
	}
	diffTime(d, "last_enriched_date", f.LastEnrichedDate, e.LastEnrichedDate)
	if f.MetadataSource != nil {
		var old string
		if e.MetadataSource != nil {
			old = *e.MetadataSource
		}
		if e.MetadataSource == nil || old != *f.MetadataSource {
			d["metadata_source"] = FieldChange{Old: e.MetadataSource, New: *f.MetadataSource}
		}
	}
	diffTime(d, "last_enrichment_attempt", f.LastEnrichmentAttempt, e.LastEnrichmentAttempt)
	return d
}

// ApplyTo copies the provided fields onto e.
func (f EntryFields) ApplyTo(e *ReferenceEntry) {
	setString(&e.Name, f.Name)
	setString(&e.Publisher, f.Publisher)
	setString(&e.Category, f.Category)
	if f.Type != nil {
		e.Type = *f.Type
	}
	setString(&e.Description, f.Description)
	setString(&e.Genres, f.Genres)
	setString(&e.Developers, f.Developers)
	setTime(&e.ReleaseDate, f.ReleaseDate)
	setString(&e.CoverImageURL, f.CoverImageURL)
	if f.Metadata != nil {
		e.Metadata = datatypes.NewJSONType(*f.Metadata)
	}
	setTime(&e.LastEnrichedDate, f.LastEnrichedDate)
	if f.MetadataSource != nil {
		e.MetadataSource = Ptr(*f.MetadataSource)
	}
	setTime(&e.LastEnrichmentAttempt, f.LastEnrichmentAttempt)
}

func diffString(d Diff, col string, next *string, cur string) {
	if next != nil && *next != cur {
		d[col] = FieldChange{Old: cur, New: *next}
	}
}

func diffTime(d Diff, col string, next *time.Time, cur *time.Time) {
	if next == nil {
		return
	}
	n := normalizeTime(*next)
	if cur != nil && normalizeTime(*cur).Equal(n) {
		return
	}
	var old any
	if cur != nil {
		old = normalizeTime(*cur)
	}
	d[col] = FieldChange{Old: old, New: n}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setTime(dst **time.Time, v *time.Time) {
	if v != nil {
		*dst = Ptr(normalizeTime(*v))
	}
}

func sameJSON(a, b Metadata) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}
