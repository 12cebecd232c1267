package provider

import (
	"context"
	"time"
)

// Kind is the catalog partition a provider serves.
type Kind string

const (
	KindGame     Kind = "game"
	KindSoftware Kind = "software"
)

// MetadataResult is a provider's best match for a name. Confidence is on a
// 0..1 scale.
type MetadataResult struct {
	Source        string            `json:"source"`
	Confidence    float64           `json:"confidence"`
	Name          string            `json:"name,omitempty"`
	Description   string            `json:"description,omitempty"`
	Publisher     string            `json:"publisher,omitempty"`
	Genres        []string          `json:"genres,omitempty"`
	Developers    []string          `json:"developers,omitempty"`
	ReleaseDate   *time.Time        `json:"release_date,omitempty"`
	CoverImageURL string            `json:"cover_image_url,omitempty"`
	Website       string            `json:"website,omitempty"`
	Rating        *float64          `json:"rating,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	Platforms     []string          `json:"platforms,omitempty"`
	ExternalRef   string            `json:"external_ref,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Provider looks metadata up by name.
//
// SearchByName returns nil for blank names and on any failure; errors never
// escape a provider. IsAvailable must be cheap and free of network I/O.
type Provider interface {
	Name() string
	Priority() int
	Kinds() []Kind
	IsAvailable() bool
	MinConfidence() float64
	SearchByName(ctx context.Context, name string) *MetadataResult
}

// Serves reports whether p serves kind.
func Serves(p Provider, kind Kind) bool {
	for _, k := range p.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}
