package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-manager/feature/catalog"
	"catalog-manager/feature/enrichment/provider"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Actor is recorded as ChangedBy on every enrichment write.
const Actor = "enrichment"

// Catalog is the part of the catalog store the orchestrator writes through.
type Catalog interface {
	Get(ctx context.Context, id uint) (*catalog.ReferenceEntry, error)
	Upsert(ctx context.Context, source, externalID string, fields catalog.EntryFields, opts ...catalog.WriteOption) (*catalog.ReferenceEntry, bool, error)
	PendingEnrichment(ctx context.Context, limit int, cooldown time.Duration) ([]catalog.ReferenceEntry, error)
}

// Status is the result of one enrichment attempt.
type Status string

const (
	// StatusInvalid means the item was rejected before any I/O.
	StatusInvalid Status = "invalid"
	// StatusRateLimited means the cool-down gate skipped the item; no provider was contacted.
	StatusRateLimited Status = "rate_limited"
	StatusEnriched    Status = "enriched"
	StatusNoMatch     Status = "no_match"
	// StatusFailed means the write-back failed and was rolled back.
	StatusFailed Status = "failed"
	// StatusCancelled means the context ended mid-walk; nothing was written.
	StatusCancelled Status = "cancelled"
)

// Outcome describes one enrichment attempt.
type Outcome struct {
	EntryID    uint     `json:"entry_id"`
	Status     Status   `json:"status"`
	Provider   string   `json:"provider,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Contacted  []string `json:"contacted,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Orchestrator walks the provider chains and writes matches back to the catalog.
type Orchestrator struct {
	catalog  Catalog
	registry *provider.Registry
	cfg      Config
	logger   *zap.Logger
	group    singleflight.Group
	timeout  time.Duration
	now      func() time.Time
}

// NewOrchestrator creates an orchestrator over an immutable provider registry.
func NewOrchestrator(cat Catalog, registry *provider.Registry, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = provider.NewRegistry()
	}
	return &Orchestrator{
		catalog:  cat,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		timeout:  cfg.ProviderTimeout(),
		now:      time.Now,
	}
}

// Enrich enriches item unless it is invalid or inside its cool-down window.
// It returns true and the winning provider name on a match.
func (o *Orchestrator) Enrich(ctx context.Context, item *catalog.ReferenceEntry) (bool, string) {
	out := o.EnrichDetailed(ctx, item, false)
	return out.Status == StatusEnriched, out.Provider
}

// EnrichForced enriches item ignoring the cool-down window.
func (o *Orchestrator) EnrichForced(ctx context.Context, item *catalog.ReferenceEntry) (bool, string) {
	out := o.EnrichDetailed(ctx, item, true)
	return out.Status == StatusEnriched, out.Provider
}

// ProviderStatistics reports provider counts per partition. It has no side effects.
func (o *Orchestrator) ProviderStatistics() provider.Statistics {
	return o.registry.Statistics()
}

// Classify picks the provider partition for an entry.
func Classify(item *catalog.ReferenceEntry) provider.Kind {
	switch item.Type {
	case catalog.TypeGame:
		return provider.KindGame
	case catalog.TypeUnknown, "":
		if strings.Contains(strings.ToLower(item.Category), "game") {
			return provider.KindGame
		}
	}
	return provider.KindSoftware
}

// EnrichDetailed runs one attempt and reports how it ended. Concurrent calls
// for the same entry share a single attempt. Whatever the attempt wrote is
// copied back into item, so the cool-down applies to the same pointer.
func (o *Orchestrator) EnrichDetailed(ctx context.Context, item *catalog.ReferenceEntry, force bool) Outcome {
	if item == nil || strings.TrimSpace(item.Name) == "" ||
		strings.TrimSpace(item.Source) == "" || strings.TrimSpace(item.ExternalID) == "" {
		out := Outcome{Status: StatusInvalid}
		if item != nil {
			out.EntryID = item.ID
		}
		return out
	}
	if !force && o.rateLimited(item) {
		return Outcome{EntryID: item.ID, Status: StatusRateLimited}
	}

	key := fmt.Sprintf("%s\x00%s\x00%t", item.Source, item.ExternalID, force)
	v, _, _ := o.group.Do(key, func() (any, error) {
		return o.enrich(ctx, item), nil
	})
	att := v.(attempt)
	if att.stored != nil {
		*item = *att.stored
	}
	return att.out
}

// attempt is the shared result of one enrichment. stored is the entry as
// written, nil when nothing was written.
type attempt struct {
	out    Outcome
	stored *catalog.ReferenceEntry
}

func (o *Orchestrator) rateLimited(item *catalog.ReferenceEntry) bool {
	if item.LastEnrichmentAttempt == nil || item.LastEnrichedDate == nil {
		return false
	}
	return o.now().Sub(*item.LastEnrichmentAttempt) < o.cfg.Cooldown()
}

func (o *Orchestrator) enrich(ctx context.Context, item *catalog.ReferenceEntry) attempt {
	l := o.logger.With(zap.Uint("entry_id", item.ID), zap.String("name", item.Name))
	out := Outcome{EntryID: item.ID}

	result, winner, contacted := o.walk(ctx, Classify(item), item.Name, l)
	out.Contacted = contacted
	if ctx.Err() != nil {
		l.Info("Enrichment abandoned", zap.Error(ctx.Err()))
		out.Status = StatusCancelled
		return attempt{out: out}
	}

	now := o.now()
	var fields catalog.EntryFields
	if result != nil {
		fields = fieldsFromResult(item, result, winner, now)
	} else {
		fields = catalog.EntryFields{LastEnrichmentAttempt: &now}
	}

	stored, _, err := o.catalog.Upsert(ctx, item.Source, item.ExternalID, fields, catalog.ChangedBy(Actor))
	if err != nil {
		l.Error("Enrichment write-back failed", zap.Error(err))
		out.Status = StatusFailed
		out.Error = err.Error()
		return attempt{out: out}
	}

	if result == nil {
		l.Info("No provider matched", zap.Strings("contacted", contacted))
		out.Status = StatusNoMatch
		return attempt{out: out, stored: stored}
	}
	l.Info("Entry enriched", zap.String("provider", winner), zap.Float64("confidence", result.Confidence))
	out.Status = StatusEnriched
	out.Provider = winner
	out.Confidence = result.Confidence
	return attempt{out: out, stored: stored}
}

// walk asks the available providers of kind in priority order and stops at
// the first result meeting that provider's confidence threshold.
func (o *Orchestrator) walk(ctx context.Context, kind provider.Kind, name string, l *zap.Logger) (*provider.MetadataResult, string, []string) {
	var contacted []string
	for _, p := range o.registry.Providers(kind) {
		if ctx.Err() != nil {
			return nil, "", contacted
		}
		if !p.IsAvailable() {
			continue
		}
		contacted = append(contacted, p.Name())
		result := o.call(ctx, p, name, l)
		if result == nil {
			continue
		}
		if result.Confidence < p.MinConfidence() {
			l.Debug("Provider match below threshold",
				zap.String("provider", p.Name()),
				zap.Float64("confidence", result.Confidence),
				zap.Float64("threshold", p.MinConfidence()))
			continue
		}
		return result, p.Name(), contacted
	}
	return nil, "", contacted
}

// call runs one provider lookup bounded by the provider timeout. Panics and
// timeouts count as no match.
func (o *Orchestrator) call(ctx context.Context, p provider.Provider, name string, l *zap.Logger) *provider.MetadataResult {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan *provider.MetadataResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				l.Warn("Provider panicked", zap.String("provider", p.Name()), zap.Any("panic", r))
				done <- nil
			}
		}()
		done <- p.SearchByName(callCtx, name)
	}()

	select {
	case result := <-done:
		return result
	case <-callCtx.Done():
		l.Warn("Provider call timed out", zap.String("provider", p.Name()), zap.Error(callCtx.Err()))
		return nil
	}
}

func fieldsFromResult(item *catalog.ReferenceEntry, r *provider.MetadataResult, winner string, now time.Time) catalog.EntryFields {
	fields := catalog.EntryFields{
		MetadataSource:        catalog.Ptr(winner),
		LastEnrichedDate:      &now,
		LastEnrichmentAttempt: &now,
	}
	if r.Description != "" {
		fields.Description = catalog.Ptr(r.Description)
	}
	if r.Publisher != "" {
		fields.Publisher = catalog.Ptr(r.Publisher)
	}
	if len(r.Genres) > 0 {
		fields.Genres = catalog.Ptr(strings.Join(r.Genres, ", "))
	}
	if len(r.Developers) > 0 {
		fields.Developers = catalog.Ptr(strings.Join(r.Developers, ", "))
	}
	if r.ReleaseDate != nil {
		fields.ReleaseDate = r.ReleaseDate
	}
	if r.CoverImageURL != "" {
		fields.CoverImageURL = catalog.Ptr(r.CoverImageURL)
	}

	meta := item.Metadata.Data()
	if r.Website != "" {
		meta.Website = r.Website
	}
	if r.Rating != nil {
		meta.Rating = r.Rating
	}
	if len(r.Tags) > 0 {
		meta.Tags = r.Tags
	}
	if len(r.Platforms) > 0 {
		meta.Platforms = r.Platforms
	}
	if r.ExternalRef != "" {
		meta.ProviderRef = winner + ":" + r.ExternalRef
	}
	if len(r.Extra) > 0 {
		merged := make(map[string]string, len(meta.Extra)+len(r.Extra))
		for k, v := range meta.Extra {
			merged[k] = v
		}
		for k, v := range r.Extra {
			merged[k] = v
		}
		meta.Extra = merged
	}
	fields.Metadata = &meta
	return fields
}
