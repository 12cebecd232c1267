package enrichment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SweepOptions controls one sweep.
type SweepOptions struct {
	// Limit caps the entries selected; zero uses the configured batch size.
	Limit int
	// Force selects every entry, enriched or not, and bypasses the cool-down.
	Force bool
}

// SweepReport aggregates the outcomes of a sweep.
type SweepReport struct {
	Selected    int            `json:"selected"`
	Enriched    int            `json:"enriched"`
	NoMatch     int            `json:"no_match"`
	RateLimited int            `json:"rate_limited"`
	Invalid     int            `json:"invalid"`
	Failed      int            `json:"failed"`
	Cancelled   int            `json:"cancelled"`
	ByProvider  map[string]int `json:"by_provider"`
	Duration    time.Duration  `json:"duration"`

	mu sync.Mutex
}

func (r *SweepReport) add(out Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch out.Status {
	case StatusEnriched:
		r.Enriched++
		r.ByProvider[out.Provider]++
	case StatusNoMatch:
		r.NoMatch++
	case StatusRateLimited:
		r.RateLimited++
	case StatusInvalid:
		r.Invalid++
	case StatusFailed:
		r.Failed++
	case StatusCancelled:
		r.Cancelled++
	}
}

// Sweep enriches the entries pending enrichment on a bounded worker pool.
// Entries already written keep their result when ctx is cancelled; the rest
// are reported as cancelled.
func (o *Orchestrator) Sweep(ctx context.Context, opts SweepOptions) (*SweepReport, error) {
	start := time.Now()
	limit := opts.Limit
	if limit <= 0 {
		limit = o.cfg.batchSize()
	}

	cooldown := o.cfg.Cooldown()
	if opts.Force {
		cooldown = 0
	}
	entries, err := o.catalog.PendingEnrichment(ctx, limit, cooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}

	report := &SweepReport{Selected: len(entries), ByProvider: map[string]int{}}
	o.logger.Info("Enrichment sweep started",
		zap.Int("selected", len(entries)),
		zap.Int("workers", o.cfg.workers()))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.workers())
	for i := range entries {
		if gctx.Err() != nil {
			report.add(Outcome{EntryID: entries[i].ID, Status: StatusCancelled})
			continue
		}
		entry := entries[i]
		g.Go(func() error {
			report.add(o.EnrichDetailed(gctx, &entry, opts.Force))
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	o.logger.Info("Enrichment sweep finished",
		zap.Int("enriched", report.Enriched),
		zap.Int("no_match", report.NoMatch),
		zap.Int("failed", report.Failed),
		zap.Int("cancelled", report.Cancelled),
		zap.Duration("duration", report.Duration))
	return report, nil
}
