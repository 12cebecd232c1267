// Package enrichment fills catalog entries with metadata from external providers.
//
// The Orchestrator classifies an entry into the game or software partition and
// walks that partition's providers in ascending priority. Unavailable providers
// are skipped without a call. The first result whose confidence reaches the
// provider's own threshold wins; nil results, panics and timeouts count as no
// match and the walk continues. Calls within one walk are strictly sequential.
//
// # Outcomes
//
//   - Enriched: descriptive fields, MetadataSource, LastEnrichedDate and
//     LastEnrichmentAttempt are written through catalog.Store.Upsert.
//   - NoMatch: only LastEnrichmentAttempt is written.
//   - RateLimited: the entry was enriched and its last attempt is inside the
//     cool-down window; no provider is contacted.
//   - Invalid: nil entry or blank name; no I/O at all.
//   - Cancelled: the context ended mid-walk; nothing is written.
//
// # Sweeps
//
// Sweep selects entries via catalog.Store.PendingEnrichment and enriches them
// on an errgroup bounded by Config.Workers. Concurrent requests for the same
// entry share one attempt through singleflight.
package enrichment
