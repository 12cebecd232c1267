// Package provider defines the metadata provider contract and the immutable
// registry that orders providers into per-partition fallback chains.
//
// Concrete providers live in subpackages:
//
//   - gamedb: game database search API, requires an API key.
//   - packagemgr: package manager CLI lookup.
//   - scrape: HTML meta tags of a product page.
//   - encyclopedia: encyclopedia article summaries, always available.
//
// Lower priority values are asked first. The game partition and the software
// partition each get their own chain; a provider may serve both.
package provider
