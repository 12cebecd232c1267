// Package snapshot publishes the catalog to object storage for sync clients.
//
// Each publish writes catalog/v<version>.json with every entry at that
// catalog version, then rewrites catalog/latest.json with a small manifest
// pointing at it. Clients poll the manifest and fetch the versioned object
// when the version moved; the change feed on /catalog/changes covers deltas
// in between. Older snapshots are pruned down to Config.Keep.
package snapshot
