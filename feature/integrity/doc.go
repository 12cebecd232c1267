// Package integrity provides health checks for the catalog.
//
// # Checks Provided
//
//   - Schema: Validates that the connected database has every catalog column with the expected type (SQLite PRAGMA or MySQL SHOW COLUMNS).
//   - Versions: Verifies that the version counter is ahead of every stamped version, that every entry's current version has its audit row, and that no key or version is duplicated.
//   - Storage: Checks the snapshot bucket and counts published snapshots.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/versions : Runs the version check.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
package integrity
