// Package middleware groups the Fiber middleware shared by every catalog feature.
//
//   - auth: rejects requests without the configured X-API-Key. An empty key
//     leaves the API open, which is the default for a single-machine catalog.
//   - rayid: tags each request with an id that is echoed in the response
//     header and attached to every log line through logger.WithRayID.
//
// Both are registered globally in cmd/start.go; the swagger UI is mounted
// before auth so it stays reachable.
package middleware
