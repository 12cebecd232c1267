// Package detection records locally installed games in the catalog.
//
// Platform scanners are external; they hand over normalized
// InstalledGameRecord values through the Detector interface. The bundled
// ManifestDetector reads those records from a JSON file per platform.
//
// Sync reconciles one detector's snapshot with the installed records stored
// for its platform and applies the plan: new games get a Game entry keyed by
// (platform, game id), changed installations are refreshed and vanished ones
// are removed. Records with an empty id or a placeholder name are discarded
// first.
package detection
