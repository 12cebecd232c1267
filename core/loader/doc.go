// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines its name, whether
// it is enabled, and its route registration logic.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager holds the registry of features. Register adds a feature and
// LoadAll loads the enabled ones in registration order. Features such as
// 'catalog', 'enrichment', 'integrity' and 'snapshot' are developed and tested
// in isolation and only meet here.
package loader
