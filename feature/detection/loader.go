package detection

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	syncer   *Syncer
	registry *Registry
	handler  *Handler
}

// NewFeature creates the detection feature.
func NewFeature(syncer *Syncer, registry *Registry, cfg Config, logger *zap.Logger) *Feature {
	return &Feature{
		syncer:   syncer,
		registry: registry,
		handler:  NewHandler(syncer, registry, cfg.KeepStale, logger),
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "detection"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.syncer != nil && f.registry != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
