package enrichment

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	orchestrator *Orchestrator
	handler      *Handler
}

// NewFeature creates the enrichment feature.
func NewFeature(orchestrator *Orchestrator, logger *zap.Logger) *Feature {
	return &Feature{orchestrator: orchestrator, handler: NewHandler(orchestrator, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "enrichment"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.orchestrator != nil && f.orchestrator.catalog != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
