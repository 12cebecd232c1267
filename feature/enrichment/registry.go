package enrichment

import (
	"catalog-manager/feature/enrichment/provider"
	"catalog-manager/feature/enrichment/provider/encyclopedia"
	"catalog-manager/feature/enrichment/provider/gamedb"
	"catalog-manager/feature/enrichment/provider/packagemgr"
	"catalog-manager/feature/enrichment/provider/scrape"

	"go.uber.org/zap"
)

// BuildRegistry creates the provider registry from configuration. It is called
// once at startup.
func BuildRegistry(cfg provider.Config, logger *zap.Logger) *provider.Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := provider.NewRegistry(
		gamedb.New(cfg.GameDB, logger),
		packagemgr.New(cfg.PackageManager, logger),
		scrape.New(cfg.Scrape, logger),
		encyclopedia.New(cfg.Encyclopedia, logger),
	)
	stats := registry.Statistics()
	logger.Info("Metadata providers registered",
		zap.Int("game_total", stats.Game.Total),
		zap.Int("game_available", stats.Game.Available),
		zap.Int("software_total", stats.Software.Total),
		zap.Int("software_available", stats.Software.Available))
	return registry
}
