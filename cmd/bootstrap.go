package cmd

import (
	"fmt"

	"catalog-manager/core/config"
	"catalog-manager/core/database"
	"catalog-manager/core/logger"
	"catalog-manager/feature/catalog"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime bundles what every command needs once configuration is loaded.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	store  *catalog.Store
	lock   *flock.Flock
}

// openRuntime loads configuration, builds the logger and opens the migrated
// catalog. Writers pass exclusive to hold the catalog file lock until close.
func openRuntime(exclusive bool) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logg}

	if exclusive && cfg.Database.IsSQLite() && cfg.Database.Name != ":memory:" {
		rt.lock = flock.New(cfg.Database.Name + ".lock")
		ok, err := rt.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire catalog lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("catalog %s is locked by another process", cfg.Database.Name)
		}
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("database connection required: %w", err)
	}
	if err := catalog.Migrate(db); err != nil {
		rt.close()
		return nil, err
	}

	rt.db = db
	rt.store = catalog.NewStore(db, logg)
	return rt, nil
}

func (rt *runtime) close() {
	if rt.db != nil {
		if sqlDB, err := rt.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if rt.lock != nil {
		if err := rt.lock.Unlock(); err != nil {
			rt.logger.Warn("failed to release catalog lock", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}
