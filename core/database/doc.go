// Package database handles catalog database connections and schema inspection.
//
// It wraps GORM to configure either a local SQLite catalog file (the default)
// or a MySQL server, based on the application's configuration.
//
// # Connect
//
// Connect opens the configured driver with unique-violation translation enabled,
// so callers can detect duplicate-key races with errors.Is(err, gorm.ErrDuplicatedKey).
// SQLite connections are limited to a single open connection.
//
// # Schema Inspection
//
// GetTableColumns returns the live column definitions of a table (PRAGMA table_info
// on SQLite, SHOW COLUMNS on MySQL). The integrity feature compares them against
// the catalog models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "reference_entries")
package database
