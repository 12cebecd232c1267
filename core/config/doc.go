// Package config provides configuration management for the Catalog Manager.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: catalog database (sqlite file or MySQL server)
//   - Storage: S3/MinIO credentials and bucket for catalog snapshots
//   - Log: Logging level and format
//   - Enrichment: cool-down window, provider timeout, sweep workers
//   - Providers: game-database credential and provider endpoints
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Name)
package config
