package provider

// Config holds the configuration of every metadata provider.
type Config struct {
	GameDB         GameDBConfig         `mapstructure:"gamedb"`
	PackageManager PackageManagerConfig `mapstructure:"package_manager"`
	Scrape         ScrapeConfig         `mapstructure:"scrape"`
	Encyclopedia   EncyclopediaConfig   `mapstructure:"encyclopedia"`
}

// GameDBConfig configures the game database provider.
type GameDBConfig struct {
	// APIKey is required; the provider reports itself unavailable without it.
	APIKey   string `mapstructure:"api_key" default:""`
	BaseURL  string `mapstructure:"base_url" default:"https://api.rawg.io/api"`
	Priority int    `mapstructure:"priority" default:"1"`
}

// PackageManagerConfig configures the package manager provider.
type PackageManagerConfig struct {
	Binary   string `mapstructure:"binary" default:"winget"`
	Priority int    `mapstructure:"priority" default:"10"`
	Enabled  bool   `mapstructure:"enabled" default:"true"`
}

// ScrapeConfig configures the web scrape provider.
type ScrapeConfig struct {
	// URLTemplate receives the slugified name through a single %s verb.
	URLTemplate string `mapstructure:"url_template" default:"https://alternativeto.net/software/%s/about/"`
	Priority    int    `mapstructure:"priority" default:"50"`
	Enabled     bool   `mapstructure:"enabled" default:"true"`
}

// EncyclopediaConfig configures the encyclopedia provider.
type EncyclopediaConfig struct {
	BaseURL  string `mapstructure:"base_url" default:"https://%s.wikipedia.org/api/rest_v1"`
	Language string `mapstructure:"language" default:"en"`
	Priority int    `mapstructure:"priority" default:"99"`
}
