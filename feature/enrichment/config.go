package enrichment

import "time"

// Config tunes the enrichment orchestrator.
type Config struct {
	// CooldownHours is the minimum gap between two attempts on an enriched entry.
	CooldownHours int `mapstructure:"cooldown_hours" default:"24"`
	// ProviderTimeoutSeconds bounds every single provider call.
	ProviderTimeoutSeconds int `mapstructure:"provider_timeout_seconds" default:"15"`
	// Workers is the number of entries enriched concurrently by a sweep.
	Workers int `mapstructure:"workers" default:"4"`
	// BatchSize is the default number of entries a sweep selects.
	BatchSize int `mapstructure:"batch_size" default:"100"`
}

// Cooldown returns the cool-down window, 24h when unset.
func (c Config) Cooldown() time.Duration {
	if c.CooldownHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.CooldownHours) * time.Hour
}

// ProviderTimeout returns the per-call timeout, 15s when unset.
func (c Config) ProviderTimeout() time.Duration {
	if c.ProviderTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return 1
	}
	return c.Workers
}

func (c Config) batchSize() int {
	if c.BatchSize <= 0 {
		return 100
	}
	return c.BatchSize
}
