package provider

import (
	"sort"
)

// Registry holds the ordered provider chains. It is built once and never mutated.
type Registry struct {
	chains map[Kind][]Provider
}

// PartitionStats describes the providers of one partition.
type PartitionStats struct {
	Total     int      `json:"total"`
	Available int      `json:"available"`
	Providers []string `json:"providers"`
}

// Statistics describes both partitions.
type Statistics struct {
	Game     PartitionStats `json:"game"`
	Software PartitionStats `json:"software"`
}

// NewRegistry sorts providers into per-kind chains by ascending priority.
// Providers with equal priority keep their registration order.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{chains: map[Kind][]Provider{}}
	for _, kind := range []Kind{KindGame, KindSoftware} {
		var chain []Provider
		for _, p := range providers {
			if p != nil && Serves(p, kind) {
				chain = append(chain, p)
			}
		}
		sort.SliceStable(chain, func(i, j int) bool {
			return chain[i].Priority() < chain[j].Priority()
		})
		r.chains[kind] = chain
	}
	return r
}

// Providers returns a copy of the chain for kind.
func (r *Registry) Providers(kind Kind) []Provider {
	chain := r.chains[kind]
	out := make([]Provider, len(chain))
	copy(out, chain)
	return out
}

// Statistics counts total and available providers per partition.
func (r *Registry) Statistics() Statistics {
	return Statistics{
		Game:     r.partition(KindGame),
		Software: r.partition(KindSoftware),
	}
}

func (r *Registry) partition(kind Kind) PartitionStats {
	chain := r.chains[kind]
	stats := PartitionStats{Total: len(chain), Providers: make([]string, 0, len(chain))}
	for _, p := range chain {
		stats.Providers = append(stats.Providers, p.Name())
		if p.IsAvailable() {
			stats.Available++
		}
	}
	return stats
}
