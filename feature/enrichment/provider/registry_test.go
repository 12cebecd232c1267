package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	name      string
	priority  int
	kinds     []Kind
	available bool
}

func (s stubProvider) Name() string { return s.name }
func (s stubProvider) Priority() int { return s.priority }
func (s stubProvider) Kinds() []Kind { return s.kinds }
func (s stubProvider) IsAvailable() bool { return s.available }
func (s stubProvider) MinConfidence() float64 { return 0.5 }
func (s stubProvider) SearchByName(ctx context.Context, name string) *MetadataResult {
	return nil
}

func TestRegistry_OrdersByPriority(t *testing.T) {
	r := NewRegistry(
		stubProvider{name: "Wiki", priority: 99, kinds: []Kind{KindGame, KindSoftware}, available: true},
		stubProvider{name: "RAWG", priority: 1, kinds: []Kind{KindGame}},
		stubProvider{name: "Winget", priority: 10, kinds: []Kind{KindSoftware}, available: true},
		stubProvider{name: "Scrape", priority: 10, kinds: []Kind{KindSoftware}, available: true},
	)

	names := func(ps []Provider) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Name())
		}
		return out
	}
	assert.Equal(t, []string{"RAWG", "Wiki"}, names(r.Providers(KindGame)))
	assert.Equal(t, []string{"Winget", "Scrape", "Wiki"}, names(r.Providers(KindSoftware)))
}

func TestRegistry_ProvidersReturnsCopy(t *testing.T) {
	r := NewRegistry(stubProvider{name: "A", priority: 1, kinds: []Kind{KindGame}})
	chain := r.Providers(KindGame)
	chain[0] = stubProvider{name: "B"}
	assert.Equal(t, "A", r.Providers(KindGame)[0].Name())
}

func TestRegistry_Statistics(t *testing.T) {
	r := NewRegistry(
		stubProvider{name: "RAWG", priority: 1, kinds: []Kind{KindGame}},
		stubProvider{name: "Wiki", priority: 99, kinds: []Kind{KindGame, KindSoftware}, available: true},
	)

	first := r.Statistics()
	assert.Equal(t, 2, first.Game.Total)
	assert.Equal(t, 1, first.Game.Available)
	assert.Equal(t, []string{"RAWG", "Wiki"}, first.Game.Providers)
	assert.Equal(t, 1, first.Software.Total)
	assert.Equal(t, first, r.Statistics())
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Providers(KindGame))
	assert.Equal(t, 0, r.Statistics().Software.Total)
}
