package encyclopedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-manager/feature/enrichment/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page/summary/Blender_(software)", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"standard","title":"Blender (software)","description":"3D computer graphics software",
			"extract":"Blender is a free and open-source 3D computer graphics software tool set.",
			"thumbnail":{"source":"https://upload.example.org/blender.png"},
			"content_urls":{"desktop":{"page":"https://en.wikipedia.org/wiki/Blender_(software)"}}}`))
	})
	mux.HandleFunc("/page/summary/Mercury", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"disambiguation","title":"Mercury","extract":"Mercury may refer to:"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_SearchByName(t *testing.T) {
	srv := newServer(t)
	p := New(provider.EncyclopediaConfig{BaseURL: srv.URL, Priority: 99}, nil)

	require.True(t, p.IsAvailable())
	result := p.SearchByName(context.Background(), "Blender (software)")
	require.NotNil(t, result)
	assert.Equal(t, ProviderName, result.Source)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Contains(t, result.Description, "open-source 3D")
	assert.Equal(t, "https://upload.example.org/blender.png", result.CoverImageURL)
	assert.Equal(t, "3D computer graphics software", result.Extra["short_description"])
}

func TestProvider_DisambiguationIsLowConfidence(t *testing.T) {
	srv := newServer(t)
	p := New(provider.EncyclopediaConfig{BaseURL: srv.URL}, nil)

	result := p.SearchByName(context.Background(), "Mercury")
	require.NotNil(t, result)
	assert.Less(t, result.Confidence, p.MinConfidence())
}

func TestProvider_NotFound(t *testing.T) {
	srv := newServer(t)
	p := New(provider.EncyclopediaConfig{BaseURL: srv.URL}, nil)

	assert.Nil(t, p.SearchByName(context.Background(), "Nonexistent Thing"))
	assert.Nil(t, p.SearchByName(context.Background(), ""))
}

func TestNew_LanguageTemplate(t *testing.T) {
	p := New(provider.EncyclopediaConfig{BaseURL: "https://%s.wikipedia.org/api/rest_v1/", Language: "de"}, nil)
	assert.Equal(t, "https://de.wikipedia.org/api/rest_v1", p.baseURL)
	assert.ElementsMatch(t, []provider.Kind{provider.KindGame, provider.KindSoftware}, p.Kinds())
}
