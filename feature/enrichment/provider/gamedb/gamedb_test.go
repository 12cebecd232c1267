package gamedb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"catalog-manager/feature/enrichment/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/games", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":2,"results":[
			{"id":1,"slug":"portal","name":"Portal","released":"2007-10-09","rating":4.5,"genres":[{"name":"Puzzle"}]},
			{"id":2,"slug":"portal-2","name":"Portal 2","released":"2011-04-18","rating":4.6,"background_image":"https://img/p2.jpg",
			 "genres":[{"name":"Puzzle"},{"name":"Shooter"}],"platforms":[{"platform":{"name":"PC"}}]}
		]}`))
	})
	mux.HandleFunc("/games/2", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		_, _ = w.Write([]byte(`{"description_raw":"Sequel to Portal.","website":"https://thinkwithportals.com",
			"developers":[{"name":"Valve"}],"publishers":[{"name":"Valve"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_SearchByName(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	p := New(provider.GameDBConfig{APIKey: "secret", BaseURL: srv.URL, Priority: 1}, nil)

	require.True(t, p.IsAvailable())
	result := p.SearchByName(context.Background(), "Portal 2")
	require.NotNil(t, result)
	assert.Equal(t, ProviderName, result.Source)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, "Portal 2", result.Name)
	assert.Equal(t, "Sequel to Portal.", result.Description)
	assert.Equal(t, []string{"Puzzle", "Shooter"}, result.Genres)
	assert.Equal(t, []string{"Valve"}, result.Developers)
	assert.Equal(t, "Valve", result.Publisher)
	assert.Equal(t, []string{"PC"}, result.Platforms)
	assert.Equal(t, "2", result.ExternalRef)
	require.NotNil(t, result.ReleaseDate)
	assert.Equal(t, 2011, result.ReleaseDate.Year())
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestProvider_UnavailableWithoutKey(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	p := New(provider.GameDBConfig{BaseURL: srv.URL}, nil)

	assert.False(t, p.IsAvailable())
	assert.Nil(t, p.SearchByName(context.Background(), "Portal"))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestProvider_BlankName(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	p := New(provider.GameDBConfig{APIKey: "secret", BaseURL: srv.URL}, nil)

	assert.Nil(t, p.SearchByName(context.Background(), "   "))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestProvider_ServerErrorIsNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	p := New(provider.GameDBConfig{APIKey: "secret", BaseURL: srv.URL}, nil, WithHTTPClient(srv.Client()))

	assert.Nil(t, p.SearchByName(context.Background(), "Portal"))
}

func TestProvider_DetailsFailureKeepsSearchResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"id":9,"name":"Celeste"}]}`))
	}))
	defer srv.Close()
	p := New(provider.GameDBConfig{APIKey: "secret", BaseURL: srv.URL}, nil)

	result := p.SearchByName(context.Background(), "Celeste")
	require.NotNil(t, result)
	assert.Equal(t, "Celeste", result.Name)
	assert.Empty(t, result.Description)
}
