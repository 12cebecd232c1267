package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-manager/feature/enrichment/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html>
<html><head>
<title>7-Zip: Reviews, Features, Pricing</title>
<meta property="og:title" content="7-Zip: Reviews, Features, Pricing &amp; Download">
<meta name="description" content="Plain description">
<meta property="og:description" content="7-Zip is a file archiver with a high compression ratio.">
<meta property="og:image" content="https://cdn.example.org/7zip.png"/>
<meta property="og:site_name" content="AlternativeTo">
</head><body><h1>7-Zip</h1></body></html>`

func TestParseMeta(t *testing.T) {
	meta := ParseMeta(strings.NewReader(page))
	assert.Equal(t, "7-Zip: Reviews, Features, Pricing", meta["title"])
	assert.Equal(t, "7-Zip: Reviews, Features, Pricing & Download", meta["og:title"])
	assert.Equal(t, "Plain description", meta["description"])
	assert.Equal(t, "https://cdn.example.org/7zip.png", meta["og:image"])
}

func TestProvider_SearchByName(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	p := New(provider.ScrapeConfig{URLTemplate: srv.URL + "/software/%s/about/", Priority: 50, Enabled: true}, nil)
	require.True(t, p.IsAvailable())

	result := p.SearchByName(context.Background(), "7-Zip")
	require.NotNil(t, result)
	assert.Equal(t, "/software/7-zip/about/", gotPath)
	assert.Equal(t, ProviderName, result.Source)
	assert.Equal(t, "7-Zip is a file archiver with a high compression ratio.", result.Description)
	assert.Equal(t, "https://cdn.example.org/7zip.png", result.CoverImageURL)
	assert.Equal(t, "AlternativeTo", result.Extra["site_name"])
	assert.GreaterOrEqual(t, result.Confidence, p.MinConfidence())
}

func TestProvider_NoDescriptionIsNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Nothing</title></head></html>`))
	}))
	defer srv.Close()

	p := New(provider.ScrapeConfig{URLTemplate: srv.URL + "/%s", Enabled: true}, nil)
	assert.Nil(t, p.SearchByName(context.Background(), "Nothing"))
}

func TestProvider_HTTPErrorIsNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := New(provider.ScrapeConfig{URLTemplate: srv.URL + "/%s", Enabled: true}, nil)
	assert.Nil(t, p.SearchByName(context.Background(), "Missing App"))
}

func TestProvider_Availability(t *testing.T) {
	assert.False(t, New(provider.ScrapeConfig{URLTemplate: "https://example.org/", Enabled: true}, nil).IsAvailable())
	assert.False(t, New(provider.ScrapeConfig{URLTemplate: "https://example.org/%s", Enabled: false}, nil).IsAvailable())
	assert.Nil(t, New(provider.ScrapeConfig{URLTemplate: "https://example.org/%s", Enabled: true}, nil).SearchByName(context.Background(), " ! "))
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 1.0, confidence("Git", "Git"))
	assert.Equal(t, prefixScore, confidence("Git", "Git: Reviews and Features"))
	assert.Equal(t, minConfidence, confidence("Git", ""))
	assert.Less(t, confidence("Git", "Mercurial SCM"), minConfidence)
}
