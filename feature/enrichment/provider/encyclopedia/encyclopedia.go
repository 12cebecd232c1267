// Package encyclopedia looks titles up in an encyclopedia page summary API.
package encyclopedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalog-manager/core/utils"
	"catalog-manager/feature/enrichment/provider"

	"go.uber.org/zap"
)

// ProviderName is reported as the metadata source.
const ProviderName = "Wikipedia"

const (
	minConfidence          = 0.5
	disambiguationScore    = 0.2
	pageTypeDisambiguation = "disambiguation"
)

type summary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
	Thumbnail   *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Provider is the generic fallback for both partitions.
type Provider struct {
	baseURL    string
	priority   int
	httpClient *http.Client
	logger     *zap.Logger
}

var _ provider.Provider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// New creates the provider. A "%s" in the base URL is replaced by the language.
func New(cfg provider.EncyclopediaConfig, logger *zap.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if strings.Contains(base, "%s") {
		lang := strings.TrimSpace(cfg.Language)
		if lang == "" {
			lang = "en"
		}
		base = fmt.Sprintf(base, lang)
	}
	p := &Provider{
		baseURL:    strings.TrimRight(base, "/"),
		priority:   cfg.Priority,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With(zap.String("provider", ProviderName)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return ProviderName }
func (p *Provider) Priority() int { return p.priority }
func (p *Provider) MinConfidence() float64 { return minConfidence }
func (p *Provider) IsAvailable() bool { return p.baseURL != "" }

func (p *Provider) Kinds() []provider.Kind {
	return []provider.Kind{provider.KindGame, provider.KindSoftware}
}

// SearchByName returns the article summary for name, or nil.
func (p *Provider) SearchByName(ctx context.Context, name string) *provider.MetadataResult {
	name = strings.TrimSpace(name)
	if name == "" || !p.IsAvailable() {
		return nil
	}

	page, err := p.summary(ctx, name)
	if err != nil {
		p.logger.Debug("Summary lookup failed", zap.String("name", name), zap.Error(err))
		return nil
	}
	if page == nil || strings.TrimSpace(page.Extract) == "" {
		return nil
	}

	result := &provider.MetadataResult{
		Source:      ProviderName,
		Confidence:  utils.NameSimilarity(name, page.Title),
		Name:        page.Title,
		Description: strings.TrimSpace(page.Extract),
		Website:     page.ContentURLs.Desktop.Page,
		ExternalRef: page.Title,
	}
	if page.Thumbnail != nil {
		result.CoverImageURL = page.Thumbnail.Source
	}
	if page.Description != "" {
		result.Extra = map[string]string{"short_description": page.Description}
	}
	if page.Type == pageTypeDisambiguation {
		result.Confidence = disambiguationScore
	}
	return result
}

func (p *Provider) summary(ctx context.Context, name string) (*summary, error) {
	title := url.PathEscape(strings.ReplaceAll(name, " ", "_"))
	endpoint := p.baseURL + "/page/summary/" + title

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "catalog-manager/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summary returned %d", resp.StatusCode)
	}
	var payload summary
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &payload, nil
}
