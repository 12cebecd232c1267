// Package gamedb looks games up in a RAWG-compatible game database API.
package gamedb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"catalog-manager/core/utils"
	"catalog-manager/feature/enrichment/provider"

	"go.uber.org/zap"
)

// ProviderName is reported as the metadata source.
const ProviderName = "RAWG"

const minConfidence = 0.6

type named struct {
	Name string `json:"name"`
}

type searchGame struct {
	ID              int64   `json:"id"`
	Slug            string  `json:"slug"`
	Name            string  `json:"name"`
	Released        string  `json:"released"`
	BackgroundImage string  `json:"background_image"`
	Rating          float64 `json:"rating"`
	Genres          []named `json:"genres"`
	Tags            []named `json:"tags"`
	Platforms       []struct {
		Platform named `json:"platform"`
	} `json:"platforms"`
}

type searchResponse struct {
	Count   int          `json:"count"`
	Results []searchGame `json:"results"`
}

type gameDetails struct {
	DescriptionRaw string  `json:"description_raw"`
	Website        string  `json:"website"`
	Developers     []named `json:"developers"`
	Publishers     []named `json:"publishers"`
}

// Provider queries the game database.
type Provider struct {
	apiKey     string
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

// New creates the provider. A blank API key yields an unavailable provider.
func New(cfg provider.GameDBConfig, logger *zap.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
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
func (p *Provider) Kinds() []provider.Kind { return []provider.Kind{provider.KindGame} }
func (p *Provider) MinConfidence() float64 { return minConfidence }
func (p *Provider) IsAvailable() bool { return p.apiKey != "" && p.baseURL != "" }

// SearchByName returns the closest game to name, or nil.
func (p *Provider) SearchByName(ctx context.Context, name string) *provider.MetadataResult {
	name = strings.TrimSpace(name)
	if name == "" || !p.IsAvailable() {
		return nil
	}

	resp, err := p.search(ctx, name)
	if err != nil {
		p.logger.Debug("Game search failed", zap.String("name", name), zap.Error(err))
		return nil
	}

	var best *searchGame
	bestScore := 0.0
	for i := range resp.Results {
		score := utils.NameSimilarity(name, resp.Results[i].Name)
		if score > bestScore {
			best, bestScore = &resp.Results[i], score
		}
	}
	if best == nil {
		return nil
	}

	result := &provider.MetadataResult{
		Source:        ProviderName,
		Confidence:    bestScore,
		Name:          best.Name,
		CoverImageURL: best.BackgroundImage,
		ExternalRef:   strconv.FormatInt(best.ID, 10),
		Genres:        names(best.Genres),
		Tags:          names(best.Tags),
	}
	for _, pl := range best.Platforms {
		result.Platforms = append(result.Platforms, pl.Platform.Name)
	}
	if best.Rating > 0 {
		rating := best.Rating
		result.Rating = &rating
	}
	if released, err := time.Parse("2006-01-02", best.Released); err == nil {
		result.ReleaseDate = &released
	}
	if best.Slug != "" {
		result.Extra = map[string]string{"slug": best.Slug}
	}

	details, err := p.details(ctx, best.ID)
	if err != nil {
		p.logger.Debug("Game details failed, keeping search result", zap.Int64("id", best.ID), zap.Error(err))
		return result
	}
	result.Description = strings.TrimSpace(details.DescriptionRaw)
	result.Website = details.Website
	result.Developers = names(details.Developers)
	if pubs := names(details.Publishers); len(pubs) > 0 {
		result.Publisher = pubs[0]
	}
	return result
}

func (p *Provider) search(ctx context.Context, name string) (*searchResponse, error) {
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("search", name)
	params.Set("page_size", "5")

	var payload searchResponse
	if err := p.get(ctx, "/games", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (p *Provider) details(ctx context.Context, id int64) (*gameDetails, error) {
	params := url.Values{}
	params.Set("key", p.apiKey)

	var payload gameDetails
	if err := p.get(ctx, "/games/"+strconv.FormatInt(id, 10), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (p *Provider) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(p.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse gamedb url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gamedb returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gamedb response: %w", err)
	}
	return nil
}

func names(items []named) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if n := strings.TrimSpace(item.Name); n != "" {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
