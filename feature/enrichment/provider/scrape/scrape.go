// Package scrape reads metadata from the HTML meta tags of a product page.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalog-manager/core/utils"
	"catalog-manager/feature/enrichment/provider"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ProviderName is reported as the metadata source.
const ProviderName = "WebScrape"

const (
	minConfidence = 0.5
	prefixScore   = 0.75
	maxBodyBytes  = 2 << 20
	userAgent     = "catalog-manager/1.0 (+metadata enrichment)"
)

// Provider fetches a page built from a URL template and parses its meta tags.
type Provider struct {
	template   string
	priority   int
	enabled    bool
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

// New creates the provider.
func New(cfg provider.ScrapeConfig, logger *zap.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		template:   strings.TrimSpace(cfg.URLTemplate),
		priority:   cfg.Priority,
		enabled:    cfg.Enabled,
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
func (p *Provider) Kinds() []provider.Kind { return []provider.Kind{provider.KindSoftware} }
func (p *Provider) MinConfidence() float64 { return minConfidence }

// IsAvailable reports whether the provider is enabled with a usable template.
func (p *Provider) IsAvailable() bool {
	return p.enabled && strings.Count(p.template, "%s") == 1
}

// SearchByName fetches the page for name and returns its description, or nil.
func (p *Provider) SearchByName(ctx context.Context, name string) *provider.MetadataResult {
	name = strings.TrimSpace(name)
	slug := utils.Slug(name)
	if slug == "" || !p.IsAvailable() {
		return nil
	}

	pageURL := fmt.Sprintf(p.template, url.PathEscape(slug))
	page, err := p.fetch(ctx, pageURL)
	if err != nil {
		p.logger.Debug("Page fetch failed", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	meta := ParseMeta(page)
	description := firstNonEmpty(meta["og:description"], meta["description"], meta["twitter:description"])
	if description == "" {
		return nil
	}
	title := firstNonEmpty(meta["og:title"], meta["title"])

	result := &provider.MetadataResult{
		Source:        ProviderName,
		Confidence:    confidence(name, title),
		Name:          title,
		Description:   description,
		CoverImageURL: firstNonEmpty(meta["og:image"], meta["twitter:image"]),
		Website:       firstNonEmpty(meta["og:url"], pageURL),
		ExternalRef:   pageURL,
	}
	if site := meta["og:site_name"]; site != "" {
		result.Extra = map[string]string{"site_name": site}
	}
	return result
}

func (p *Provider) fetch(ctx context.Context, pageURL string) (io.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return strings.NewReader(string(body)), nil
}

// ParseMeta collects <meta> tags keyed by lowercased property or name, plus
// the document <title> under "title". The first occurrence of a key wins.
func ParseMeta(r io.Reader) map[string]string {
	meta := map[string]string{}
	z := html.NewTokenizer(r)
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return meta
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "title":
				inTitle = true
			case "meta":
				var key, content string
				for _, attr := range tok.Attr {
					switch strings.ToLower(attr.Key) {
					case "property", "name":
						if key == "" {
							key = strings.ToLower(strings.TrimSpace(attr.Val))
						}
					case "content":
						content = strings.TrimSpace(attr.Val)
					}
				}
				if key != "" && content != "" {
					if _, seen := meta[key]; !seen {
						meta[key] = content
					}
				}
			}
		case html.TextToken:
			if inTitle {
				if _, seen := meta["title"]; !seen {
					if text := strings.TrimSpace(string(z.Text())); text != "" {
						meta["title"] = text
					}
				}
			}
		case html.EndTagToken:
			if tok := z.Token(); tok.Data == "title" {
				inTitle = false
			}
		}
	}
}

// confidence scores a page title against the searched name. Product pages
// usually suffix the name ("Git: Reviews, Features..."), which counts as a
// solid match.
func confidence(name, title string) float64 {
	if title == "" {
		return minConfidence
	}
	score := utils.NameSimilarity(name, title)
	n, t := utils.NormalizeName(name), utils.NormalizeName(title)
	if n != "" && (t == n || strings.HasPrefix(t, n+" ")) && score < prefixScore {
		score = prefixScore
	}
	return score
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
