// Package packagemgr looks software up through a package manager CLI.
package packagemgr

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"

	"catalog-manager/core/utils"
	"catalog-manager/feature/enrichment/provider"

	"go.uber.org/zap"
)

// ProviderName is reported as the metadata source.
const ProviderName = "Winget"

const minConfidence = 0.7

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

var lookPath = exec.LookPath

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output() //nolint:gosec
}

var foundLine = regexp.MustCompile(`^Found\s+(.+?)\s+\[([^\]]+)\]\s*$`)

// Provider runs "<binary> show --name <name>" and parses the manifest it prints.
type Provider struct {
	binary    string
	priority  int
	available bool
	run       Runner
	logger    *zap.Logger
}

var _ provider.Provider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithRunner replaces command execution. The provider is then considered
// available regardless of the binary being on PATH.
func WithRunner(run Runner) Option {
	return func(p *Provider) {
		if run != nil {
			p.run = run
			p.available = true
		}
	}
}

// New creates the provider. Availability is resolved once, here.
func New(cfg provider.PackageManagerConfig, logger *zap.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		binary:   strings.TrimSpace(cfg.Binary),
		priority: cfg.Priority,
		run:      execRunner,
		logger:   logger.With(zap.String("provider", ProviderName)),
	}
	if cfg.Enabled && p.binary != "" {
		if _, err := lookPath(p.binary); err == nil {
			p.available = true
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	if !cfg.Enabled {
		p.available = false
	}
	return p
}

func (p *Provider) Name() string { return ProviderName }
func (p *Provider) Priority() int { return p.priority }
func (p *Provider) Kinds() []provider.Kind { return []provider.Kind{provider.KindSoftware} }
func (p *Provider) MinConfidence() float64 { return minConfidence }
func (p *Provider) IsAvailable() bool { return p.available }

// SearchByName returns the package manifest matching name, or nil.
func (p *Provider) SearchByName(ctx context.Context, name string) *provider.MetadataResult {
	name = strings.TrimSpace(name)
	if name == "" || !p.available {
		return nil
	}

	out, err := p.run(ctx, p.binary, "show", "--name", name, "--accept-source-agreements", "--disable-interactivity")
	if err != nil {
		p.logger.Debug("Package lookup failed", zap.String("name", name), zap.Error(err))
		return nil
	}

	manifest := ParseManifest(out)
	if manifest.Name == "" {
		return nil
	}

	result := &provider.MetadataResult{
		Source:      ProviderName,
		Confidence:  utils.NameSimilarity(name, manifest.Name),
		Name:        manifest.Name,
		Description: manifest.Fields["description"],
		Publisher:   manifest.Fields["publisher"],
		Website:     manifest.Fields["homepage"],
		Tags:        manifest.Tags,
		ExternalRef: manifest.ID,
	}
	if result.Website == "" {
		result.Website = manifest.Fields["publisher url"]
	}
	if author := manifest.Fields["author"]; author != "" {
		result.Developers = []string{author}
	}
	extra := map[string]string{}
	for _, key := range []string{"version", "license", "moniker"} {
		if v := manifest.Fields[key]; v != "" {
			extra[key] = v
		}
	}
	if len(extra) > 0 {
		result.Extra = extra
	}
	return result
}

// Manifest is the parsed output of a "show" command.
type Manifest struct {
	Name   string
	ID     string
	Fields map[string]string
	Tags   []string
}

// ParseManifest parses "Key: Value" lines following the "Found <name> [<id>]"
// header. Keys are lowercased. Indented lines after "Tags:" form the tag list.
func ParseManifest(out []byte) Manifest {
	m := Manifest{Fields: map[string]string{}}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	inTags := false
	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if match := foundLine.FindStringSubmatch(line); match != nil {
			m.Name, m.ID = strings.TrimSpace(match[1]), strings.TrimSpace(match[2])
			continue
		}
		if m.Name == "" {
			continue
		}
		indented := strings.HasPrefix(raw, " ") || strings.HasPrefix(raw, "\t")
		if inTags && indented {
			m.Tags = append(m.Tags, line)
			continue
		}
		inTags = false
		key, value, ok := strings.Cut(line, ":")
		if !ok || indented {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "tags" && value == "" {
			inTags = true
			continue
		}
		if _, seen := m.Fields[key]; !seen {
			m.Fields[key] = value
		}
	}
	return m
}
