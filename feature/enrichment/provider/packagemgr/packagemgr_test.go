package packagemgr

import (
	"context"
	"errors"
	"testing"

	"catalog-manager/feature/enrichment/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vscodeManifest = `Found Visual Studio Code [Microsoft.VisualStudioCode]
Version: 1.85.1
Publisher: Microsoft Corporation
Publisher Url: https://www.microsoft.com/
Author: Microsoft Corporation
Moniker: vscode
Description: Code editing. Redefined.
Homepage: https://code.visualstudio.com/
License: Microsoft Software License
Tags:
  developer-tools
  editor
Installer:
  Installer Type: inno
  Installer Url: https://update.code.visualstudio.com/setup.exe
`

func TestParseManifest(t *testing.T) {
	m := ParseManifest([]byte(vscodeManifest))
	assert.Equal(t, "Visual Studio Code", m.Name)
	assert.Equal(t, "Microsoft.VisualStudioCode", m.ID)
	assert.Equal(t, "1.85.1", m.Fields["version"])
	assert.Equal(t, "https://code.visualstudio.com/", m.Fields["homepage"])
	assert.Equal(t, []string{"developer-tools", "editor"}, m.Tags)
	assert.NotContains(t, m.Fields, "installer type")
}

func TestParseManifest_NoMatch(t *testing.T) {
	m := ParseManifest([]byte("No package found matching input criteria.\n"))
	assert.Empty(t, m.Name)
}

func TestProvider_SearchByName(t *testing.T) {
	var gotArgs []string
	run := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte(vscodeManifest), nil
	}
	p := New(provider.PackageManagerConfig{Binary: "winget", Priority: 10, Enabled: true}, nil, WithRunner(run))

	require.True(t, p.IsAvailable())
	result := p.SearchByName(context.Background(), "Visual Studio Code")
	require.NotNil(t, result)
	assert.Equal(t, []string{"winget", "show", "--name", "Visual Studio Code"}, gotArgs[:4])
	assert.Equal(t, ProviderName, result.Source)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, "Code editing. Redefined.", result.Description)
	assert.Equal(t, "Microsoft Corporation", result.Publisher)
	assert.Equal(t, "Microsoft.VisualStudioCode", result.ExternalRef)
	assert.Equal(t, "vscode", result.Extra["moniker"])
}

func TestProvider_Failures(t *testing.T) {
	calls := 0
	failing := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls++
		return nil, errors.New("exit status 1")
	}
	p := New(provider.PackageManagerConfig{Binary: "winget", Enabled: true}, nil, WithRunner(failing))

	assert.Nil(t, p.SearchByName(context.Background(), "Git"))
	assert.Nil(t, p.SearchByName(context.Background(), "  "))
	assert.Equal(t, 1, calls)
}

func TestProvider_Disabled(t *testing.T) {
	p := New(provider.PackageManagerConfig{Binary: "winget", Enabled: false}, nil,
		WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
			t.Fatal("runner must not be called")
			return nil, nil
		}))
	assert.False(t, p.IsAvailable())
	assert.Nil(t, p.SearchByName(context.Background(), "Git"))
}

func TestProvider_MissingBinary(t *testing.T) {
	original := lookPath
	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	t.Cleanup(func() { lookPath = original })

	p := New(provider.PackageManagerConfig{Binary: "winget", Enabled: true}, nil)
	assert.False(t, p.IsAvailable())
}
