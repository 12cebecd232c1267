package detection

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandler(t *testing.T) {
	store := newTestCatalog(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Steam.json"), []byte(`[{"game_id": "440", "name": "Team Fortress 2"}]`), 0o644))

	cfg := Config{ManifestDir: dir}
	registry, err := LoadRegistry(cfg)
	require.NoError(t, err)

	feature := NewFeature(NewSyncer(store, zap.NewNop()), registry, cfg, zap.NewNop())
	assert.Equal(t, "detection", feature.Name())
	assert.True(t, feature.IsEnabled())
	app := fiber.New()
	require.NoError(t, feature.Load(app))

	t.Run("Platforms", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/detection/platforms", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var platforms []PlatformInfo
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&platforms))
		require.Len(t, platforms, 1)
		assert.Equal(t, "Steam", platforms[0].Platform)
		assert.True(t, platforms[0].Installed)
	})

	t.Run("DryRun", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("POST", "/detection/platforms/steam/sync?dry_run=true", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var report SyncReport
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.True(t, report.DryRun)
		assert.Equal(t, 1, report.Summary.CreateActions)
		assert.Zero(t, report.Executed)
	})

	t.Run("Sync", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("POST", "/detection/platforms/Steam/sync", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var report SyncReport
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Equal(t, 1, report.Executed)
	})

	t.Run("UnknownPlatform", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("POST", "/detection/platforms/epic/sync", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}
