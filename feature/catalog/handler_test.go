package catalog

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) (*fiber.App, *Store) {
	t.Helper()
	store := newTestStore(t)
	app := fiber.New()
	feature := NewFeature(store, zap.NewNop(), "api")
	assert.Equal(t, "catalog", feature.Name())
	assert.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))
	return app, store
}

func TestHandler_UpsertAndGet(t *testing.T) {
	app, _ := newTestApp(t)

	body := `{"source":"Steam","external_id":"620","name":"Portal 2","type":"Game"}`
	req := httptest.NewRequest("PUT", "/catalog/entries", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var upserted UpsertResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&upserted))
	assert.True(t, upserted.Created)
	assert.Equal(t, TypeGame, upserted.Entry.Type)

	resp, err = app.Test(httptest.NewRequest("GET", "/catalog/entries/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/catalog/entries/1/history", nil))
	require.NoError(t, err)
	var history []ChangeLog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Equal(t, "api", *history[0].ChangedBy)
}

func TestHandler_Errors(t *testing.T) {
	app, _ := newTestApp(t)

	t.Run("InvalidKey", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/catalog/entries", strings.NewReader(`{"source":"","external_id":"1","name":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/catalog/entries/42", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("BadID", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("DELETE", "/catalog/entries/abc", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandler_ListVersionStats(t *testing.T) {
	app, store := newTestApp(t)
	ctx := t.Context()
	_, _, err := store.Upsert(ctx, "Steam", "1", EntryFields{Name: Ptr("Terraria"), Type: Ptr(TypeGame)})
	require.NoError(t, err)
	_, _, err = store.Upsert(ctx, "Winget", "Git.Git", EntryFields{Name: Ptr("Git"), Type: Ptr(TypeTool)})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/catalog/entries?type=tool", nil))
	require.NoError(t, err)
	var list struct {
		Entries []ReferenceEntry `json:"entries"`
		Total   int64            `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, "Git", list.Entries[0].Name)

	resp, err = app.Test(httptest.NewRequest("GET", "/catalog/version", nil))
	require.NoError(t, err)
	var version map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&version))
	assert.Equal(t, int64(3), version["version"])

	resp, err = app.Test(httptest.NewRequest("GET", "/catalog/changes?since=2", nil))
	require.NoError(t, err)
	var changes []ChangeLog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&changes))
	assert.Len(t, changes, 1)

	resp, err = app.Test(httptest.NewRequest("GET", "/catalog/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
