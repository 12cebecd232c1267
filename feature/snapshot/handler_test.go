package snapshot

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"catalog-manager/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandler(t *testing.T) {
	store := newTestCatalog(t)
	seed(t, store, "440", "Team Fortress 2")

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "catalog").Return(true, nil)
	client.On("PutObject", mock.Anything, "catalog", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	client.On("GetObject", mock.Anything, "catalog", LatestObject, mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey"}).Once()
	client.On("GetObject", mock.Anything, "catalog", "catalog/v2.json", mock.Anything).
		Return(io.NopCloser(bytes.NewBufferString(`{"id":"x","version":2,"entries":1,"object":"catalog/v2.json","items":[]}`)), nil)
	client.On("ListObjects", mock.Anything, "catalog", mock.Anything).Return(objectsChan("catalog/v2.json"))

	feature := NewFeature(newTestService(store, client, 0), zap.NewNop())
	assert.Equal(t, "snapshot", feature.Name())
	assert.True(t, feature.IsEnabled())
	app := fiber.New()
	require.NoError(t, feature.Load(app))

	resp, err := app.Test(httptest.NewRequest("GET", "/snapshots/latest", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/snapshots", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/snapshots", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `[2]`, string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/snapshots/2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/snapshots/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestFeature_DisabledWithoutService(t *testing.T) {
	assert.False(t, NewFeature(nil, zap.NewNop()).IsEnabled())
}
