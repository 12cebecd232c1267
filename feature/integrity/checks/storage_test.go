package checks

import (
	"context"
	"errors"
	"testing"

	"catalog-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func objects(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		ch <- minio.ObjectInfo{Key: key}
	}
	close(ch)
	return ch
}

func TestCheckStorage(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "catalog").Return(false, nil)

		report, err := CheckStorage(context.Background(), mockClient, "catalog")
		require.NoError(t, err)
		assert.False(t, report.Exists)
		mockClient.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Bucket Check Error", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "catalog").Return(false, errors.New("connection refused"))

		_, err := CheckStorage(context.Background(), mockClient, "catalog")
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("Counts Snapshots", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "catalog").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "catalog", mock.Anything).
			Return(objects("catalog/latest.json", "catalog/v2.json", "catalog/v5.json", "catalog/notes.txt"))

		report, err := CheckStorage(context.Background(), mockClient, "catalog")
		require.NoError(t, err)
		assert.True(t, report.Exists)
		assert.True(t, report.LatestPresent)
		assert.Equal(t, 2, report.Snapshots)
	})
}

func TestFixStorage(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "catalog").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "catalog", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

	err := FixStorage(context.Background(), mockClient, "catalog", "eu-west-1", zap.NewNop())
	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}
