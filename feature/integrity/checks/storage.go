package checks

import (
	"context"
	"fmt"

	"catalog-manager/core/storage"
	"catalog-manager/feature/snapshot"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageReport describes the snapshot bucket.
type StorageReport struct {
	Bucket        string `json:"bucket"`
	Exists        bool   `json:"exists"`
	Snapshots     int    `json:"snapshots"`
	LatestPresent bool   `json:"latest_present"`
}

// CheckStorage inspects the snapshot bucket without modifying it.
func CheckStorage(ctx context.Context, client storage.Client, bucket string) (*StorageReport, error) {
	report := &StorageReport{Bucket: bucket}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.Exists = exists
	if !exists {
		return report, nil
	}

	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: snapshot.Prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		if obj.Key == snapshot.LatestObject {
			report.LatestPresent = true
			continue
		}
		if _, ok := snapshot.VersionOf(obj.Key); ok {
			report.Snapshots++
		}
	}

	return report, nil
}

// FixStorage creates the snapshot bucket when it is missing.
func FixStorage(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) error {
	created, err := storage.EnsureBucket(ctx, client, bucket, region)
	if err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	if created {
		logger.Info("Created missing bucket", zap.String("bucket", bucket))
	}
	return nil
}
