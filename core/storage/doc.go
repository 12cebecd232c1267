// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so catalog snapshots can be published to AWS S3
// or a self-hosted MinIO instance. The Client interface is mocked in
// core/storage/mocks for unit tests.
//
// # Operations
//
//   - BucketExists / MakeBucket: bucket provisioning (see EnsureBucket).
//   - PutObject / GetObject: snapshot upload and manifest reads.
//   - ListObjects / RemoveObjects: snapshot listing and pruning.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	created, err := storage.EnsureBucket(ctx, client, "catalog", "")
package storage
