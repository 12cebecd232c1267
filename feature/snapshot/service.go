package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"catalog-manager/core/storage"
	"catalog-manager/feature/catalog"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const (
	// Prefix is the object prefix every snapshot lives under.
	Prefix = "catalog/"
	// LatestObject points at the most recent snapshot.
	LatestObject = Prefix + "latest.json"

	pageSize     = 500
	collectTries = 3
)

var (
	// ErrNoSnapshot is returned when nothing has been published yet.
	ErrNoSnapshot = errors.New("no snapshot published")
	// ErrCatalogBusy is returned when the catalog kept changing while it was read.
	ErrCatalogBusy = errors.New("catalog changed while collecting snapshot")
)

// Config tunes snapshot publishing.
type Config struct {
	// Keep is the number of versioned snapshots retained after a publish. Zero keeps all.
	Keep int `mapstructure:"keep" default:"10"`
}

// ObjectName returns the object holding the snapshot of a catalog version.
func ObjectName(version int64) string {
	return Prefix + "v" + strconv.FormatInt(version, 10) + ".json"
}

// VersionOf parses the version out of a snapshot object name.
func VersionOf(object string) (int64, bool) {
	name, ok := strings.CutPrefix(object, Prefix+"v")
	if !ok {
		return 0, false
	}
	name, ok = strings.CutSuffix(name, ".json")
	if !ok {
		return 0, false
	}
	version, err := strconv.ParseInt(name, 10, 64)
	return version, err == nil
}

// Manifest describes one published snapshot.
type Manifest struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Entries   int       `json:"entries"`
	Object    string    `json:"object"`
	SizeBytes int64     `json:"size_bytes,omitempty"`
}

// Document is the full snapshot body.
type Document struct {
	Manifest
	Items []catalog.ReferenceEntry `json:"items"`
}

// Catalog is the read side of the catalog store.
type Catalog interface {
	CurrentVersion(ctx context.Context) (int64, error)
	List(ctx context.Context, q catalog.ListQuery) ([]catalog.ReferenceEntry, int64, error)
}

// Service publishes and reads catalog snapshots in object storage.
type Service struct {
	catalog Catalog
	client  storage.Client
	bucket  string
	region  string
	keep    int
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a snapshot service.
func NewService(cat Catalog, client storage.Client, storageCfg storage.Config, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog: cat,
		client:  client,
		bucket:  storageCfg.Bucket,
		region:  storageCfg.Region,
		keep:    cfg.Keep,
		logger:  logger,
		now:     time.Now,
	}
}

// Bucket returns the bucket snapshots are written to.
func (s *Service) Bucket() string {
	return s.bucket
}

// Publish writes every entry at the current catalog version to a versioned
// object and repoints the latest manifest at it. Old snapshots beyond the
// configured retention are pruned afterwards; a failed prune is only logged.
func (s *Service) Publish(ctx context.Context) (*Manifest, error) {
	created, err := storage.EnsureBucket(ctx, s.client, s.bucket, s.region)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("Created snapshot bucket", zap.String("bucket", s.bucket))
	}

	doc, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.put(ctx, doc.Object, body); err != nil {
		return nil, err
	}

	manifest := doc.Manifest
	manifest.SizeBytes = int64(len(body))
	latest, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := s.put(ctx, LatestObject, latest); err != nil {
		return nil, err
	}

	s.logger.Info("Published catalog snapshot",
		zap.String("id", manifest.ID),
		zap.Int64("version", manifest.Version),
		zap.Int("entries", manifest.Entries),
		zap.Int64("size_bytes", manifest.SizeBytes))

	if s.keep > 0 {
		if removed, err := s.Prune(ctx, s.keep); err != nil {
			s.logger.Warn("Failed to prune old snapshots", zap.Error(err))
		} else if len(removed) > 0 {
			s.logger.Info("Pruned old snapshots", zap.Strings("objects", removed))
		}
	}

	return &manifest, nil
}

// collect reads all entries and retries when the version moved underneath.
func (s *Service) collect(ctx context.Context) (*Document, error) {
	for attempt := 0; attempt < collectTries; attempt++ {
		before, err := s.catalog.CurrentVersion(ctx)
		if err != nil {
			return nil, err
		}

		var items []catalog.ReferenceEntry
		for offset := 0; ; offset += pageSize {
			page, total, err := s.catalog.List(ctx, catalog.ListQuery{Limit: pageSize, Offset: offset})
			if err != nil {
				return nil, err
			}
			items = append(items, page...)
			if len(page) < pageSize || int64(len(items)) >= total {
				break
			}
		}

		after, err := s.catalog.CurrentVersion(ctx)
		if err != nil {
			return nil, err
		}
		if before != after {
			s.logger.Debug("Catalog changed during snapshot, retrying",
				zap.Int64("before", before),
				zap.Int64("after", after))
			continue
		}

		if items == nil {
			items = []catalog.ReferenceEntry{}
		}
		return &Document{
			Manifest: Manifest{
				ID:        uuid.NewString(),
				Version:   after,
				CreatedAt: s.now().UTC(),
				Entries:   len(items),
				Object:    ObjectName(after),
			},
			Items: items,
		}, nil
	}
	return nil, ErrCatalogBusy
}

func (s *Service) put(ctx context.Context, object string, body []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", object, err)
	}
	return nil
}

// Latest returns the manifest of the most recent snapshot.
func (s *Service) Latest(ctx context.Context) (*Manifest, error) {
	var manifest Manifest
	if err := s.read(ctx, LatestObject, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Load returns the full snapshot of one catalog version.
func (s *Service) Load(ctx context.Context, version int64) (*Document, error) {
	var doc Document
	if err := s.read(ctx, ObjectName(version), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Service) read(ctx context.Context, object string, v any) error {
	obj, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return s.readErr(object, err)
	}
	defer obj.Close()

	if err := json.NewDecoder(obj).Decode(v); err != nil {
		return s.readErr(object, err)
	}
	return nil
}

func (s *Service) readErr(object string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrNoSnapshot
	}
	return fmt.Errorf("failed to read %s: %w", object, err)
}

// List returns the versions of all stored snapshots, newest first.
func (s *Service) List(ctx context.Context) ([]int64, error) {
	var versions []int64
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: Prefix + "v", Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		if version, ok := VersionOf(obj.Key); ok {
			versions = append(versions, version)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] > versions[j] })
	return versions, nil
}

// Prune removes all but the newest keep snapshots and returns the removed objects.
func (s *Service) Prune(ctx context.Context, keep int) ([]string, error) {
	versions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if keep < 1 {
		keep = 1
	}
	if len(versions) <= keep {
		return nil, nil
	}

	stale := versions[keep:]
	objects := make(chan minio.ObjectInfo, len(stale))
	removed := make([]string, 0, len(stale))
	for _, version := range stale {
		name := ObjectName(version)
		objects <- minio.ObjectInfo{Key: name}
		removed = append(removed, name)
	}
	close(objects)

	for rErr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		if rErr.Err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", rErr.ObjectName, rErr.Err)
		}
	}
	return removed, nil
}
