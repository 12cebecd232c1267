package integrity

import (
	"context"
	"fmt"

	"catalog-manager/core/storage"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	db     *gorm.DB
	client storage.Client
	bucket string
	region string
	logger *zap.Logger
}

// NewService creates a new integrity service. A nil client skips storage checks.
func NewService(db *gorm.DB, client storage.Client, storageCfg storage.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     db,
		client: client,
		bucket: storageCfg.Bucket,
		region: storageCfg.Region,
		logger: logger,
	}
}

// CheckSchema compares the catalog tables against the catalog models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, catalog.Models()...)
}

// CheckVersions verifies the version counter and the audit trail.
func (s *Service) CheckVersions(ctx context.Context) (*checks.VersionReport, error) {
	return checks.CheckVersions(ctx, s.db)
}

// CheckStorage inspects the snapshot bucket.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, fmt.Errorf("snapshot storage is disabled")
	}
	return checks.CheckStorage(ctx, s.client, s.bucket)
}

// FixStorage creates the snapshot bucket if needed.
func (s *Service) FixStorage(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("snapshot storage is disabled")
	}
	return checks.FixStorage(ctx, s.client, s.bucket, s.region, s.logger)
}

// Report is the combined result of all checks. A failed check carries its error instead.
type Report struct {
	Healthy  bool                  `json:"healthy"`
	Schema   *checks.SchemaReport  `json:"schema,omitempty"`
	Versions *checks.VersionReport `json:"versions,omitempty"`
	Storage  *checks.StorageReport `json:"storage,omitempty"`
	Errors   map[string]string     `json:"errors,omitempty"`
}

// CheckAll runs every check. Storage is skipped when snapshots are disabled.
func (s *Service) CheckAll(ctx context.Context) *Report {
	report := &Report{Healthy: true, Errors: map[string]string{}}

	if schema, err := s.CheckSchema(); err != nil {
		report.Errors["schema"] = err.Error()
	} else {
		report.Schema = schema
		report.Healthy = report.Healthy && schema.Matched
	}

	if versions, err := s.CheckVersions(ctx); err != nil {
		report.Errors["versions"] = err.Error()
	} else {
		report.Versions = versions
		report.Healthy = report.Healthy && versions.Matched
	}

	if s.client != nil {
		if st, err := s.CheckStorage(ctx); err != nil {
			report.Errors["storage"] = err.Error()
		} else {
			report.Storage = st
			report.Healthy = report.Healthy && st.Exists
		}
	}

	if len(report.Errors) > 0 {
		report.Healthy = false
	}
	return report
}
