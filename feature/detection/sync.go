package detection

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"catalog-manager/core/reconcile"
	"catalog-manager/feature/catalog"

	"go.uber.org/zap"
)

// Catalog is the part of the catalog store a sync writes to.
type Catalog interface {
	Upsert(ctx context.Context, source, externalID string, fields catalog.EntryFields, opts ...catalog.WriteOption) (*catalog.ReferenceEntry, bool, error)
	UpsertInstalled(ctx context.Context, entryID uint, fields catalog.InstalledFields) (*catalog.InstalledRecord, bool, error)
	DeleteInstalled(ctx context.Context, id uint) error
	ListInstalled(ctx context.Context, platform string) ([]catalog.InstalledRecord, error)
}

// SyncOptions controls a detection pass.
type SyncOptions struct {
	// DryRun plans without writing.
	DryRun bool
	// KeepStale leaves installed records of games that are no longer detected.
	KeepStale bool
}

// SyncAction is a planned create, update or remove of an installed record.
type SyncAction = reconcile.Action[InstalledGameRecord, catalog.InstalledRecord]

// SyncReport summarises one detection pass.
type SyncReport struct {
	Platform  string                `json:"platform"`
	Detected  int                   `json:"detected"`
	Discarded int                   `json:"discarded"`
	DryRun    bool                  `json:"dry_run"`
	Executed  int                   `json:"executed"`
	Summary   reconcile.PlanSummary `json:"summary"`
	Actions   []SyncAction          `json:"actions"`
	Duration  time.Duration         `json:"duration"`
}

// Syncer records detector output in the catalog.
type Syncer struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewSyncer creates a Syncer.
func NewSyncer(cat Catalog, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{catalog: cat, logger: logger}
}

// Sync reconciles the detector's current snapshot against the installed
// records stored for its platform. New games get a reference entry of type
// Game keyed by (platform, game id); changed installations are refreshed and,
// unless KeepStale is set, records of games that disappeared are removed.
func (s *Syncer) Sync(ctx context.Context, d Detector, opts SyncOptions) (*SyncReport, error) {
	start := time.Now()
	platform := d.PlatformName()
	adapter := &syncAdapter{detector: d, catalog: s.catalog, platform: platform}

	reconcileOpts := reconcile.Options{
		DryRun:    opts.DryRun,
		DoRemove:  !opts.KeepStale,
		Confirmed: true,
	}

	plan, executed, err := reconcile.ReconcileAndApply[InstalledGameRecord, catalog.InstalledRecord](ctx, adapter, adapter, reconcileOpts)
	if err != nil {
		s.logger.Error("Detection sync failed",
			zap.String("platform", platform),
			zap.Int("executed", executed),
			zap.Error(err))
		return nil, fmt.Errorf("sync %s: %w", platform, err)
	}

	report := &SyncReport{
		Platform:  platform,
		Detected:  adapter.detected,
		Discarded: adapter.discarded,
		DryRun:    opts.DryRun,
		Executed:  executed,
		Summary:   plan.Summary,
		Actions:   plan.Actions,
		Duration:  time.Since(start),
	}

	s.logger.Info("Detection sync finished",
		zap.String("platform", platform),
		zap.Int("detected", report.Detected),
		zap.Int("discarded", report.Discarded),
		zap.Int("created", plan.Summary.CreateActions),
		zap.Int("updated", plan.Summary.UpdateActions),
		zap.Int("removed", plan.Summary.RemoveActions),
		zap.Bool("dry_run", opts.DryRun),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// syncAdapter reconciles one detector against the catalog and applies the plan.
type syncAdapter struct {
	detector Detector
	catalog  Catalog
	platform string

	detected  int
	discarded int
}

func (a *syncAdapter) Name() string { return "detection:" + a.platform }

func (a *syncAdapter) LoadDetected(ctx context.Context) (map[string]InstalledGameRecord, error) {
	records, err := a.detector.InstalledGames(ctx)
	if err != nil {
		return nil, err
	}

	valid, dropped := FilterValid(records)
	a.detected = len(valid)
	a.discarded = dropped

	index := make(map[string]InstalledGameRecord, len(valid))
	for _, record := range valid {
		index[record.GameID] = record
	}
	return index, nil
}

func (a *syncAdapter) LoadStored(ctx context.Context) (map[string]catalog.InstalledRecord, error) {
	records, err := a.catalog.ListInstalled(ctx, a.platform)
	if err != nil {
		return nil, err
	}

	index := make(map[string]catalog.InstalledRecord, len(records))
	for _, record := range records {
		if record.ReferenceEntry == nil || record.ReferenceEntry.Source != a.platform {
			continue
		}
		index[record.ReferenceEntry.ExternalID] = record
	}
	return index, nil
}

func (a *syncAdapter) ResolveName(detected *InstalledGameRecord, stored *catalog.InstalledRecord) string {
	if detected != nil {
		return detected.Name
	}
	if stored != nil && stored.ReferenceEntry != nil {
		return stored.ReferenceEntry.Name
	}
	return ""
}

func (a *syncAdapter) CompareFields(detected InstalledGameRecord, stored catalog.InstalledRecord) []string {
	var mismatch []string
	if stored.ReferenceEntry != nil && stored.ReferenceEntry.Name != detected.Name {
		mismatch = append(mismatch, fmt.Sprintf("name: detected=%s stored=%s", detected.Name, stored.ReferenceEntry.Name))
	}
	if stored.InstallLocation != detected.InstallDir {
		mismatch = append(mismatch, fmt.Sprintf("install_location: detected=%s stored=%s", detected.InstallDir, stored.InstallLocation))
	}
	if stored.ExecutablePath != detected.ExecutablePath {
		mismatch = append(mismatch, fmt.Sprintf("executable_path: detected=%s stored=%s", detected.ExecutablePath, stored.ExecutablePath))
	}
	if stored.SizeBytes != detected.SizeOnDisk {
		mismatch = append(mismatch, "size_bytes: detected="+strconv.FormatInt(detected.SizeOnDisk, 10)+" stored="+strconv.FormatInt(stored.SizeBytes, 10))
	}
	return mismatch
}

func (a *syncAdapter) Create(ctx context.Context, key string, detected InstalledGameRecord) error {
	return a.write(ctx, detected)
}

func (a *syncAdapter) Update(ctx context.Context, key string, detected InstalledGameRecord, stored catalog.InstalledRecord) error {
	return a.write(ctx, detected)
}

func (a *syncAdapter) Remove(ctx context.Context, key string, stored catalog.InstalledRecord) error {
	return a.catalog.DeleteInstalled(ctx, stored.ID)
}

// write resolves or creates the reference entry, then records the installation.
func (a *syncAdapter) write(ctx context.Context, record InstalledGameRecord) error {
	entry, _, err := a.catalog.Upsert(ctx, a.platform, record.GameID, catalog.EntryFields{
		Name: catalog.Ptr(record.Name),
		Type: catalog.Ptr(catalog.TypeGame),
	}, catalog.ChangedBy("detector:"+a.platform))
	if err != nil {
		return err
	}

	fields := catalog.InstalledFields{
		Platform:        a.platform,
		InstallLocation: record.InstallDir,
		ExecutablePath:  record.ExecutablePath,
		SizeBytes:       record.SizeOnDisk,
	}
	if !record.LastUpdated.IsZero() {
		fields.InstallDate = catalog.Ptr(record.LastUpdated)
	}

	_, _, err = a.catalog.UpsertInstalled(ctx, entry.ID, fields)
	return err
}
