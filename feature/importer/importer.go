package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"catalog-manager/core/utils"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/detection"

	"go.uber.org/zap"
)

// ErrMissingInput is returned when none of the input files exist.
var ErrMissingInput = errors.New("no input files found")

// Actor is recorded as ChangedBy on every imported write.
const Actor = "import"

// DefaultGameSource is used for game rows without a platform column.
const DefaultGameSource = "Steam"

// DefaultSoftwareSource is used for software rows without a source column.
const DefaultSoftwareSource = "Registry"

// Catalog is the part of the catalog store the importer writes to.
type Catalog interface {
	FindByKey(ctx context.Context, source, externalID string) (*catalog.ReferenceEntry, error)
	Upsert(ctx context.Context, source, externalID string, fields catalog.EntryFields, opts ...catalog.WriteOption) (*catalog.ReferenceEntry, bool, error)
	UpsertInstalled(ctx context.Context, entryID uint, fields catalog.InstalledFields) (*catalog.InstalledRecord, bool, error)
}

// Options selects the input files.
type Options struct {
	Dir          string
	SoftwareFile string
	GamesFile    string
	// MaxGames caps the number of game rows read. Zero means no cap.
	MaxGames int
}

func (o Options) softwarePath() string {
	name := o.SoftwareFile
	if name == "" {
		name = "software.csv"
	}
	return filepath.Join(o.Dir, name)
}

func (o Options) gamesPath() string {
	name := o.GamesFile
	if name == "" {
		name = "games.csv"
	}
	return filepath.Join(o.Dir, name)
}

// FileReport counts the outcome of every row of one input file.
type FileReport struct {
	File      string `json:"file"`
	Missing   bool   `json:"missing"`
	Rows      int    `json:"rows"`
	Imported  int    `json:"imported"`
	Unchanged int    `json:"unchanged"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
	// Error holds the reason the file failed, or the first row error.
	Error string `json:"error,omitempty"`
}

// Failed reports whether any row failed or the file could not be read.
func (r FileReport) Failed() bool {
	return r.Errors > 0 || (r.Error != "" && !r.Missing)
}

// Report summarises an import run.
type Report struct {
	Software FileReport    `json:"software"`
	Games    FileReport    `json:"games"`
	Duration time.Duration `json:"duration"`
}

// Failed reports whether the run should exit non-zero.
func (r *Report) Failed() bool {
	return r.Software.Failed() || r.Games.Failed()
}

// Importer loads delimited software and game lists into the catalog.
type Importer struct {
	catalog Catalog
	logger  *zap.Logger
}

// New creates an Importer.
func New(cat Catalog, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{catalog: cat, logger: logger}
}

// Import reads the software list and then the game list. A missing file is
// reported but only fails the run when both are missing.
func (i *Importer) Import(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	report := &Report{
		Software: FileReport{File: opts.softwarePath()},
		Games:    FileReport{File: opts.gamesPath()},
	}

	i.importFile(ctx, &report.Software, 0, i.softwareRow)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	i.importFile(ctx, &report.Games, opts.MaxGames, i.gameRow)
	report.Duration = time.Since(start)

	if report.Software.Missing && report.Games.Missing {
		return report, fmt.Errorf("%w in %s", ErrMissingInput, opts.Dir)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	i.logger.Info("Import finished",
		zap.Int("software_imported", report.Software.Imported),
		zap.Int("software_skipped", report.Software.Skipped),
		zap.Int("games_imported", report.Games.Imported),
		zap.Int("games_skipped", report.Games.Skipped),
		zap.Bool("failed", report.Failed()),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// rowOutcome classifies a single row.
type rowOutcome int

const (
	rowImported rowOutcome = iota
	rowUnchanged
	rowSkipped
)

type rowFunc func(ctx context.Context, row record) (rowOutcome, error)

func (i *Importer) importFile(ctx context.Context, fr *FileReport, maxRows int, handle rowFunc) {
	f, err := os.Open(fr.File)
	if errors.Is(err, os.ErrNotExist) {
		fr.Missing = true
		fr.Error = "file not found"
		i.logger.Warn("Import file not found", zap.String("file", fr.File))
		return
	}
	if err != nil {
		fr.Error = err.Error()
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return
	}
	if err != nil {
		fr.Error = fmt.Sprintf("failed to read header: %v", err)
		return
	}
	columns := headerIndex(header)

	for maxRows <= 0 || fr.Rows < maxRows {
		if ctx.Err() != nil {
			return
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		fr.Rows++
		if err != nil {
			fr.Errors++
			fr.setError(fmt.Sprintf("row %d: %v", fr.Rows, err))
			continue
		}

		outcome, err := handle(ctx, record{columns: columns, fields: fields})
		if err != nil {
			fr.Errors++
			fr.setError(fmt.Sprintf("row %d: %v", fr.Rows, err))
			i.logger.Warn("Import row failed", zap.String("file", fr.File), zap.Int("row", fr.Rows), zap.Error(err))
			continue
		}
		switch outcome {
		case rowImported:
			fr.Imported++
		case rowUnchanged:
			fr.Unchanged++
		case rowSkipped:
			fr.Skipped++
		}
	}
}

func (fr *FileReport) setError(msg string) {
	if fr.Error == "" {
		fr.Error = msg
	}
}

func (i *Importer) softwareRow(ctx context.Context, row record) (rowOutcome, error) {
	name := row.get("name", "displayname", "display_name")
	if detection.IsPlaceholderName(name) {
		return rowSkipped, nil
	}

	source := row.getOr(DefaultSoftwareSource, "source", "platform")
	externalID := row.get("external_id", "id", "product_code")
	if externalID == "" {
		externalID = utils.KeySlug(name)
	}

	fields := catalog.EntryFields{Name: catalog.Ptr(name)}
	entryType := catalog.TypeApplication
	if t := row.get("type"); t != "" {
		entryType = catalog.ParseEntryType(t)
	}
	fields.Type = catalog.Ptr(entryType)
	if v := row.get("publisher"); v != "" {
		fields.Publisher = catalog.Ptr(v)
	}
	if v := row.get("category"); v != "" {
		fields.Category = catalog.Ptr(v)
	}
	if v := row.get("description"); v != "" {
		fields.Description = catalog.Ptr(v)
	}

	installed := catalog.InstalledFields{
		Platform:        source,
		InstallLocation: row.get("install_location", "installlocation", "install_dir"),
		ExecutablePath:  row.get("executable_path", "executable", "display_icon"),
		Version:         row.get("version", "displayversion", "display_version"),
		SizeBytes:       parseSize(row.get("size_bytes", "size", "estimatedsize", "estimated_size")),
		InstallDate:     parseDate(row.get("install_date", "installdate")),
	}

	return i.write(ctx, source, externalID, fields, installed)
}

func (i *Importer) gameRow(ctx context.Context, row record) (rowOutcome, error) {
	name := row.get("name", "title")
	externalID := row.get("game_id", "appid", "app_id", "id", "external_id")
	if externalID == "" || detection.IsPlaceholderName(name) {
		return rowSkipped, nil
	}

	source := row.getOr(DefaultGameSource, "platform", "source")
	fields := catalog.EntryFields{
		Name: catalog.Ptr(name),
		Type: catalog.Ptr(catalog.TypeGame),
	}
	if v := row.get("publisher"); v != "" {
		fields.Publisher = catalog.Ptr(v)
	}
	if v := row.get("developers", "developer"); v != "" {
		fields.Developers = catalog.Ptr(v)
	}
	if v := row.get("genres", "genre"); v != "" {
		fields.Genres = catalog.Ptr(v)
	}
	if v := row.get("description"); v != "" {
		fields.Description = catalog.Ptr(v)
	}
	if v := parseDate(row.get("release_date", "released")); v != nil {
		fields.ReleaseDate = v
	}

	installed := catalog.InstalledFields{
		Platform:        source,
		InstallLocation: row.get("install_dir", "install_location", "installdir"),
		ExecutablePath:  row.get("executable_path", "executable"),
		SizeBytes:       parseSize(row.get("size_on_disk", "size_bytes", "size", "sizeondisk")),
		InstallDate:     parseDate(row.get("last_updated", "lastupdated", "install_date")),
	}

	return i.write(ctx, source, externalID, fields, installed)
}

// write upserts the entry and, when the row carries an install location,
// its installed record.
func (i *Importer) write(ctx context.Context, source, externalID string, fields catalog.EntryFields, installed catalog.InstalledFields) (rowOutcome, error) {
	outcome := rowImported

	existing, err := i.catalog.FindByKey(ctx, source, externalID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
	case err != nil:
		return 0, err
	case len(fields.Diff(existing)) == 0:
		outcome = rowUnchanged
	}

	entry := existing
	if outcome == rowImported {
		entry, _, err = i.catalog.Upsert(ctx, source, externalID, fields, catalog.ChangedBy(Actor))
		if err != nil {
			return 0, err
		}
	}

	if installed.InstallLocation != "" || installed.ExecutablePath != "" {
		if _, _, err := i.catalog.UpsertInstalled(ctx, entry.ID, installed); err != nil {
			return 0, err
		}
	}
	return outcome, nil
}
