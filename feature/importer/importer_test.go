package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"catalog-manager/core/database"
	"catalog-manager/feature/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, catalog.Migrate(db))
	return catalog.NewStore(db, zap.NewNop())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const softwareCSV = "\ufeffDisplayName,Publisher,DisplayVersion,InstallLocation,EstimatedSize,InstallDate\n" +
	"Git,The Git Development Community,2.44.0,C:\\Program Files\\Git,286720KB,20240301\n" +
	"Unknown,,,,,\n" +
	"7-Zip,Igor Pavlov,23.01,,1024,\n"

const gamesCSV = "appid,name,platform,install_dir,size_on_disk,last_updated\n" +
	"440,Team Fortress 2,,C:\\Games\\TF2,2048,1709251200\n" +
	"1207658924,Cyberpunk 2077,GOG,,,\n" +
	",Missing Id,,,,\n" +
	"620,Portal 2,,,,\n"

func TestImport(t *testing.T) {
	store := newTestCatalog(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "software.csv", softwareCSV)
	writeFile(t, dir, "games.csv", gamesCSV)

	report, err := New(store, zap.NewNop()).Import(ctx, Options{Dir: dir})
	require.NoError(t, err)
	assert.False(t, report.Failed())

	assert.Equal(t, 3, report.Software.Rows)
	assert.Equal(t, 2, report.Software.Imported)
	assert.Equal(t, 1, report.Software.Skipped)

	assert.Equal(t, 4, report.Games.Rows)
	assert.Equal(t, 3, report.Games.Imported)
	assert.Equal(t, 1, report.Games.Skipped)

	git, err := store.FindByKey(ctx, DefaultSoftwareSource, "git")
	require.NoError(t, err)
	assert.Equal(t, catalog.TypeApplication, git.Type)
	assert.Equal(t, "The Git Development Community", git.Publisher)

	tf2, err := store.FindByKey(ctx, "Steam", "440")
	require.NoError(t, err)
	assert.Equal(t, catalog.TypeGame, tf2.Type)

	_, err = store.FindByKey(ctx, "GOG", "1207658924")
	assert.NoError(t, err)

	installed, err := store.ListInstalled(ctx, "")
	require.NoError(t, err)
	require.Len(t, installed, 2)
	for _, record := range installed {
		switch record.ReferenceEntry.Name {
		case "Git":
			assert.Equal(t, int64(286720*1024), record.SizeBytes)
			assert.Equal(t, "2.44.0", record.Version)
			require.NotNil(t, record.InstallDate)
			assert.True(t, record.InstallDate.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
		case "Team Fortress 2":
			assert.Equal(t, int64(2048), record.SizeBytes)
			require.NotNil(t, record.InstallDate)
			assert.True(t, record.InstallDate.Equal(time.Unix(1709251200, 0)))
		default:
			t.Fatalf("unexpected installed record for %s", record.ReferenceEntry.Name)
		}
	}

	history, err := store.History(ctx, catalog.EntityReferenceEntry, tf2.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, Actor, *history[0].ChangedBy)
}

func TestImport_SecondRunIsUnchanged(t *testing.T) {
	store := newTestCatalog(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "games.csv", gamesCSV)

	importer := New(store, zap.NewNop())
	_, err := importer.Import(ctx, Options{Dir: dir})
	require.NoError(t, err)
	before, err := store.CurrentVersion(ctx)
	require.NoError(t, err)

	report, err := importer.Import(ctx, Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Games.Unchanged)
	assert.Zero(t, report.Games.Imported)

	after, err := store.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImport_DerivedIDsStayDistinct(t *testing.T) {
	store := newTestCatalog(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "software.csv", "DisplayName,Publisher\n"+
		"网易云音乐,NetEase\n"+
		"C++ Builder,Embarcadero\n"+
		"C Builder,Embarcadero\n"+
		"C# Builder,Borland\n")

	report, err := New(store, nil).Import(ctx, Options{Dir: dir})
	require.NoError(t, err)
	assert.False(t, report.Failed())
	assert.Equal(t, 4, report.Software.Imported)

	entries, total, err := store.List(ctx, catalog.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	ids := make(map[string]string, len(entries))
	for _, entry := range entries {
		ids[entry.ExternalID] = entry.Name
	}
	assert.Len(t, ids, 4)
	assert.Equal(t, "网易云音乐", ids["网易云音乐"])
	assert.Equal(t, "C Builder", ids["c-builder"])
}

func TestImport_MaxGames(t *testing.T) {
	store := newTestCatalog(t)
	dir := t.TempDir()
	writeFile(t, dir, "games.csv", gamesCSV)

	report, err := New(store, zap.NewNop()).Import(context.Background(), Options{Dir: dir, MaxGames: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Games.Rows)
	assert.Equal(t, 2, report.Games.Imported)
	assert.True(t, report.Software.Missing)
	assert.False(t, report.Failed())
}

func TestImport_MissingInput(t *testing.T) {
	store := newTestCatalog(t)

	_, err := New(store, zap.NewNop()).Import(context.Background(), Options{Dir: t.TempDir()})
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestImport_CustomFileNames(t *testing.T) {
	store := newTestCatalog(t)
	dir := t.TempDir()
	writeFile(t, dir, "apps.csv", "name,type\nVisual Studio Code,tool\n")

	report, err := New(store, zap.NewNop()).Import(context.Background(), Options{Dir: dir, SoftwareFile: "apps.csv"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Software.Imported)

	entry, err := store.FindByKey(context.Background(), DefaultSoftwareSource, "visual-studio-code")
	require.NoError(t, err)
	assert.Equal(t, catalog.TypeTool, entry.Type)
}

// failingCatalog rejects writes for one name.
type failingCatalog struct {
	*catalog.Store
	failName string
}

func (f failingCatalog) Upsert(ctx context.Context, source, externalID string, fields catalog.EntryFields, opts ...catalog.WriteOption) (*catalog.ReferenceEntry, bool, error) {
	if fields.Name != nil && *fields.Name == f.failName {
		return nil, false, errors.New("disk full")
	}
	return f.Store.Upsert(ctx, source, externalID, fields, opts...)
}

func TestImport_RowErrorsFailTheRun(t *testing.T) {
	store := newTestCatalog(t)
	dir := t.TempDir()
	writeFile(t, dir, "games.csv", gamesCSV)

	report, err := New(failingCatalog{Store: store, failName: "Portal 2"}, zap.NewNop()).Import(context.Background(), Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Games.Errors)
	assert.Equal(t, 2, report.Games.Imported)
	assert.Equal(t, "row 4: disk full", report.Games.Error)
	assert.True(t, report.Failed())
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, int64(2048), parseSize("2KB"))
	assert.Equal(t, int64(2048), parseSize(" 2048 "))
	assert.Zero(t, parseSize("n/a"))

	assert.Nil(t, parseDate(""))
	assert.Nil(t, parseDate("soon"))
	require.NotNil(t, parseDate("2023-10-05"))
	assert.Equal(t, 2023, parseDate("2023-10-05").Year())
	assert.Equal(t, 2024, parseDate("1709251200").Year())

	columns := headerIndex([]string{"\ufeffDisplay Name", "Install-Location", "display_name"})
	assert.Equal(t, map[string]int{"display_name": 0, "install_location": 1}, columns)
}
