package checks

import (
	"testing"

	"catalog-manager/core/database"
	"catalog-manager/feature/catalog"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, catalog.Migrate(db))
	return db
}

func TestCheckSchema_NilDB(t *testing.T) {
	report, err := CheckSchema(nil, catalog.Models()...)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckSchema_NotAModel(t *testing.T) {
	db, _ := setupMockDB(t)
	_, err := CheckSchema(db, "reference_entries")
	assert.Error(t, err)
}

func TestCheckSchema_MySQLMissingColumns(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment")
	rows.AddRow("name", "varchar(255)", "NO", "", nil, "")
	rows.AddRow("external_id", "varchar(191)", "NO", "MUL", nil, "")

	mock.ExpectQuery("SHOW COLUMNS FROM `reference_entries`").WillReturnRows(rows)

	report, err := CheckSchema(db, catalog.ReferenceEntry{})
	require.NoError(t, err)
	assert.Equal(t, "mysql", report.Driver)
	assert.False(t, report.Matched)

	tbl, ok := report.Tables["reference_entries"]
	require.True(t, ok)
	assert.Equal(t, "error", tbl.Status)
	assert.Contains(t, tbl.MissingColumns, "source")
	assert.Contains(t, tbl.MissingColumns, "metadata_json")
	assert.NotContains(t, tbl.MissingColumns, "name")
	assert.Empty(t, tbl.TypeMismatches)
}

func TestCheckSchema_MySQLTypeMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "int", "NO", "PRI", nil, "")
	rows.AddRow("current_version", "bigint", "NO", "", nil, "")
	rows.AddRow("updated_at", "datetime(3)", "NO", "", nil, "")

	mock.ExpectQuery("SHOW COLUMNS FROM `catalog_versions`").WillReturnRows(rows)

	rows = sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "bigint unsigned", "NO", "PRI", nil, "")
	rows.AddRow("entity_type", "int(11)", "NO", "", nil, "")

	mock.ExpectQuery("SHOW COLUMNS FROM `change_log`").WillReturnRows(rows)

	report, err := CheckSchema(db, &catalog.CatalogVersion{}, &catalog.ChangeLog{})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, "ok", report.Tables["catalog_versions"].Status)
	assert.Contains(t, report.Tables["change_log"].TypeMismatches, "entity_type: expected varchar(64), got int(11)")
}

func TestCheckSchema_SQLiteMigrated(t *testing.T) {
	db := setupSQLite(t)

	report, err := CheckSchema(db, catalog.Models()...)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", report.Driver)
	assert.True(t, report.Matched, "%+v", report.Tables)
	assert.Len(t, report.Tables, 4)
}

func TestCheckSchema_SQLiteMissingTable(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.Migrator().DropTable("installed_records"))

	report, err := CheckSchema(db, catalog.Models()...)
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, "missing", report.Tables["installed_records"].Status)
	assert.Equal(t, "ok", report.Tables["reference_entries"].Status)
}

func TestParseGormTags(t *testing.T) {
	assert.Equal(t, "id", parseGormColumn("column:id;primaryKey"))
	assert.Equal(t, "name", parseGormColumn("primaryKey;column:name;type:varchar(255)"))
	assert.Equal(t, "varchar(255)", parseGormType("column:name;type:varchar(255)"))
	assert.Equal(t, "", parseGormType("column:id"))
	assert.Equal(t, "", parseGormColumn("foreignKey:ReferenceEntryID;constraint:OnDelete:CASCADE"))
}
