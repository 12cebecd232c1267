package database

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns_SQLite(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec(`CREATE TABLE installed_records (
		id INTEGER PRIMARY KEY,
		platform VARCHAR(64),
		install_location VARCHAR(1024) NOT NULL,
		size_bytes INTEGER
	)`).Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "installed_records")
	require.NoError(t, err)
	require.Len(t, columns, 4)

	byName := make(map[string]ColumnInfo)
	for _, col := range columns {
		byName[col.Field] = col
	}

	assert.Equal(t, "integer", byName["id"].Type)
	assert.Equal(t, "PRI", byName["id"].Key)
	assert.Equal(t, "varchar(64)", byName["platform"].Type)
	assert.Equal(t, "YES", byName["platform"].Null)
	assert.Equal(t, "NO", byName["install_location"].Null)

	assert.True(t, HasTable(db, "installed_records"))
	assert.False(t, HasTable(db, "reference_entries"))

	// PRAGMA table_info yields no rows for an unknown table.
	cols, err := GetTableColumns(db, "reference_entries")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("ID", "BIGINT UNSIGNED", "NO", "PRI", nil, "auto_increment").
		AddRow("Name", "VARCHAR(255)", "NO", "", nil, "")
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `reference_entries`")).WillReturnRows(rows)

	columns, err := GetTableColumns(db, "reference_entries")
	require.NoError(t, err)
	require.Len(t, columns, 2)

	assert.Equal(t, "id", columns[0].Field)
	assert.Equal(t, "bigint unsigned", columns[0].Type)
	assert.Equal(t, "auto_increment", columns[0].Extra)
	assert.Nil(t, columns[0].Default)
	assert.Equal(t, "varchar(255)", columns[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}
