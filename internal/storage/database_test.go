package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/storage"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/testutil"
)

func TestOpenDatabaseRejectsMissingDriverName(t *testing.T) {
	_, openErr := storage.OpenDatabase(storage.Config{DataSourceName: "file:test?mode=memory"})
	require.ErrorIs(t, openErr, storage.ErrMissingDatabaseDriverName)
}

func TestOpenDatabaseRejectsUnsupportedDriver(t *testing.T) {
	_, openErr := storage.OpenDatabase(storage.Config{DriverName: "oracle", DataSourceName: "dsn"})
	require.ErrorIs(t, openErr, storage.ErrUnsupportedDatabaseDriver)
}

func TestOpenDatabaseRejectsMissingDataSourceName(t *testing.T) {
	_, openErr := storage.OpenDatabase(storage.Config{DriverName: storage.DriverNameSQLite})
	require.ErrorIs(t, openErr, storage.ErrMissingDataSourceName)

	_, openErr = storage.OpenDatabase(storage.Config{DriverName: storage.DriverNamePostgres})
	require.ErrorIs(t, openErr, storage.ErrMissingDataSourceName)
}

func TestOpenDatabaseOpensSQLiteAndMigrates(t *testing.T) {
	sqliteDatabase := testutil.NewSQLiteTestDatabase(t)
	database, openErr := storage.OpenDatabase(sqliteDatabase.Configuration())
	require.NoError(t, openErr)
	require.NoError(t, storage.AutoMigrate(database))
	require.True(t, database.Migrator().HasTable("submissions"))
}

func TestNewIDReturnsUniqueValues(t *testing.T) {
	require.NotEqual(t, storage.NewID(), storage.NewID())
}
