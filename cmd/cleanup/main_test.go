package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/storage"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/testutil"
)

func TestCleanupCommandRequiresDatabaseDSN(t *testing.T) {
	application := NewCleanupApplication()
	command := application.Command()

	runErr := application.runCommand(command, nil)
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "DB_DSN")
}

func TestCleanupCommandSweepsExpiredSubmissions(t *testing.T) {
	sqliteDatabase := testutil.NewSQLiteTestDatabase(t)

	var sweptDatabase *gorm.DB
	application := NewCleanupApplication()
	application.databaseOpener = func(configuration storage.Config) (*gorm.DB, error) {
		database, openErr := storage.OpenDatabase(configuration)
		if openErr != nil {
			return nil, openErr
		}
		sweptDatabase = database

		// Seed one expired and one fresh record before the sweep runs.
		if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
			return nil, migrateErr
		}
		now := time.Now().UTC()
		expired := model.Submission{
			ID:           storage.NewID(),
			Name:         "Expired Record",
			Email:        "expired@example.com",
			Message:      "A sufficiently long expired message.",
			ConsentGiven: true,
			SubmittedAt:  now.AddDate(0, -7, 0),
		}
		fresh := model.Submission{
			ID:           storage.NewID(),
			Name:         "Fresh Record",
			Email:        "fresh@example.com",
			Message:      "A sufficiently long fresh message.",
			ConsentGiven: true,
			SubmittedAt:  now.AddDate(0, -1, 0),
		}
		if seedErr := database.Create(&expired).Error; seedErr != nil {
			return nil, seedErr
		}
		if seedErr := database.Create(&fresh).Error; seedErr != nil {
			return nil, seedErr
		}
		return database, nil
	}

	t.Setenv(environmentKeyDatabaseDriver, storage.DriverNameSQLite)
	t.Setenv(environmentKeyDatabaseDSN, sqliteDatabase.DataSourceName())

	command := application.Command()
	require.NoError(t, application.runCommand(command, nil))

	var remaining []model.Submission
	require.NoError(t, sweptDatabase.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, "fresh@example.com", remaining[0].Email)
}
