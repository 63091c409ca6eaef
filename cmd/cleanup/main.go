package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/retention"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/storage"
)

const (
	commandUseName          = "cleanup"
	commandShortDescription = "Delete contact submissions past the retention window"
	commandLongDescription  = "Run a single retention sweep and exit; intended for cron or operator use"

	environmentKeyDatabaseDriver  = "DB_DRIVER"
	environmentKeyDatabaseDSN     = "DB_DSN"
	environmentKeyRetentionMonths = "DATA_RETENTION_MONTHS"

	defaultDatabaseDriver = storage.DriverNamePostgres

	missingConfigurationMessage = "missing required configuration: DB_DSN"
	loggerCreationErrorMessage  = "logger"
	cleanupFailureMessage       = "cleanup failed"

	logEventSweepStarted  = "cleanup_started"
	logEventSweepFinished = "cleanup_finished"
	logFieldRetention     = "retention_months"
	logFieldDeletedCount  = "deleted_count"
)

// CleanupApplication constructs and executes the one-shot retention sweep command.
type CleanupApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      func(storage.Config) (*gorm.DB, error)
}

// NewCleanupApplication creates a CleanupApplication with default dependencies.
func NewCleanupApplication() *CleanupApplication {
	return &CleanupApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
	}
}

// Command builds the Cobra command for the cleanup job.
func (application *CleanupApplication) Command() *cobra.Command {
	application.configurationLoader.SetDefault(environmentKeyDatabaseDriver, defaultDatabaseDriver)
	application.configurationLoader.SetDefault(environmentKeyDatabaseDSN, "")
	application.configurationLoader.SetDefault(environmentKeyRetentionMonths, retention.DefaultRetentionMonths)
	application.configurationLoader.AutomaticEnv()

	return &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}
}

func (application *CleanupApplication) runCommand(command *cobra.Command, arguments []string) error {
	databaseDSN := strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDSN))
	if databaseDSN == "" {
		return errors.New(missingConfigurationMessage)
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	database, databaseErr := application.databaseOpener(storage.Config{
		DriverName:     strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDriver)),
		DataSourceName: databaseDSN,
	})
	if databaseErr != nil {
		return databaseErr
	}

	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		return migrateErr
	}

	submissionStore := storage.NewSubmissionStore(database)
	retentionPolicy := retention.NewPolicy(submissionStore, logger, application.configurationLoader.GetInt(environmentKeyRetentionMonths))

	logger.Info(logEventSweepStarted, zap.Int(logFieldRetention, retentionPolicy.RetentionMonths()))

	sweepContext := command.Context()
	if sweepContext == nil {
		sweepContext = context.Background()
	}

	deletedCount, sweepErr := retentionPolicy.Sweep(sweepContext)
	if sweepErr != nil {
		return sweepErr
	}

	logger.Info(logEventSweepFinished,
		zap.Int64(logFieldDeletedCount, deletedCount),
		zap.Int(logFieldRetention, retentionPolicy.RetentionMonths()),
	)
	return nil
}

func main() {
	application := NewCleanupApplication()
	rootCommand := application.Command()

	if executeErr := rootCommand.ExecuteContext(context.Background()); executeErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cleanupFailureMessage, executeErr)
		os.Exit(1)
	}
}
