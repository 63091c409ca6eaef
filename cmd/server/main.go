package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/httpapi"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/retention"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/storage"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/task"
)

const (
	commandUseName              = "server"
	commandShortDescription     = "Run the contact form server"
	commandLongDescription      = "Launch the DSGVO-compliant contact form HTTP server"
	missingConfigurationMessage = "missing required configuration"
	loggerCreationErrorMessage  = "logger"
	logEventListening           = "listening"
	logEventRetentionConfigured = "retention_policy"
	logFieldAddress             = "addr"
	logFieldRetentionMonths     = "retention_months"
	logFieldSweepInterval       = "sweep_interval"

	flagNameApplicationAddress  = "app-addr"
	flagNameDatabaseDriver      = "db-driver"
	flagNameDatabaseDSN         = "db-dsn"
	flagNameAdminAPIKey         = "admin-api-key"
	flagNameCORSOrigin          = "cors-origin"
	flagNameRetentionMonths     = "retention-months"
	flagNameSweepInterval       = "sweep-interval"
	flagUsageApplicationAddress = "address for the HTTP server to listen on"
	flagUsageDatabaseDriver     = "database driver (sqlite or postgres)"
	flagUsageDatabaseDSN        = "database connection string"
	flagUsageAdminAPIKey        = "shared secret required for admin API access"
	flagUsageCORSOrigin         = "origin allowed to call the public API"
	flagUsageRetentionMonths    = "months submissions are retained before the sweep deletes them"
	flagUsageSweepInterval      = "interval between automatic retention sweeps (0 disables)"

	environmentKeyApplicationAddress = "APP_ADDR"
	environmentKeyDatabaseDriver     = "DB_DRIVER"
	environmentKeyDatabaseDSN        = "DB_DSN"
	environmentKeyAdminAPIKey        = "ADMIN_API_KEY"
	environmentKeyCORSOrigin         = "CORS_ORIGIN"
	environmentKeyRetentionMonths    = "DATA_RETENTION_MONTHS"
	environmentKeySweepInterval      = "RETENTION_SWEEP_INTERVAL"

	defaultApplicationAddress = ":8080"
	defaultDatabaseDriver     = storage.DriverNamePostgres
	defaultCORSOrigin         = "*"
	defaultSweepInterval      = 24 * time.Hour

	corsOriginWildcard       = "*"
	corsHeaderContentType    = "Content-Type"
	httpMethodGet            = "GET"
	httpMethodPost           = "POST"
	httpMethodDelete         = "DELETE"
	httpMethodOptions        = "OPTIONS"
	readHeaderTimeoutSeconds = 5

	loggerContextOpenDatabase = "open_db"
	loggerContextAutoMigrate  = "migrate"
	loggerContextServer       = "server"

	unexpectedArgumentsMessage    = "unexpected command arguments"
	commandInitializationFailure  = "failed to configure command"
	flagNotDefinedMessage         = "flag %s not defined"
	environmentConfigurationError = "failed to apply environment configuration"
)

var (
	corsAllowedMethods = []string{httpMethodPost, httpMethodGet, httpMethodDelete, httpMethodOptions}
	corsAllowedHeaders = []string{corsHeaderContentType, httpapi.AdminKeyHeaderName}
	corsExposedHeaders = []string{corsHeaderContentType}
)

// ServerConfig captures configuration needed to run the server.
type ServerConfig struct {
	ApplicationAddress string
	DatabaseDriver     string
	DatabaseDSN        string
	AdminAPIKey        string
	CORSOrigin         string
	RetentionMonths    int
	SweepInterval      time.Duration
}

// DatabaseOpener opens a database connection using the provided configuration.
type DatabaseOpener func(storage.Config) (*gorm.DB, error)

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      DatabaseOpener
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
	}
}

// WithDatabaseOpener overrides the database opener dependency.
func (application *ServerApplication) WithDatabaseOpener(databaseOpener DatabaseOpener) *ServerApplication {
	application.databaseOpener = databaseOpener
	return application
}

// Command builds the Cobra command for the server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	return rootCommand, nil
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	application.configurationLoader.SetDefault(environmentKeyApplicationAddress, defaultApplicationAddress)
	application.configurationLoader.SetDefault(environmentKeyDatabaseDriver, defaultDatabaseDriver)
	application.configurationLoader.SetDefault(environmentKeyDatabaseDSN, "")
	application.configurationLoader.SetDefault(environmentKeyAdminAPIKey, "")
	application.configurationLoader.SetDefault(environmentKeyCORSOrigin, defaultCORSOrigin)
	application.configurationLoader.SetDefault(environmentKeyRetentionMonths, retention.DefaultRetentionMonths)
	application.configurationLoader.SetDefault(environmentKeySweepInterval, defaultSweepInterval)
	application.configurationLoader.AutomaticEnv()

	commandFlags := command.Flags()
	commandFlags.String(flagNameApplicationAddress, defaultApplicationAddress, flagUsageApplicationAddress)
	commandFlags.String(flagNameDatabaseDriver, defaultDatabaseDriver, flagUsageDatabaseDriver)
	commandFlags.String(flagNameDatabaseDSN, "", flagUsageDatabaseDSN)
	commandFlags.String(flagNameAdminAPIKey, "", flagUsageAdminAPIKey)
	commandFlags.String(flagNameCORSOrigin, defaultCORSOrigin, flagUsageCORSOrigin)
	commandFlags.Int(flagNameRetentionMonths, retention.DefaultRetentionMonths, flagUsageRetentionMonths)
	commandFlags.Duration(flagNameSweepInterval, defaultSweepInterval, flagUsageSweepInterval)

	flagBindings := []struct {
		environmentKey string
		flagName       string
	}{
		{environmentKey: environmentKeyApplicationAddress, flagName: flagNameApplicationAddress},
		{environmentKey: environmentKeyDatabaseDriver, flagName: flagNameDatabaseDriver},
		{environmentKey: environmentKeyDatabaseDSN, flagName: flagNameDatabaseDSN},
		{environmentKey: environmentKeyAdminAPIKey, flagName: flagNameAdminAPIKey},
		{environmentKey: environmentKeyCORSOrigin, flagName: flagNameCORSOrigin},
		{environmentKey: environmentKeyRetentionMonths, flagName: flagNameRetentionMonths},
		{environmentKey: environmentKeySweepInterval, flagName: flagNameSweepInterval},
	}

	for _, binding := range flagBindings {
		if bindErr := application.bindFlag(commandFlags, binding.environmentKey, binding.flagName); bindErr != nil {
			return bindErr
		}
		if environmentErr := application.applyEnvironmentConfiguration(commandFlags, binding.environmentKey, binding.flagName); environmentErr != nil {
			return environmentErr
		}
	}

	if markErr := command.MarkFlagRequired(flagNameDatabaseDSN); markErr != nil {
		return markErr
	}

	if markErr := command.MarkFlagRequired(flagNameAdminAPIKey); markErr != nil {
		return markErr
	}

	return nil
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentConfigurationError, setErr)
	}

	return nil
}

func (application *ServerApplication) loadConfiguration() ServerConfig {
	return ServerConfig{
		ApplicationAddress: application.configurationLoader.GetString(environmentKeyApplicationAddress),
		DatabaseDriver:     strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDriver)),
		DatabaseDSN:        strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDSN)),
		AdminAPIKey:        strings.TrimSpace(application.configurationLoader.GetString(environmentKeyAdminAPIKey)),
		CORSOrigin:         strings.TrimSpace(application.configurationLoader.GetString(environmentKeyCORSOrigin)),
		RetentionMonths:    application.configurationLoader.GetInt(environmentKeyRetentionMonths),
		SweepInterval:      application.configurationLoader.GetDuration(environmentKeySweepInterval),
	}
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig := application.loadConfiguration()

	if validationErr := application.ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return validationErr
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	database, databaseErr := application.databaseOpener(storage.Config{
		DriverName:     serverConfig.DatabaseDriver,
		DataSourceName: serverConfig.DatabaseDSN,
	})
	if databaseErr != nil {
		logger.Fatal(loggerContextOpenDatabase, zap.Error(databaseErr))
	}

	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		logger.Fatal(loggerContextAutoMigrate, zap.Error(migrateErr))
	}

	submissionStore := storage.NewSubmissionStore(database)
	retentionPolicy := retention.NewPolicy(submissionStore, logger, serverConfig.RetentionMonths)

	logger.Info(logEventRetentionConfigured,
		zap.Int(logFieldRetentionMonths, retentionPolicy.RetentionMonths()),
		zap.Duration(logFieldSweepInterval, serverConfig.SweepInterval),
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(logger))
	router.Use(cors.New(buildCORSConfig(serverConfig.CORSOrigin)))

	contactHandlers := httpapi.NewContactHandlers(submissionStore, retentionPolicy, logger)
	registerRoutes(router, contactHandlers, serverConfig.AdminAPIKey)

	if serverConfig.SweepInterval > 0 {
		retentionScheduler := task.NewScheduler(serverConfig.SweepInterval, func(sweepContext context.Context) {
			_, _ = retentionPolicy.Sweep(sweepContext)
		})
		retentionScheduler.Start(context.Background())
		defer retentionScheduler.Stop()
	}

	httpServer := &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress))
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.Fatal(loggerContextServer, zap.Error(serveErr))
	}

	return nil
}

func buildCORSConfig(corsOrigin string) cors.Config {
	if corsOrigin == "" {
		corsOrigin = corsOriginWildcard
	}
	return cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     corsAllowedMethods,
		AllowHeaders:     corsAllowedHeaders,
		ExposeHeaders:    corsExposedHeaders,
		AllowCredentials: corsOrigin != corsOriginWildcard,
		MaxAge:           12 * time.Hour,
	}
}

func (application *ServerApplication) ensureRequiredConfiguration(configuration ServerConfig) error {
	var missingParameters []string

	if configuration.DatabaseDSN == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDSN)
	}

	if configuration.AdminAPIKey == "" {
		missingParameters = append(missingParameters, flagNameAdminAPIKey)
	}

	if len(missingParameters) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
}

func main() {
	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
