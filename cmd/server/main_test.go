package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/retention"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/storage"
)

func TestEnsureRequiredConfigurationReportsAllMissingParameters(t *testing.T) {
	application := NewServerApplication()

	validationErr := application.ensureRequiredConfiguration(ServerConfig{})
	require.Error(t, validationErr)
	require.Contains(t, validationErr.Error(), flagNameDatabaseDSN)
	require.Contains(t, validationErr.Error(), flagNameAdminAPIKey)
}

func TestEnsureRequiredConfigurationAcceptsCompleteConfiguration(t *testing.T) {
	application := NewServerApplication()

	validationErr := application.ensureRequiredConfiguration(ServerConfig{
		DatabaseDSN: "file:contacts.db",
		AdminAPIKey: "secret",
	})
	require.NoError(t, validationErr)
}

func TestConfigurationDefaults(t *testing.T) {
	application := NewServerApplication()
	command, commandErr := application.Command()
	require.NoError(t, commandErr)
	require.NotNil(t, command)

	configuration := application.loadConfiguration()
	require.Equal(t, defaultApplicationAddress, configuration.ApplicationAddress)
	require.Equal(t, storage.DriverNamePostgres, configuration.DatabaseDriver)
	require.Equal(t, defaultCORSOrigin, configuration.CORSOrigin)
	require.Equal(t, retention.DefaultRetentionMonths, configuration.RetentionMonths)
	require.Equal(t, defaultSweepInterval, configuration.SweepInterval)
}

func TestConfigurationReadsEnvironment(t *testing.T) {
	t.Setenv(environmentKeyApplicationAddress, ":9090")
	t.Setenv(environmentKeyDatabaseDriver, storage.DriverNameSQLite)
	t.Setenv(environmentKeyDatabaseDSN, "file:contacts.db?mode=memory")
	t.Setenv(environmentKeyAdminAPIKey, "env-secret")
	t.Setenv(environmentKeyRetentionMonths, "12")
	t.Setenv(environmentKeySweepInterval, "1h")

	application := NewServerApplication()
	command, commandErr := application.Command()
	require.NoError(t, commandErr)
	require.NotNil(t, command)

	configuration := application.loadConfiguration()
	require.Equal(t, ":9090", configuration.ApplicationAddress)
	require.Equal(t, storage.DriverNameSQLite, configuration.DatabaseDriver)
	require.Equal(t, "file:contacts.db?mode=memory", configuration.DatabaseDSN)
	require.Equal(t, "env-secret", configuration.AdminAPIKey)
	require.Equal(t, 12, configuration.RetentionMonths)
	require.Equal(t, time.Hour, configuration.SweepInterval)
}

func TestCommandRejectsUnexpectedArguments(t *testing.T) {
	application := NewServerApplication()
	command, commandErr := application.Command()
	require.NoError(t, commandErr)

	runErr := application.runCommand(command, []string{"extra"})
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), unexpectedArgumentsMessage)
}

func TestBuildCORSConfig(t *testing.T) {
	wildcardConfig := buildCORSConfig("*")
	require.Equal(t, []string{"*"}, wildcardConfig.AllowOrigins)
	require.False(t, wildcardConfig.AllowCredentials)

	originConfig := buildCORSConfig("https://example.com")
	require.Equal(t, []string{"https://example.com"}, originConfig.AllowOrigins)
	require.True(t, originConfig.AllowCredentials)

	emptyConfig := buildCORSConfig("")
	require.Equal(t, []string{"*"}, emptyConfig.AllowOrigins)
	require.False(t, emptyConfig.AllowCredentials)
}
