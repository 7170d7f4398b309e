package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func Test_parseConfig_Defaults(t *testing.T) {
	settings, err := parseConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, 4000, settings.port)
	assert.Equal(t, "development", settings.environment)
	assert.Equal(t, "postgres", settings.db.driver)
	assert.Equal(t, 25, settings.db.maxOpenConns)
	assert.Equal(t, 15*time.Minute, settings.db.maxIdleTime)
	assert.True(t, settings.db.bootstrap)
	assert.Equal(t, 2.0, settings.limiter.rps)
	assert.Equal(t, 4, settings.limiter.burst)
	assert.True(t, settings.limiter.enabled)
}

func Test_parseConfig_FileOverlay(t *testing.T) {
	path := writeConfigFile(t, `
port: 8080
env: production
db:
  driver: memory
  max_idle_time: 5m
  bootstrap: false
limiter:
  rps: 10
  enabled: false
`)

	settings, err := parseConfig([]string{"-config", path})
	require.NoError(t, err)

	assert.Equal(t, 8080, settings.port)
	assert.Equal(t, "production", settings.environment)
	assert.Equal(t, "memory", settings.db.driver)
	assert.Equal(t, 5*time.Minute, settings.db.maxIdleTime)
	assert.False(t, settings.db.bootstrap)
	assert.Equal(t, 10.0, settings.limiter.rps)
	assert.False(t, settings.limiter.enabled)

	// Absent keys keep their flag defaults.
	assert.Equal(t, 25, settings.db.maxOpenConns)
	assert.Equal(t, 4, settings.limiter.burst)
}

func Test_parseConfig_ExplicitFlagWins(t *testing.T) {
	path := writeConfigFile(t, "port: 8080\nenv: production\n")

	settings, err := parseConfig([]string{"-port", "9000", "-config", path})
	require.NoError(t, err)

	assert.Equal(t, 9000, settings.port)
	assert.Equal(t, "production", settings.environment)
}

func Test_parseConfig_Errors(t *testing.T) {
	_, err := parseConfig([]string{"-db-driver", "sqlite"})
	assert.ErrorContains(t, err, "sqlite")

	_, err = parseConfig([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorContains(t, err, "read config file")

	path := writeConfigFile(t, "port: [not, a, number]\n")
	_, err = parseConfig([]string{"-config", path})
	assert.ErrorContains(t, err, "parse config file")

	_, err = parseConfig([]string{"-port", "many"})
	assert.Error(t, err)
}
