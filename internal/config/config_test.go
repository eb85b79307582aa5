package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToml = `
[development]
host = "localhost"
port = 8080
store_driver = "sqlite"
sqlite_path = "./dev.db"
coach_email = "coach@example.com"
allowed_origins = ["http://localhost:5173"]

[production]
port = 9000
postgres_host = "db"
postgres_db_name = "fitcoach"
coach_email = "coach@example.com"
ai_model = "gpt-4.1"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, testToml)

	dev, err := Load("dev", path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", dev.StoreDriver)
	assert.Equal(t, "./dev.db", dev.SQLitePath)
	assert.Equal(t, []string{"http://localhost:5173"}, dev.AllowedOrigins)
	// defaults
	assert.Equal(t, 24*7, dev.SessionTTLHours)
	assert.Equal(t, "gpt-4o-mini", dev.AIModel)
	assert.Equal(t, "2112", dev.PrometheusMetricsPort)

	prod, err := Load("production", path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", prod.StoreDriver)
	assert.Equal(t, 9000, prod.Port)
	assert.Equal(t, "localhost", prod.Host)
	assert.Equal(t, "gpt-4.1", prod.AIModel)
}

func TestLoad_Errors(t *testing.T) {
	path := writeConfig(t, testToml)

	_, err := Load("staging", path)
	assert.ErrorContains(t, err, "unknown env")

	_, err = Load("dockerdev", path)
	assert.ErrorContains(t, err, "no config section")

	_, err = Load("dev", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := writeConfig(t, "[development]\nstore_driver = \"mongo\"\ncoach_email = \"c@x.com\"\n")
	_, err = Load("dev", bad)
	assert.ErrorContains(t, err, "unknown store_driver")

	noCoach := writeConfig(t, "[development]\nstore_driver = \"sqlite\"\nsqlite_path = \"x.db\"\n")
	_, err = Load("dev", noCoach)
	assert.ErrorContains(t, err, "coach_email")
}

func TestRepoConfigFileLoads(t *testing.T) {
	for _, env := range []string{"development", "dockerdev", "production"} {
		cfg, err := Load(env, "../../config.toml")
		require.NoError(t, err, env)
		assert.Equal(t, env, cfg.Environment)
	}
}
