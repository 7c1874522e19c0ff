package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 3, cfg.Projects.PoRRequirement)
	assert.Equal(t, 15000.0, cfg.Projects.DefaultFundingGoal)
	assert.Equal(t, "0x1A2B...C3D4", cfg.Wallet.MockAccount)
	assert.Len(t, cfg.Creation.StepDelays, 3)
	assert.Equal(t, 5*time.Second, cfg.Notifications.ToastTTL)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": 9090},
		"projects": {"por_requirement": 5}
	}`), 0o600))

	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("ELASTICSEARCH_URLS", "http://es1:9200,http://es2:9200")
	t.Setenv("ARCHIVE_GRACE_PERIOD", "720h")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Projects.PoRRequirement)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.Search.ElasticAddresses)
	assert.Equal(t, 720*time.Hour, cfg.Lifecycle.ArchiveGracePeriod)
	assert.Equal(t, "0.0.0.0:9191", cfg.Server.GetServerAddr())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server":`), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDatabaseURL(t *testing.T) {
	db := DatabaseConfig{User: "cairn", Password: "pw", Host: "db", Port: 5432, DBName: "portal", SSLMode: "disable"}
	assert.Equal(t, "postgres://cairn:pw@db:5432/portal?sslmode=disable", db.GetDatabaseURL())
}
