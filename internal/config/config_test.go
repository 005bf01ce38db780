package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blues/artdrop/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, config.DefaultOwner, cfg.Ledger.Owner)
	assert.True(t, cfg.Ledger.DevMode)
	assert.False(t, cfg.Chain.Enabled)
	assert.Equal(t, 500, cfg.Task.BatchSize)
	assert.Equal(t, 8, cfg.Task.Workers)
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=artdrop sslmode=disable", cfg.Database.DSN())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: "9090"
database:
  dbname: gallery
chain:
  enabled: true
  registry: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
  start_block: 12
log:
  level: debug
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARTDROP_DATABASE_HOST", "db.internal")

	cfg := config.Load(path)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "gallery", cfg.Database.DBName)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.True(t, cfg.Chain.Enabled)
	assert.Equal(t, uint64(12), cfg.Chain.StartBlock)
	assert.Equal(t, "debug", cfg.Log.GetLevel())
}
