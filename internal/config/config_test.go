package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, 24*time.Hour, cfg.Guide.RetentionWindow())
	assert.Equal(t, time.Hour, cfg.Guide.SweepInterval())
	assert.Contains(t, cfg.Guide.Languages, "en")
	assert.Contains(t, cfg.DSN(), "tcp(127.0.0.1:3306)")
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8080
env: production
database:
  dsn: "user:pass@tcp(db:3306)/berea"
guide:
  retention_hours: 48
  purge_orphans: true
  languages: ["EN", " Es "]
`), 0o644))

	t.Setenv("BEREA_PORT", "9090")
	t.Setenv("BEREA_JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port, "env overrides YAML")
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "user:pass@tcp(db:3306)/berea", cfg.DSN())
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 48*time.Hour, cfg.Guide.RetentionWindow())
	assert.True(t, cfg.Guide.PurgeOrphans)
	assert.Equal(t, []string{"en", "es"}, cfg.Guide.Languages)
}
