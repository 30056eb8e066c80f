package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/flatwise.db", cfg.Database.Path)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiry())
	assert.Equal(t, "flatwise", cfg.JWT.Issuer)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSecret)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flatwise.yaml")
	yaml := `
server:
  port: 9000
database:
  path: /tmp/test.db
jwt:
  secret: from-file
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("FLATWISE_JWT_SECRET", "from-env")
	t.Setenv("FLATWISE_SECURITY_BCRYPT_COST", "4")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, ":9000", cfg.Server.Addr())
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 4, cfg.Security.BcryptCost)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 8080},
		JWT:    JWTConfig{Secret: "s", ExpireMinutes: 0},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.ExpireMinutes = 5
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}
