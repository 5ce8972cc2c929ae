package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsAndEnvOverride(t *testing.T) {
	p := writeYAML(t, `
jwt:
  secret: from-file
auth:
  adminEmails: [Boss@Example.com]
`)
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_APP_HTTP_PORT", "9999")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, 9999, c.App.HTTP.Port)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "none", c.Storage.Driver)
	assert.Equal(t, 8, c.Storage.MaxImageMB)
	assert.Equal(t, "recipe-share", c.JWT.Issuer)
	assert.Equal(t, 24*60, c.JWT.AccessTokenTTLMin)
	assert.EqualValues(t, 512, c.App.HTTP.MaxConcurrency)
	assert.True(t, c.Reconcile.Enabled)
	assert.True(t, c.IsAdminEmail("boss@example.com"))
	assert.False(t, c.IsAdminEmail("someone@example.com"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeYAML(t, "app:\n  env: dev\n"))
	assert.ErrorContains(t, err, "jwt.secret is required")

	_, err = Load(writeYAML(t, "app:\n  env: prod\njwt:\n  secret: short\n"))
	assert.ErrorContains(t, err, "at least 32 bytes")

	_, err = Load(writeYAML(t, "jwt:\n  secret: x\nstorage:\n  driver: ftp\n"))
	assert.ErrorContains(t, err, "storage.driver")
}

func TestLoad_LocalConfig(t *testing.T) {
	c, err := Load("../../../configs/config.local.yaml")
	require.NoError(t, err)
	assert.Equal(t, "minio", c.Storage.Driver)
	assert.True(t, c.IsAdminEmail("admin@example.com"))
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, c.App.HTTP.CORSOrigins)
}
