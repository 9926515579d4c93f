package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")

	cfg, err := LoadFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 24, cfg.JWT.ExpiryHours)
	assert.Equal(t, "token", cfg.Auth.CookieName)
	assert.Equal(t, "appointments.events", cfg.Redis.Channel)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFileEnvOverride(t *testing.T) {
	path := writeConfig(t, "database:\n  host: filehost\n  name: clinic\n")
	t.Setenv("CLINIC_DATABASE_HOST", "envhost")
	t.Setenv("CLINIC_AUTH_STRICT_PASSWORDS", "true")

	cfg, err := LoadFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, "envhost", cfg.Database.Host)
	assert.Equal(t, "clinic", cfg.Database.Name)
	assert.True(t, cfg.Auth.StrictPasswords)
}

func TestLoadFileProductionNeedsSecret(t *testing.T) {
	path := writeConfig(t, "env: production\n")

	_, err := LoadFile(path, "")
	assert.ErrorContains(t, err, "jwt.secret")

	path = writeConfig(t, "env: production\njwt:\n  secret: s3cret-value\n")
	cfg, err := LoadFile(path, "")
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadFileFallbackEnv(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: s3cret-value\n")

	cfg, err := LoadFile(path, EnvProduction)
	require.NoError(t, err)
	assert.Equal(t, EnvProduction, cfg.Env)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), "")
	assert.Error(t, err)
}

func TestValidateMailRecipients(t *testing.T) {
	path := writeConfig(t, "mail:\n  host: smtp.example.com\n")
	_, err := LoadFile(path, "")
	assert.ErrorContains(t, err, "mail.to")
}
