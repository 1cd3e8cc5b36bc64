package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable applyEnv reads so the host environment
// cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "GIN_MODE", "DATABASE_PATH", "ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "TO_EMAIL", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, time.Second, cfg.Contact.SimulatedDelay)
	assert.Equal(t, 365*24*time.Hour, cfg.Visitors.Retention)
	assert.True(t, cfg.Migrations.ResetExperience)
	assert.Equal(t, DefaultAdminUsername, cfg.AdminUsername())
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_TEST_SMTP_PASS", "s3cret")
	path := writeFile(t, "folio.yaml", `
server:
  addr: "127.0.0.1:9000"
  mode: release
database:
  path: /tmp/folio.db
admin:
  username: owner
  password: hunter22
smtp:
  user: me@example.com
  password: ${FOLIO_TEST_SMTP_PASS}
contact:
  simulated_delay: 250ms
migrations:
  reset_experience: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "/tmp/folio.db", cfg.Database.Path)
	assert.Equal(t, "owner", cfg.AdminUsername())
	assert.Equal(t, "s3cret", cfg.SMTP.Password)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 250*time.Millisecond, cfg.Contact.SimulatedDelay)
	assert.False(t, cfg.Migrations.ResetExperience)
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "folio.toml", `
[server]
addr = ":7000"

[visitors]
enabled = false
retention = "720h"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.False(t, cfg.Visitors.Enabled)
	assert.Equal(t, 720*time.Hour, cfg.Visitors.Retention)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("ADMIN_USERNAME", "env-owner")
	path := writeFile(t, "folio.yml", "server:\n  addr: \":9999\"\nadmin:\n  username: file-owner\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "env-owner", cfg.AdminUsername())
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown extension", "folio.json", "{}", "unsupported config format"},
		{"bad duration", "folio.yaml", "contact:\n  simulated_delay: soon\n", "simulated_delay"},
		{"bad mode", "folio.yaml", "server:\n  mode: turbo\n", "server.mode"},
		{"release without password", "folio.yaml", "server:\n  mode: release\n", "admin password is required"},
		{"malformed yaml", "folio.yaml", "server: [", "parsing config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDevDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	assert.Len(t, cfg.DevDefaults(), 3)

	cfg.Admin = AdminConfig{Username: "u", PasswordHash: "$2a$10$x"}
	cfg.SMTP.User, cfg.SMTP.Password = "u", "p"
	assert.Empty(t, cfg.DevDefaults())
}
