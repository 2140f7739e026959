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

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 800, cfg.OpenAI.MaxTokens)
	assert.InDelta(t, 0.3, cfg.OpenAI.Temperature, 0.0001)
	assert.Equal(t, 20*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, 10000, cfg.Annotation.MaxInputLength)
	assert.Equal(t, "OpenAI", cfg.Annotation.ProviderName)
	assert.Equal(t, time.Hour, cfg.LiveKit.TokenTTL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLThenEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
server:
  port: 8080
openai:
  model: gpt-4o-mini
  timeout: 5s
annotation:
  maxInputLength: 500
storage:
  driver: sqlite
  dsn: file:test.db
`)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 5*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, 500, cfg.Annotation.MaxInputLength)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DatabaseURLSelectsPostgres(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/fanno?sslmode=disable")

	cfg, err := Load("missing.yaml")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@localhost/fanno?sslmode=disable", cfg.StorageDSN())
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, "server: [unterminated")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "redis" },
			wantErr: "unknown storage driver",
		},
		{
			name:    "sql driver without dsn",
			mutate:  func(c *Config) { c.Storage.Driver = "mysql" },
			wantErr: "requires a dsn",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "non-positive max input",
			mutate:  func(c *Config) { c.Annotation.MaxInputLength = -1 },
			wantErr: "maxInputLength",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.applyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStorageDSN_BuiltFromDatabaseBlock(t *testing.T) {
	var cfg Config
	cfg.Storage.Driver = "mysql"
	cfg.Database.Host = "db"
	cfg.Database.Port = 3306
	cfg.Database.User = "fanno"
	cfg.Database.Password = "secret"
	cfg.Database.Name = "platform"

	assert.Equal(t, "fanno:secret@tcp(db:3306)/platform?parseTime=true&charset=utf8mb4&loc=UTC", cfg.StorageDSN())

	cfg.Storage.Driver = "postgres"
	cfg.Database.Port = 5432
	assert.Equal(t, "host=db port=5432 user=fanno password=secret dbname=platform sslmode=disable", cfg.StorageDSN())
}
