package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, dir string) *Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := load(t, t.TempDir())

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "3000", cfg.App.HTTPPort)
	assert.Equal(t, QueueMemory, cfg.Notify.Queue)
	assert.Equal(t, 3, cfg.Notify.MaxAttempts)
	assert.Equal(t, 10, cfg.Notify.SendTimeoutSeconds)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Empty(t, cfg.SMTP.Host)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte("HTTP_PORT=4000\nNOTIFY_QUEUE=redis\n"), 0o600))
	t.Setenv("HTTP_PORT", "5000")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PASSWORD", "secret")

	cfg := load(t, dir)

	assert.Equal(t, "5000", cfg.App.HTTPPort)
	assert.Equal(t, QueueRedis, cfg.Notify.Queue)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, "secret", cfg.SMTP.Password)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SMTP_USERNAME=mailer@example.com\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SMTP_USERNAME") })

	cfg := load(t, dir)

	assert.Equal(t, "mailer@example.com", cfg.SMTP.Username)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.DB.Driver = "mongodb" },
			wantErr: `DB_DRIVER "mongodb" is not supported`,
		},
		{
			name:    "unknown queue",
			mutate:  func(c *Config) { c.Notify.Queue = "kafka" },
			wantErr: `NOTIFY_QUEUE "kafka" is not supported`,
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Notify.MaxAttempts = 0 },
			wantErr: "NOTIFY_MAX_ATTEMPTS must be positive",
		},
		{
			name:    "amqp without queue",
			mutate:  func(c *Config) { c.Notify.Queue = QueueAMQP; c.AMQP.Queue = "" },
			wantErr: "AMQP_QUEUE is required",
		},
		{
			name:    "smtp host without port",
			mutate:  func(c *Config) { c.SMTP.Host = "smtp.example.com"; c.SMTP.Port = 0 },
			wantErr: "SMTP_PORT must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := load(t, t.TempDir())
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Driver: DriverPostgres, Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable", db.DSN())

	db.Driver = DriverMySQL
	db.Port = "3306"
	assert.Equal(t, "u:p@tcp(h:3306)/n?charset=utf8mb4&parseTime=True&loc=UTC", db.DSN())

	db.Driver = DriverSQLite
	assert.Equal(t, "n.db", db.DSN())

	db.URL = "file::memory:"
	assert.Equal(t, "file::memory:", db.DSN())
}
