package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deduction-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, config.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.SeedPresets)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("PG_DSN", "postgres://localhost/payroll")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RUN_CONCURRENCY", "4")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("SEED_PRESETS", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppAddr)
	assert.Equal(t, config.DriverPostgres, cfg.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 4, cfg.RunConcurrency)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.SeedPresets)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{"postgres without dsn", config.Config{DBDriver: "postgres"}, "PG_DSN"},
		{"sqlite without path", config.Config{DBDriver: "sqlite"}, "DB_PATH"},
		{"unknown driver", config.Config{DBDriver: "mysql"}, "unknown DB_DRIVER"},
		{"negative concurrency", config.Config{DBDriver: "sqlite", DBPath: "x.db", RunConcurrency: -1}, "RUN_CONCURRENCY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_MemoryDriver(t *testing.T) {
	cfg := config.Config{DBDriver: " Memory "}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.DriverMemory, cfg.DBDriver)
}
