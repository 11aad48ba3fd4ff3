package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/inventory/internal/db"
)

func validConfig() *Config {
	return &Config{
		DBDriver:        db.DriverSQLite,
		DatabaseURL:     "file::memory:",
		JWTSecret:       []byte("access"),
		RefreshSecret:   []byte("refresh"),
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		DefaultPageSize: 10,
		MaxPageSize:     100,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "postgres driver", mutate: func(c *Config) { c.DBDriver = db.DriverPostgres }},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWTSecret = nil }, wantErr: "JWT_SECRET"},
		{name: "missing refresh secret", mutate: func(c *Config) { c.RefreshSecret = nil }, wantErr: "REFRESH_SECRET"},
		{name: "equal secrets", mutate: func(c *Config) { c.RefreshSecret = []byte("access") }, wantErr: "must differ"},
		{name: "missing database url", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "DATABASE_URL"},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mongo" }, wantErr: "DB_DRIVER"},
		{name: "default above max", mutate: func(c *Config) { c.DefaultPageSize = 500 }, wantErr: "DEFAULT_PAGE_SIZE"},
		{name: "zero max", mutate: func(c *Config) { c.MaxPageSize = 0 }, wantErr: "MAX_PAGE_SIZE"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("INV_TEST_STR", "value")
	t.Setenv("INV_TEST_INT", "42")
	t.Setenv("INV_TEST_BAD_INT", "x")
	t.Setenv("INV_TEST_DUR", "90m")
	t.Setenv("INV_TEST_CSV", " a, ,b ,c")

	assert.Equal(t, "value", EnvDefault("INV_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefault("INV_TEST_MISSING", "def"))
	assert.Equal(t, 42, EnvIntDefault("INV_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("INV_TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Minute, EnvDurationDefault("INV_TEST_DUR", time.Hour))
	assert.Equal(t, time.Hour, EnvDurationDefault("INV_TEST_MISSING", time.Hour))
	assert.Equal(t, []string{"a", "b", "c"}, CSV(os.Getenv("INV_TEST_CSV")))
	assert.Nil(t, CSV(""))
}
