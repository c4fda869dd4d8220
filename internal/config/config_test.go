package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SERVER_HOST", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DASHBOARD_TIMEZONE", "UTC")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "7")
	t.Setenv("HEALTH_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, time.UTC, cfg.Dashboard.Location)
	assert.Equal(t, 7*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("DASHBOARD_TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "postgres with both secrets",
			cfg: Config{
				Store:    StoreConfig{Driver: DriverPostgres},
				Database: DatabaseConfig{URL: "postgres://app@db.internal:5432/crm", Password: "s3cret"},
			},
		},
		{
			name: "postgres missing url",
			cfg: Config{
				Store:    StoreConfig{Driver: DriverPostgres},
				Database: DatabaseConfig{Password: "s3cret"},
			},
			wantErr: true,
		},
		{
			name: "postgres missing password",
			cfg: Config{
				Store:    StoreConfig{Driver: DriverPostgres},
				Database: DatabaseConfig{URL: "postgres://app@db.internal:5432/crm"},
			},
			wantErr: true,
		},
		{
			name: "bolt with path",
			cfg: Config{
				Store: StoreConfig{Driver: DriverBolt},
				Bolt:  BoltConfig{Path: "/tmp/followups.db"},
			},
		},
		{
			name: "bolt without path",
			cfg: Config{
				Store: StoreConfig{Driver: DriverBolt},
			},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			cfg:     Config{Store: StoreConfig{Driver: "sqlite"}},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.ValidateStore()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
