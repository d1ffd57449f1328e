package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test_secret_key")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, "goaltracker", cfg.Database.DatabaseName)
	assert.Equal(t, 3, cfg.FreeGoalLimit)
	assert.Equal(t, "20:00", cfg.AtRiskSweepTime)
	assert.Equal(t, "goaltracker", cfg.Auth.Issuer)
}

func TestValidate(t *testing.T) {
	valid := AppConfig{StorageDriver: "mongo", TimeZone: "UTC", AtRiskSweepTime: "20:00", Auth: AuthConfig{JWTSecretKey: "k"}}

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(c *AppConfig) {}},
		{name: "unknown driver", mutate: func(c *AppConfig) { c.StorageDriver = "postgres" }, wantErr: "STORAGE_DRIVER"},
		{name: "missing secret", mutate: func(c *AppConfig) { c.Auth.JWTSecretKey = " " }, wantErr: "JWT_SECRET_KEY"},
		{name: "bad zone", mutate: func(c *AppConfig) { c.TimeZone = "Mars/Olympus" }, wantErr: "TIME_ZONE"},
		{name: "sweep off", mutate: func(c *AppConfig) { c.AtRiskSweepTime = "off" }},
		{name: "bad sweep time", mutate: func(c *AppConfig) { c.AtRiskSweepTime = "8pm" }, wantErr: "AT_RISK_SWEEP_TIME"},
		{name: "negative limit", mutate: func(c *AppConfig) { c.FreeGoalLimit = -1 }, wantErr: "FREE_GOAL_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
