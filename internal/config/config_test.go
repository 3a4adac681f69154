package config_test

import (
	"testing"
	"time"

	"inkbook/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := config.FromViper(newViper(map[string]interface{}{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 100, cfg.Cache.Capacity)
	assert.Equal(t, "tattoos", cfg.Storage.Bucket)
	assert.Empty(t, cfg.Broker.URL)
	assert.Equal(t, 5, cfg.Inquiry.RateLimitPerMinute)
}

func TestFromViperRequiresSecret(t *testing.T) {
	_, err := config.FromViper(newViper(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestFromViperRejectsUnknownDriver(t *testing.T) {
	_, err := config.FromViper(newViper(map[string]interface{}{
		"JWT_SECRET":      "s3cret",
		"DATABASE_DRIVER": "mysql",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestFromViperRejectsZeroCapacity(t *testing.T) {
	_, err := config.FromViper(newViper(map[string]interface{}{
		"JWT_SECRET":     "s3cret",
		"CACHE_CAPACITY": 0,
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_CAPACITY")
}
