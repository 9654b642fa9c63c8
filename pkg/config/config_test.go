package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]interface{}{
		"BACKEND_URL": "http://localhost:5001/",
	}))
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "http://localhost:5001", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 8, cfg.Backend.FetchConcurrency)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "campus", cfg.Cache.KeyPrefix)
	assert.Equal(t, 3, cfg.Refresh.MaxRetries)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]interface{}{
		"BACKEND_URL":               "https://events.example.edu",
		"BACKEND_TIMEOUT":           "750ms",
		"BACKEND_FETCH_CONCURRENCY": 0,
		"ALLOWED_ORIGINS":           "https://staff.example.edu, ,https://m.example.edu",
		"CACHE_TTL":                 "not-a-duration",
	}))
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Backend.Timeout)
	assert.Equal(t, 8, cfg.Backend.FetchConcurrency)
	assert.Equal(t, []string{"https://staff.example.edu", "https://m.example.edu"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestFromViperRequiresBackendURL(t *testing.T) {
	_, err := fromViper(newTestViper(nil))
	require.ErrorIs(t, err, ErrBackendURLMissing)

	_, err = fromViper(newTestViper(map[string]interface{}{"BACKEND_URL": "localhost:5001"}))
	require.Error(t, err)

	_, err = fromViper(newTestViper(map[string]interface{}{"BACKEND_URL": "ftp://files.example.edu"}))
	require.Error(t, err)
}
