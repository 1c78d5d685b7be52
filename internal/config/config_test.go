package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HOSPITALS_PATH", "DISTRICTS_PATH", "CCPP_PATH", "OUTPUT_DIR", "PROXIMITY_REGIONS",
		"PROXIMITY_RADIUS_M", "TOP_DISTRICTS", "SERVE", "ADDR", "API_BASE", "PG_ENABLE", "REDIS_ENABLE",
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_QPS"} {
		t.Setenv(k, "")
	}
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "IPRESS.csv"), c.HospitalsPath)
	assert.Equal(t, []string{"LIMA", "LORETO"}, c.Regions)
	assert.Equal(t, 10000.0, c.RadiusM)
	assert.Equal(t, 10, c.TopDistricts)
	assert.Equal(t, "/api", c.APIBase)
	assert.Equal(t, 200, c.RateLimitQPS)
	assert.False(t, c.Serve)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PROXIMITY_REGIONS", " CUSCO , ,PUNO,CUSCO")
	t.Setenv("PROXIMITY_RADIUS_M", "5000")
	t.Setenv("API_BASE", "/v1/")
	t.Setenv("SERVE", "true")
	t.Setenv("RATE_LIMIT_QPS", "x")
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"CUSCO", "PUNO"}, c.Regions)
	assert.Equal(t, 5000.0, c.RadiusM)
	assert.Equal(t, "/v1", c.APIBase)
	assert.True(t, c.Serve)
	assert.Equal(t, 200, c.RateLimitQPS)
}

func TestFromEnvInvalid(t *testing.T) {
	for _, bad := range []string{"-1", "NaN", "+Inf"} {
		t.Setenv("PROXIMITY_RADIUS_M", bad)
		_, err := FromEnv()
		assert.Error(t, err, bad)
	}

	t.Setenv("PROXIMITY_RADIUS_M", "")
	t.Setenv("TOP_DISTRICTS", "ten")
	_, err := FromEnv()
	assert.Error(t, err)
}
