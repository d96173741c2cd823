package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("SERVER_TIMEOUT_SECONDS", "5")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRY_HOURS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 5*time.Second, cfg.ServerTimeout)
	assert.Equal(t, 2*time.Hour, cfg.JWTAccessTokenExpiry)
	assert.Equal(t, "access_token", cfg.CookieName)
	assert.Equal(t, DeletePolicyOrphan, cfg.UserDeletePolicy)
	assert.Equal(t, SearchBackendStore, cfg.SearchBackend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.EqualValues(t, 2<<20, cfg.UploadMaxBytes)
	assert.Equal(t, 6, cfg.UploadMaxFiles)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWTSecret:        "s",
			DBDriver:         DriverPostgres,
			UserDeletePolicy: DeletePolicyCascade,
			SearchBackend:    SearchBackendStore,
		}
	}

	require.NoError(t, valid().Validate())

	c := valid()
	c.DBDriver = "oracle"
	assert.Error(t, c.Validate())

	c = valid()
	c.UserDeletePolicy = "reassign"
	assert.Error(t, c.Validate())

	c = valid()
	c.SearchBackend = SearchBackendElasticsearch
	assert.Error(t, c.Validate(), "elasticsearch backend needs a URL")
	c.ElasticsearchURL = "http://localhost:9200"
	assert.NoError(t, c.Validate())
}
