package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorePostgres, cfg.SessionStore)
	assert.Equal(t, 10*time.Minute, cfg.ScoreCache.TTL)
	assert.Equal(t, []string{"classes", "students", "sessions", "monthlyComments"}, cfg.Migration.Collections)
	assert.Empty(t, cfg.AI.APIKey)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SESSION_STORE", "Firebase")
	t.Setenv("SCORE_CACHE_TTL", "90s")
	t.Setenv("PRINT_LINK_TTL", "not-a-duration")
	t.Setenv("AI_BASE_URL", "http://llm.local/v1/")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreFirebase, cfg.SessionStore)
	assert.Equal(t, 90*time.Second, cfg.ScoreCache.TTL)
	assert.Equal(t, 15*time.Minute, cfg.Print.LinkTTL)
	assert.Equal(t, "http://llm.local/v1", cfg.AI.BaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestUnknownStoreFallsBackToPostgres(t *testing.T) {
	t.Setenv("SESSION_STORE", "mongo")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.SessionStore)
}
