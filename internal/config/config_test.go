package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Minute, cfg.PresenceTimeout)
	assert.Equal(t, 30*24*time.Hour, cfg.JournalRetention)
	assert.False(t, cfg.JournalEnabled())
	assert.False(t, cfg.PresenceMirrorEnabled())
	assert.Equal(t, DefaultRolePolicy, cfg.Policy())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/casework")
	t.Setenv("PRESENCE_TIMEOUT", "45s")
	t.Setenv("TIMEZONE", "Asia/Kathmandu")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ROLE_POLICY", "pin=owner")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.JournalEnabled())
	assert.Equal(t, 45*time.Second, cfg.PresenceTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
	assert.Equal(t, "pin=owner", cfg.Policy())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kathmandu", loc.String())
}

func TestLoad_Rejects(t *testing.T) {
	t.Run("default secret in production", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("unknown time zone", func(t *testing.T) {
		t.Setenv("TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("PRESENCE_TIMEOUT", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}
