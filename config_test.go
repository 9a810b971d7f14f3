package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.DisableSignup)
	assert.Equal(t, 1, cfg.RateLimitMax)
	assert.Equal(t, 60*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, "https://gitlab.com", cfg.GitLabBaseURL)
	assert.Equal(t, "sub", cfg.CustomOAuthIDPath)
	assert.Equal(t, "picture", cfg.CustomOAuthImagePath)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("DISABLE_SIGNUP", "true")
	t.Setenv("ADMIN_EMAILS", "a@example.com,b@example.com")
	t.Setenv("GITLAB_REQUIRED_GROUPS", "eng,ops")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.DisableSignup)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.AdminEmails)
	assert.Equal(t, []string{"eng", "ops"}, cfg.GitLabRequiredGroups)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{RateLimitMax: 1}
	assert.NoError(t, cfg.Validate())

	cfg.RateLimitMax = -1
	assert.Error(t, cfg.Validate())

	cfg = Config{RateLimitMax: 1, GitLabBaseURL: "not a url"}
	assert.Error(t, cfg.Validate())
}

func TestIsAdminEmail(t *testing.T) {
	cfg := Config{AdminEmails: []string{" Admin@Example.com ", "ops@example.com"}}

	assert.True(t, cfg.IsAdminEmail("admin@example.com"))
	assert.True(t, cfg.IsAdminEmail("ops@example.com"))
	assert.False(t, cfg.IsAdminEmail("user@example.com"))
}
