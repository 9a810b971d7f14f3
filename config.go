package identity

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Config is the environment surface of the identity layer. Provider
// registrations read presence from this struct; a provider with no
// client id is simply not built.
type Config struct {
	DisableSignup         bool     `env:"DISABLE_SIGNUP"`
	AdminEmails           []string `env:"ADMIN_EMAILS" envSeparator:","`
	BlockDisposableEmails bool     `env:"BLOCK_DISPOSABLE_EMAILS"`
	DisposableDomainsURL  string   `env:"DISPOSABLE_DOMAINS_URL" envDefault:"https://raw.githubusercontent.com/disposable/disposable-email-domains/master/domains.txt"`

	UserCreatedWebhookURL string `env:"USER_CREATED_WEBHOOK_URL"`

	RateLimitRedisAddr string        `env:"RATE_LIMIT_REDIS_ADDR"`
	RateLimitMax       int           `env:"RATE_LIMIT_MAX" envDefault:"1"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`

	TestMode bool `env:"AUTH_TEST_MODE"`

	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	GitLabClientID       string   `env:"GITLAB_CLIENT_ID"`
	GitLabClientSecret   string   `env:"GITLAB_CLIENT_SECRET"`
	GitLabBaseURL        string   `env:"GITLAB_BASE_URL" envDefault:"https://gitlab.com"`
	GitLabName           string   `env:"GITLAB_NAME"`
	GitLabRequiredGroups []string `env:"GITLAB_REQUIRED_GROUPS" envSeparator:","`

	CustomOAuthClientID     string   `env:"CUSTOM_OAUTH_CLIENT_ID"`
	CustomOAuthClientSecret string   `env:"CUSTOM_OAUTH_CLIENT_SECRET"`
	CustomOAuthName         string   `env:"CUSTOM_OAUTH_NAME" envDefault:"Custom OAuth"`
	CustomOAuthIssuer       string   `env:"CUSTOM_OAUTH_ISSUER"`
	CustomOAuthAuthURL      string   `env:"CUSTOM_OAUTH_AUTH_URL"`
	CustomOAuthTokenURL     string   `env:"CUSTOM_OAUTH_TOKEN_URL"`
	CustomOAuthUserInfoURL  string   `env:"CUSTOM_OAUTH_USERINFO_URL"`
	CustomOAuthScopes       []string `env:"CUSTOM_OAUTH_SCOPES" envSeparator:","`
	CustomOAuthIDPath       string   `env:"CUSTOM_OAUTH_ID_PATH" envDefault:"sub"`
	CustomOAuthNamePath     string   `env:"CUSTOM_OAUTH_NAME_PATH" envDefault:"name"`
	CustomOAuthEmailPath    string   `env:"CUSTOM_OAUTH_EMAIL_PATH" envDefault:"email"`
	CustomOAuthImagePath    string   `env:"CUSTOM_OAUTH_IMAGE_PATH" envDefault:"picture"`

	CredentialsHostURL string `env:"CREDENTIALS_HOST_URL"`
	CredentialsAPIKey  string `env:"CREDENTIALS_API_KEY"`

	SMTPFrom string `env:"SMTP_FROM"`
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate will run validation rules
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DisposableDomainsURL, is.URL),
		validation.Field(&c.UserCreatedWebhookURL, is.URL),
		validation.Field(&c.GitLabBaseURL, is.URL),
		validation.Field(&c.CredentialsHostURL, is.URL),
		validation.Field(&c.RateLimitMax, validation.Min(1)),
	)
}

// IsAdminEmail reports whether email is on the admin allow-list.
func (c Config) IsAdminEmail(email string) bool {
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return true
		}
	}
	return false
}
