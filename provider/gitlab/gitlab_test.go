package gitlab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-identity/provider"
)

func TestDefaults(t *testing.T) {
	p := New(Config{})

	assert.Equal(t, "gitlab", p.Name())
	assert.Equal(t, provider.KindOAuth, p.Kind())
	assert.Equal(t, "GitLab", p.DisplayName())
	assert.Contains(t, p.AuthCodeURL("state-1"), "https://gitlab.com/oauth/authorize?")
}

func TestSelfHostedBaseURL(t *testing.T) {
	p := New(Config{
		BaseURL:     "https://git.internal.example/",
		DisplayName: "Internal Git",
	})

	assert.Equal(t, "Internal Git", p.DisplayName())
	assert.True(t, strings.HasPrefix(p.AuthCodeURL("s"), "https://git.internal.example/oauth/authorize?"))
}

func TestAuthCodeURL(t *testing.T) {
	p := New(Config{
		ClientID:    "client-1",
		CallbackURL: "https://app.example.com/callback",
	})

	u := p.AuthCodeURL("state-1")
	assert.Contains(t, u, "client_id=client-1")
	assert.Contains(t, u, "state=state-1")
	assert.Contains(t, u, "scope=read_api")
	assert.Contains(t, u, "response_type=code")
}

func TestExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "code-1", r.FormValue("code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"glpat-token","token_type":"Bearer","refresh_token":"refresh-1","expires_in":7200}`))
	}))
	defer server.Close()

	p := New(Config{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		BaseURL:      server.URL,
	})

	token, err := p.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "glpat-token", token.AccessToken)
	assert.Equal(t, "refresh-1", token.RefreshToken)
	assert.False(t, token.ExpiresAt.IsZero())
}

func TestExchangeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"expired"}`))
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})

	_, err := p.Exchange(context.Background(), "stale-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v4/user", r.URL.Path)
		assert.Equal(t, "Bearer glpat-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"name":"Jane Doe","email":"jane@example.com","avatar_url":"https://gitlab.example/avatar.png","confirmed_at":"2023-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})

	profile, err := p.UserInfo(context.Background(), &provider.Token{AccessToken: "glpat-token"})
	require.NoError(t, err)
	assert.Equal(t, "42", profile.ProviderUserID)
	assert.Equal(t, "gitlab", profile.Provider)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.Equal(t, "Jane Doe", profile.Name)
}

func TestListGroupsFollowsPagination(t *testing.T) {
	var pagesServed []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v4/groups", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		page := r.URL.Query().Get("page")
		pagesServed = append(pagesServed, page)

		w.Header().Set("Content-Type", "application/json")
		switch page {
		case "1":
			w.Header().Set("X-Next-Page", "2")
			_, _ = w.Write([]byte(`[{"id":1,"full_path":"acme/eng"},{"id":2,"full_path":"acme/ops"}]`))
		case "2":
			w.Header().Set("X-Next-Page", "")
			_, _ = w.Write([]byte(`[{"id":3,"full_path":"acme/design"}]`))
		default:
			t.Fatalf("unexpected page %q", page)
		}
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})

	groups, err := p.ListGroups(context.Background(), "glpat-token")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/eng", "acme/ops", "acme/design"}, groups)
	assert.Equal(t, []string{"1", "2"}, pagesServed)
}

func TestListGroupsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})

	groups, err := p.ListGroups(context.Background(), "glpat-token")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestListGroupsPropagatesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := New(Config{BaseURL: server.URL})

	_, err := p.ListGroups(context.Background(), "stale-token")
	require.Error(t, err)
}
