package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-identity/provider"
)

func TestDefaults(t *testing.T) {
	p := New(Config{})

	assert.Equal(t, "github", p.Name())
	assert.Equal(t, provider.KindOAuth, p.Kind())
}

func TestAuthCodeURL(t *testing.T) {
	p := New(Config{
		ClientID:    "client-1",
		CallbackURL: "https://app.example.com/callback",
	})

	u := p.AuthCodeURL("state-1")
	assert.Contains(t, u, "https://github.com/login/oauth/authorize?")
	assert.Contains(t, u, "client_id=client-1")
	assert.Contains(t, u, "state=state-1")
}

func TestExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-1", r.FormValue("client_id"))
		assert.Equal(t, "code-1", r.FormValue("code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gho_token","token_type":"bearer","scope":"user:email"}`))
	}))
	defer server.Close()

	p := New(Config{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		TokenURL:     server.URL,
	})

	token, err := p.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "gho_token", token.AccessToken)
	assert.Equal(t, "user:email", token.Scope)
}

func TestExchangeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"bad_verification_code","error_description":"The code is incorrect"}`))
	}))
	defer server.Close()

	p := New(Config{TokenURL: server.URL})

	_, err := p.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_verification_code")
}

func TestUserInfoPrimaryEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":42,"login":"janedoe","name":"Jane Doe","avatar_url":"https://avatars.example/42.png"}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
            {"email":"old@example.com","primary":false,"verified":true},
            {"email":"jane@example.com","primary":true,"verified":true}
        ]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := New(Config{
		UserURL:   server.URL + "/user",
		EmailsURL: server.URL + "/user/emails",
	})

	profile, err := p.UserInfo(context.Background(), &provider.Token{AccessToken: "gho_token"})
	require.NoError(t, err)
	assert.Equal(t, "42", profile.ProviderUserID)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.Equal(t, "Jane Doe", profile.Name)
}

func TestUserInfoFallsBackToProfileEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":42,"login":"janedoe","email":"public@example.com"}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := New(Config{
		UserURL:   server.URL + "/user",
		EmailsURL: server.URL + "/user/emails",
	})

	profile, err := p.UserInfo(context.Background(), &provider.Token{AccessToken: "gho_token"})
	require.NoError(t, err)
	assert.Equal(t, "public@example.com", profile.Email)
	assert.False(t, profile.EmailVerified)
	// login stands in when the display name is unset
	assert.Equal(t, "janedoe", profile.Name)
}
