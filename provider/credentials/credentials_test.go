package credentials

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-identity/provider"
)

func TestKind(t *testing.T) {
	p := New(Config{})

	assert.Equal(t, "credentials", p.Name())
	assert.Equal(t, provider.KindCredentials, p.Kind())
}

func TestVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "key-1", r.Header.Get("X-API-Key"))

		var fields map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		assert.Equal(t, "jane@example.com", fields["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"user-1","name":"Jane Doe","email":"jane@example.com"}`))
	}))
	defer server.Close()

	p := New(Config{HostURL: server.URL, APIKey: "key-1"})

	profile, err := p.Verify(context.Background(), map[string]string{
		"email": "jane@example.com",
		"token": "otp-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ProviderUserID)
	assert.Equal(t, "credentials", profile.Provider)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
}

func TestVerifyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := New(Config{HostURL: server.URL, APIKey: "key-1"})

	_, err := p.Verify(context.Background(), map[string]string{"email": "jane@example.com"})
	require.Error(t, err)
}

func TestVerifyMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"No ID"}`))
	}))
	defer server.Close()

	p := New(Config{HostURL: server.URL})

	_, err := p.Verify(context.Background(), map[string]string{})
	require.Error(t, err)
}
