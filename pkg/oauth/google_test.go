package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeGoogle(t *testing.T, userInfo string) *GoogleProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userInfo))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	provider, err := NewGoogleProvider(Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/auth/google/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: server.URL + "/auth", TokenURL: server.URL + "/token"},
		UserInfoURL:  server.URL + "/userinfo",
	})
	require.NoError(t, err)
	return provider
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	provider := newFakeGoogle(t, `{}`)
	parsed, err := url.Parse(provider.AuthCodeURL("xyz"))
	require.NoError(t, err)
	require.Equal(t, "xyz", parsed.Query().Get("state"))
	require.Equal(t, "id", parsed.Query().Get("client_id"))
}

func TestExchangeReturnsVerifiedIdentity(t *testing.T) {
	provider := newFakeGoogle(t, `{"email":"Admin@Example.com","email_verified":true,"name":"Admin"}`)
	identity, err := provider.Exchange(context.Background(), "code")
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", identity.Email)
	require.Equal(t, "Admin", identity.Name)
}

func TestExchangeRejectsUnverifiedEmail(t *testing.T) {
	provider := newFakeGoogle(t, `{"email":"admin@example.com","email_verified":false}`)
	_, err := provider.Exchange(context.Background(), "code")
	require.ErrorIs(t, err, ErrUnverifiedEmail)
}
