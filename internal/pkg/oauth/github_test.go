package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewGithubOAuth(t *testing.T) {
	g := NewGithubOAuth("client-id", "client-secret", "http://localhost/callback")

	assert.True(t, g.Configured())
	assert.Equal(t, "client-id", g.config.ClientID)
	assert.Equal(t, "http://localhost/callback", g.config.RedirectURL)
	assert.Equal(t, githubAPI, g.apiURL)

	assert.False(t, NewGithubOAuth("", "", "").Configured())
}

func TestGithubOAuth_GetAuthURL(t *testing.T) {
	g := NewGithubOAuth("test-client-id", "test-secret", "http://example.com/callback")

	url := g.GetAuthURL("test-state")

	assert.Contains(t, url, "github.com")
	assert.Contains(t, url, "client_id=test-client-id")
	assert.Contains(t, url, "state=test-state")
	assert.Contains(t, url, "redirect_uri=")
}

// newFakeGithub 同时模拟 token 交换与 /user 接口
func newFakeGithub(t *testing.T, user GithubUser) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		json.NewEncoder(w).Encode(user)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGithubOAuth_Authenticate(t *testing.T) {
	srv := newFakeGithub(t, GithubUser{ID: 42, Login: "octocat", AvatarURL: "https://avatars.test/42"})

	g := NewGithubOAuth("id", "secret", "http://localhost/callback").WithEndpoints(oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}, srv.URL)

	user, err := g.Authenticate(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "octocat", user.Login)

	_, err = g.Authenticate(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestGithubOAuth_GetUser_Unauthorized(t *testing.T) {
	srv := newFakeGithub(t, GithubUser{ID: 1, Login: "x"})
	g := NewGithubOAuth("id", "secret", "").WithEndpoints(oauth2.Endpoint{}, srv.URL)

	_, err := g.GetUser(context.Background(), &oauth2.Token{AccessToken: "wrong"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Bad credentials")
}

func TestGithubOAuth_GetUser_Incomplete(t *testing.T) {
	srv := newFakeGithub(t, GithubUser{})
	g := NewGithubOAuth("id", "secret", "").WithEndpoints(oauth2.Endpoint{}, srv.URL)

	_, err := g.GetUser(context.Background(), &oauth2.Token{AccessToken: "tok"})
	assert.Error(t, err)
}
