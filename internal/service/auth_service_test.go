package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/jwt"
	"github.com/qs3c/portfolio_server/internal/pkg/oauth"
	"github.com/qs3c/portfolio_server/internal/repository"
	"github.com/qs3c/portfolio_server/internal/testutil"
)

const testJWTSecret = "test-secret-key-for-testing"

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:      testJWTSecret,
			ExpireHours: 24,
		},
		Admin: config.AdminConfig{
			GithubLogins: []string{"OctoCat"},
		},
	}
}

type authFixture struct {
	service   *AuthService
	adminRepo *repository.AdminRepository
	states    *oauth.StateStore
}

func setupAuthService(t *testing.T, cfg *config.Config, gh *oauth.GithubOAuth) *authFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	adminRepo := repository.NewAdminRepository(db)
	states := oauth.NewStateStore(rdb)
	if gh == nil {
		gh = oauth.NewGithubOAuth("", "", "")
	}
	return &authFixture{
		service:   NewAuthService(adminRepo, states, gh, cfg),
		adminRepo: adminRepo,
		states:    states,
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	cfg := testAuthConfig()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg.Admin.Username = "owner"
	cfg.Admin.PasswordHash = string(hash)

	f := setupAuthService(t, cfg, nil)
	require.NoError(t, f.service.EnsureAdmin())
	require.NoError(t, f.service.EnsureAdmin())

	resp, err := f.service.Login(&dto.LoginRequest{Username: "owner", Password: "hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "owner", resp.Admin.Username)
	assert.NotEmpty(t, resp.Admin.LastLoginAt)

	claims, err := jwt.ParseToken(resp.Token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.Admin.ID, claims.AdminID)
}

func TestAuthService_EnsureAdmin_RejectsPlaintext(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Admin.Username = "owner"
	cfg.Admin.PasswordHash = "plaintext"

	f := setupAuthService(t, cfg, nil)
	assert.Error(t, f.service.EnsureAdmin())
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	f := setupAuthService(t, testAuthConfig(), nil)

	_, err := f.service.Login(&dto.LoginRequest{Username: "nobody", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	hash, _ := bcrypt.GenerateFromPassword([]byte(testutil.TestPassword), bcrypt.MinCost)
	_, err = f.adminRepo.UpsertPassword("owner", string(hash))
	require.NoError(t, err)

	_, err = f.service.Login(&dto.LoginRequest{Username: "owner", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login(&dto.LoginRequest{Username: "owner", Password: testutil.TestPassword})
	assert.NoError(t, err)
}

func TestAuthService_Me(t *testing.T) {
	f := setupAuthService(t, testAuthConfig(), nil)

	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	admin, err := f.adminRepo.UpsertPassword("owner", string(hash))
	require.NoError(t, err)

	info, err := f.service.Me(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner", info.Username)

	_, err = f.service.Me(9999)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func fakeGithub(t *testing.T, login string) *oauth.GithubOAuth {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(oauth.GithubUser{ID: 7, Login: login, AvatarURL: "https://avatars.test/7"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return oauth.NewGithubOAuth("id", "secret", "http://localhost/callback").WithEndpoints(oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}, srv.URL)
}

func TestAuthService_Github_NotConfigured(t *testing.T) {
	f := setupAuthService(t, testAuthConfig(), nil)

	_, err := f.service.GithubAuthURL(context.Background(), "/")
	assert.ErrorIs(t, err, ErrGithubNotConfigured)
}

func TestAuthService_GithubFlow_AllowListed(t *testing.T) {
	f := setupAuthService(t, testAuthConfig(), fakeGithub(t, "octocat"))
	ctx := context.Background()

	authURL, err := f.service.GithubAuthURL(ctx, "/admin")
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)

	resp, returnTo, err := f.service.GithubCallback(ctx, "code", state)
	require.NoError(t, err)
	assert.Equal(t, "/admin", returnTo)
	assert.Equal(t, "github:octocat", resp.Admin.Username)
	assert.Equal(t, "octocat", resp.Admin.GithubLogin)

	// state 只能使用一次
	_, _, err = f.service.GithubCallback(ctx, "code", state)
	assert.ErrorIs(t, err, ErrInvalidOAuthState)

	// 再次登录复用同一管理员
	state2, err := f.states.GenerateState(ctx, "")
	require.NoError(t, err)
	resp2, _, err := f.service.GithubCallback(ctx, "code", state2)
	require.NoError(t, err)
	assert.Equal(t, resp.Admin.ID, resp2.Admin.ID)
}

func TestAuthService_GithubFlow_NotAllowed(t *testing.T) {
	f := setupAuthService(t, testAuthConfig(), fakeGithub(t, "stranger"))
	ctx := context.Background()

	state, err := f.states.GenerateState(ctx, "")
	require.NoError(t, err)

	_, _, err = f.service.GithubCallback(ctx, "code", state)
	assert.ErrorIs(t, err, ErrGithubNotAllowed)

	exists, err := f.adminRepo.ExistsByUsername("github:stranger")
	require.NoError(t, err)
	assert.False(t, exists)
}
