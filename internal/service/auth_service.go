package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/model"
	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/apperr"
	"github.com/qs3c/portfolio_server/internal/pkg/jwt"
	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/oauth"
	"github.com/qs3c/portfolio_server/internal/repository"
)

var (
	ErrInvalidCredentials  = apperr.Auth("Invalid username or password")
	ErrAdminNotFound       = apperr.NotFound("Admin not found")
	ErrGithubNotConfigured = apperr.NotFound("GitHub login is not configured")
	ErrInvalidOAuthState   = apperr.Auth("Invalid or expired OAuth state")
	ErrGithubNotAllowed    = apperr.Auth("GitHub account is not allowed")
)

type AuthService struct {
	adminRepo   *repository.AdminRepository
	states      *oauth.StateStore
	githubOAuth *oauth.GithubOAuth
	cfg         *config.Config
}

func NewAuthService(
	adminRepo *repository.AdminRepository,
	states *oauth.StateStore,
	githubOAuth *oauth.GithubOAuth,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		adminRepo:   adminRepo,
		states:      states,
		githubOAuth: githubOAuth,
		cfg:         cfg,
	}
}

// EnsureAdmin 按配置写入初始管理员
func (s *AuthService) EnsureAdmin() error {
	username := strings.TrimSpace(s.cfg.Admin.Username)
	hash := s.cfg.Admin.PasswordHash
	if username == "" || hash == "" {
		log.Warnf("admin.username or admin.password_hash not set, password login disabled")
		return nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return fmt.Errorf("admin.password_hash is not a bcrypt hash: %w", err)
	}
	if _, err := s.adminRepo.UpsertPassword(username, hash); err != nil {
		return fmt.Errorf("seed admin %s: %w", username, err)
	}
	return nil
}

// Login 用户名密码登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Upstream("Login failed", err)
	}

	if admin.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(admin)
}

// GithubAuthURL 生成带 state 的 GitHub 授权地址
func (s *AuthService) GithubAuthURL(ctx context.Context, returnTo string) (string, error) {
	if !s.githubConfigured() {
		return "", ErrGithubNotConfigured
	}
	state, err := s.states.GenerateState(ctx, returnTo)
	if err != nil {
		return "", apperr.Upstream("Failed to start GitHub login", err)
	}
	return s.githubOAuth.GetAuthURL(state), nil
}

// githubConfigured state 依赖 redis，不可用时视为未配置
func (s *AuthService) githubConfigured() bool {
	return s.githubOAuth != nil && s.githubOAuth.Configured() && s.states != nil
}

// GithubCallback 处理回调，仅白名单内的账号可成为管理员
func (s *AuthService) GithubCallback(ctx context.Context, code, state string) (*dto.LoginResponse, string, error) {
	if !s.githubConfigured() {
		return nil, "", ErrGithubNotConfigured
	}
	returnTo, err := s.states.ConsumeState(ctx, state)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidState) {
			return nil, "", ErrInvalidOAuthState
		}
		return nil, "", apperr.Upstream("GitHub login failed", err)
	}

	ghUser, err := s.githubOAuth.Authenticate(ctx, code)
	if err != nil {
		return nil, "", apperr.Upstream("GitHub login failed", err)
	}
	if !s.githubAllowed(ghUser.Login) {
		log.Warnf("github login rejected for %s", ghUser.Login)
		return nil, "", ErrGithubNotAllowed
	}

	githubID := fmt.Sprintf("%d", ghUser.ID)
	admin, err := s.adminRepo.GetByGithubID(githubID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperr.Upstream("GitHub login failed", err)
	}

	if admin == nil {
		admin = &model.Admin{
			Username:    "github:" + ghUser.Login,
			GithubID:    &githubID,
			GithubLogin: ghUser.Login,
			AvatarURL:   ghUser.AvatarURL,
		}
		if err := s.adminRepo.Create(admin); err != nil {
			return nil, "", apperr.Upstream("GitHub login failed", err)
		}
	} else if admin.GithubLogin != ghUser.Login || admin.AvatarURL != ghUser.AvatarURL {
		admin.GithubLogin = ghUser.Login
		admin.AvatarURL = ghUser.AvatarURL
		if err := s.adminRepo.Update(admin); err != nil {
			return nil, "", apperr.Upstream("GitHub login failed", err)
		}
	}

	resp, err := s.issue(admin)
	if err != nil {
		return nil, "", err
	}
	return resp, returnTo, nil
}

func (s *AuthService) githubAllowed(login string) bool {
	for _, allowed := range s.cfg.Admin.GithubLogins {
		if strings.EqualFold(strings.TrimSpace(allowed), login) {
			return true
		}
	}
	return false
}

// Me 当前管理员信息
func (s *AuthService) Me(adminID int64) (*dto.AdminInfo, error) {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, apperr.Upstream("Failed to fetch admin", err)
	}
	return buildAdminInfo(admin), nil
}

func (s *AuthService) issue(admin *model.Admin) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(admin.ID, admin.Username, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, apperr.Upstream("Failed to issue token", err)
	}
	if err := s.adminRepo.TouchLogin(admin.ID); err != nil {
		log.Warnf("touch login for admin %d: %v", admin.ID, err)
	}
	now := time.Now()
	admin.LastLoginAt = &now

	return &dto.LoginResponse{
		Token: token,
		Admin: buildAdminInfo(admin),
	}, nil
}

func buildAdminInfo(admin *model.Admin) *dto.AdminInfo {
	info := &dto.AdminInfo{
		ID:          admin.ID,
		Username:    admin.Username,
		GithubLogin: admin.GithubLogin,
		AvatarURL:   admin.AvatarURL,
	}
	if admin.LastLoginAt != nil {
		info.LastLoginAt = admin.LastLoginAt.Format(time.RFC3339)
	}
	return info
}
