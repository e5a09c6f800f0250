package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/portfolio_server/internal/api/middleware"
	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/response"
	"github.com/qs3c/portfolio_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login 管理员登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Username and password are required")
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// GithubLogin 获取 GitHub 授权地址
// GET /api/auth/github?returnTo=
func (h *AuthHandler) GithubLogin(c *gin.Context) {
	url, err := h.authService.GithubAuthURL(c.Request.Context(), c.Query("returnTo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"url": url})
}

// GithubCallback GitHub 授权回调
// GET /api/auth/github/callback?code=&state=
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.ParamError(c, "Missing authorization code")
		return
	}

	resp, returnTo, err := h.authService.GithubCallback(c.Request.Context(), code, c.Query("state"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"token":    resp.Token,
		"admin":    resp.Admin,
		"returnTo": returnTo,
	})
}

// Me 当前管理员
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	adminID, ok := middleware.GetAdminID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.authService.Me(adminID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}
