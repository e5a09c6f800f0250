package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/portfolio_server/internal/pkg/response"
	"github.com/qs3c/portfolio_server/internal/pkg/uploader"
	"github.com/qs3c/portfolio_server/internal/service"
)

type UploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
	}
}

// Proxied 服务端中转上传
// POST /api/upload
func (h *UploadHandler) Proxied(c *gin.Context) {
	maxBody := h.uploadService.ProxiedMaxBody()
	if c.Request.ContentLength > maxBody {
		response.Error(c, service.ErrProxiedTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, service.ErrProxiedTooLarge)
			return
		}
		response.Error(c, service.ErrNoFile)
		return
	}

	result, err := h.uploadService.Proxied(c.Request.Context(), fh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Direct 直传握手
// POST /api/upload/direct
func (h *UploadHandler) Direct(c *gin.Context) {
	var req uploader.DirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "pathname, contentType and size are required")
		return
	}

	auth, err := h.uploadService.Direct(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, auth)
}

// Complete 直传完成回调
// POST /api/upload/direct/complete
func (h *UploadHandler) Complete(c *gin.Context) {
	var req uploader.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "token is required")
		return
	}

	result, err := h.uploadService.Complete(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
