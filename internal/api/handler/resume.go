package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/response"
	"github.com/qs3c/portfolio_server/internal/service"
)

type ResumeHandler struct {
	resumeService *service.ResumeService
}

func NewResumeHandler(resumeService *service.ResumeService) *ResumeHandler {
	return &ResumeHandler{
		resumeService: resumeService,
	}
}

// Get GET /api/resume
func (h *ResumeHandler) Get(c *gin.Context) {
	resume, err := h.resumeService.Current()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": resume})
}

// Replace PUT /api/resume
func (h *ResumeHandler) Replace(c *gin.Context) {
	var req dto.ResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "fileName and fileUrl are required")
		return
	}

	resume, err := h.resumeService.Replace(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": resume})
}

// Delete DELETE /api/resume
func (h *ResumeHandler) Delete(c *gin.Context) {
	if err := h.resumeService.Delete(); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Resume deleted", nil)
}
