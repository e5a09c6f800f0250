package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/response"
	"github.com/qs3c/portfolio_server/internal/service"
)

type ViewHandler struct {
	viewService *service.ViewService
}

func NewViewHandler(viewService *service.ViewService) *ViewHandler {
	return &ViewHandler{
		viewService: viewService,
	}
}

// Record 记录页面访问
// POST /api/views
func (h *ViewHandler) Record(c *gin.Context) {
	var req dto.RecordViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Invalid request body")
		return
	}

	meta := dto.ViewMeta{
		IPAddress: service.ClientIP(c.GetHeader("X-Forwarded-For"), c.GetHeader("X-Real-IP")),
		UserAgent: c.GetHeader("User-Agent"),
		Referrer:  c.GetHeader("Referer"),
	}
	view, err := h.viewService.Record(c.Request.Context(), &req, meta)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"success": true, "data": view})
}

// Counts 查询访问统计
// GET /api/views?pageType=&pageId=
func (h *ViewHandler) Counts(c *gin.Context) {
	counts, err := h.viewService.Counts(c.Query("pageType"), c.Query("pageId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": counts})
}

// SelfTest 访问统计链路自检
// GET /api/admin/views/selftest
func (h *ViewHandler) SelfTest(c *gin.Context) {
	response.Success(c, h.viewService.SelfTest())
}
