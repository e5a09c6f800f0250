package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/response"
	"github.com/qs3c/portfolio_server/internal/service"
)

type CertificateHandler struct {
	certService *service.CertificateService
}

func NewCertificateHandler(certService *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{
		certService: certService,
	}
}

// List GET /api/certificates
func (h *CertificateHandler) List(c *gin.Context) {
	certs, err := h.certService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": certs})
}

// Get GET /api/certificates/:id
func (h *CertificateHandler) Get(c *gin.Context) {
	cert, err := h.certService.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": cert})
}

// Create POST /api/certificates
func (h *CertificateHandler) Create(c *gin.Context) {
	var req dto.CertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Title is required")
		return
	}

	cert, err := h.certService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"data": cert})
}

// Update PUT /api/certificates/:id
func (h *CertificateHandler) Update(c *gin.Context) {
	var req dto.CertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Title is required")
		return
	}

	cert, err := h.certService.Update(c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": cert})
}

// Delete DELETE /api/certificates/:id
func (h *CertificateHandler) Delete(c *gin.Context) {
	if err := h.certService.Delete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Certificate deleted", nil)
}
