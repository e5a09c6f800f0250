package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/response"
	"github.com/qs3c/portfolio_server/internal/service"
)

type BlogHandler struct {
	blogService *service.BlogService
}

func NewBlogHandler(blogService *service.BlogService) *BlogHandler {
	return &BlogHandler{
		blogService: blogService,
	}
}

// List GET /api/blog-posts
func (h *BlogHandler) List(c *gin.Context) {
	posts, err := h.blogService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": posts})
}

// Search GET /api/blog-posts/search?q=
func (h *BlogHandler) Search(c *gin.Context) {
	posts, err := h.blogService.Search(c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": posts})
}

// Get GET /api/blog-posts/:id
func (h *BlogHandler) Get(c *gin.Context) {
	post, err := h.blogService.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": post})
}

// Create POST /api/blog-posts
func (h *BlogHandler) Create(c *gin.Context) {
	var req dto.BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Title and content are required")
		return
	}

	post, err := h.blogService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"data": post})
}

// Update PUT /api/blog-posts/:id
func (h *BlogHandler) Update(c *gin.Context) {
	var req dto.BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Title and content are required")
		return
	}

	post, err := h.blogService.Update(c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": post})
}

// Delete DELETE /api/blog-posts/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.blogService.Delete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Blog post deleted", nil)
}
