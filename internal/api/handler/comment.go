package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/response"
	"github.com/qs3c/portfolio_server/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// List 获取评论树
// GET /api/comments?subjectId=
func (h *CommentHandler) List(c *gin.Context) {
	subjectID := c.Query("subjectId")
	if subjectID == "" {
		subjectID = c.Query("blogPostId")
	}

	nodes, err := h.commentService.Tree(subjectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"comments": nodes})
}

// Create 发表评论
// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"comment": comment,
		"message": "Comment posted successfully",
	})
}

// Delete 凭管理密钥删除评论
// DELETE /api/comments?commentId=&adminKey=
func (h *CommentHandler) Delete(c *gin.Context) {
	deleted, err := h.commentService.Delete(c.Query("commentId"), c.Query("adminKey"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Comment deleted successfully", gin.H{
		"deletedComment": deleted,
	})
}

// AdminList 管理端评论列表
// GET /api/admin/comments
func (h *CommentHandler) AdminList(c *gin.Context) {
	var q dto.AdminCommentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, "Invalid query parameters")
		return
	}

	items, total, err := h.commentService.List(&q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessPage(c, total, q.Page, q.PageSize, items)
}

// AdminDelete 管理员删除评论
// DELETE /api/admin/comments/:id
func (h *CommentHandler) AdminDelete(c *gin.Context) {
	deleted, err := h.commentService.DeleteByAdmin(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Comment deleted successfully", gin.H{
		"deletedComment": deleted,
	})
}
