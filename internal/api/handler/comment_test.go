package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/email"
	"github.com/qs3c/portfolio_server/internal/pkg/response"
	"github.com/qs3c/portfolio_server/internal/repository"
	"github.com/qs3c/portfolio_server/internal/service"
	"github.com/qs3c/portfolio_server/internal/testutil"
)

const testDeleteKey = "letmein"

func setupCommentRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := config.Default()
	cfg.Admin.DeleteKey = testDeleteKey

	commentService := service.NewCommentService(
		repository.NewCommentRepository(db),
		email.NewService(&cfg.Email),
		cfg,
	)
	h := NewCommentHandler(commentService)

	router := gin.New()
	router.GET("/api/comments", h.List)
	router.POST("/api/comments", h.Create)
	router.DELETE("/api/comments", h.Delete)
	router.GET("/api/admin/comments", h.AdminList)
	router.DELETE("/api/admin/comments/:id", h.AdminDelete)
	return router, db
}

type commentsBody struct {
	Comments []*dto.CommentNode `json:"comments"`
}

func TestCommentHandler_List_Tree(t *testing.T) {
	router, db := setupCommentRouter(t)

	root := testutil.TestComment(t, db, "post-1", testutil.WithContent("root"))
	testutil.TestComment(t, db, "post-1", testutil.WithParent(root.ID), testutil.WithContent("reply"))
	testutil.TestComment(t, db, "post-2")

	w := performRequest(router, http.MethodGet, "/api/comments?subjectId=post-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[commentsBody](t, w)
	require.Len(t, body.Comments, 1)
	assert.Equal(t, "root", body.Comments[0].Content)
	require.Len(t, body.Comments[0].Replies, 1)
	assert.Equal(t, "reply", body.Comments[0].Replies[0].Content)
	assert.Equal(t, "tester@example.com", body.Comments[0].AuthorEmail)
	assert.Equal(t, "tester@example.com", body.Comments[0].Replies[0].AuthorEmail)
}

func TestCommentHandler_List_LegacyParam(t *testing.T) {
	router, db := setupCommentRouter(t)
	testutil.TestComment(t, db, "post-1")

	w := performRequest(router, http.MethodGet, "/api/comments?blogPostId=post-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[commentsBody](t, w).Comments, 1)
}

func TestCommentHandler_List_MissingSubject(t *testing.T) {
	router, _ := setupCommentRouter(t)

	w := performRequest(router, http.MethodGet, "/api/comments", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Subject ID is required", parseError(t, w).Error)
}

func TestCommentHandler_List_Empty(t *testing.T) {
	router, _ := setupCommentRouter(t)

	w := performRequest(router, http.MethodGet, "/api/comments?subjectId=nothing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"comments":[]}`, w.Body.String())
}

func TestCommentHandler_Create(t *testing.T) {
	router, _ := setupCommentRouter(t)

	w := performRequest(router, http.MethodPost, "/api/comments", gin.H{
		"subjectId":   "post-1",
		"authorName":  "  Ada ",
		"authorEmail": "ADA@Example.com",
		"content":     "Nice write-up",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode[struct {
		Comment struct {
			ID          string `json:"id"`
			AuthorName  string `json:"author_name"`
			AuthorEmail string `json:"author_email"`
		} `json:"comment"`
		Message string `json:"message"`
	}](t, w)
	assert.NotEmpty(t, body.Comment.ID)
	assert.Equal(t, "Ada", body.Comment.AuthorName)
	assert.Equal(t, "ada@example.com", body.Comment.AuthorEmail)
	assert.Equal(t, "Comment posted successfully", body.Message)
}

func TestCommentHandler_Create_Validation(t *testing.T) {
	router, db := setupCommentRouter(t)
	other := testutil.TestComment(t, db, "post-2")

	tests := []struct {
		name   string
		body   gin.H
		status int
		msg    string
	}{
		{
			name:   "missing fields",
			body:   gin.H{"subjectId": "post-1", "authorName": "Ada"},
			status: http.StatusBadRequest,
			msg:    "Missing required fields: subjectId, authorName, authorEmail, content",
		},
		{
			name:   "bad email",
			body:   gin.H{"subjectId": "post-1", "authorName": "Ada", "authorEmail": "nope", "content": "hi"},
			status: http.StatusBadRequest,
			msg:    "Invalid email format",
		},
		{
			name:   "parent in other subject",
			body:   gin.H{"subjectId": "post-1", "authorName": "Ada", "authorEmail": "a@b.co", "content": "hi", "parentId": other.ID},
			status: http.StatusNotFound,
			msg:    "Parent comment not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/comments", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, parseError(t, w).Error)
		})
	}
}

func TestCommentHandler_Create_InvalidJSON(t *testing.T) {
	router, _ := setupCommentRouter(t)

	w := performRequest(router, http.MethodPost, "/api/comments", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeParamError, parseError(t, w).Code)
}

func TestCommentHandler_Delete(t *testing.T) {
	router, db := setupCommentRouter(t)
	root := testutil.TestComment(t, db, "post-1", testutil.WithContent("Great post!"), testutil.WithAuthor("Bob"))
	testutil.TestComment(t, db, "post-1", testutil.WithParent(root.ID))

	w := performRequest(router, http.MethodDelete, "/api/comments?commentId="+root.ID+"&adminKey=wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized: Invalid admin key", parseError(t, w).Error)

	w = performRequest(router, http.MethodDelete, "/api/comments?commentId="+root.ID+"&adminKey="+testDeleteKey, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Message        string             `json:"message"`
		DeletedComment dto.DeletedComment `json:"deletedComment"`
	}](t, w)
	assert.Equal(t, "Comment deleted successfully", body.Message)
	assert.Equal(t, root.ID, body.DeletedComment.ID)
	assert.Equal(t, "Bob", body.DeletedComment.Author)
	assert.Equal(t, "Great post!...", body.DeletedComment.Preview)
	assert.EqualValues(t, 2, body.DeletedComment.Removed)

	w = performRequest(router, http.MethodDelete, "/api/comments?commentId="+root.ID+"&adminKey="+testDeleteKey, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentHandler_Delete_MissingID(t *testing.T) {
	router, _ := setupCommentRouter(t)

	w := performRequest(router, http.MethodDelete, "/api/comments?adminKey="+testDeleteKey, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Comment ID is required", parseError(t, w).Error)
}

func TestCommentHandler_AdminList(t *testing.T) {
	router, db := setupCommentRouter(t)
	for i := 0; i < 3; i++ {
		testutil.TestComment(t, db, "post-1")
	}
	testutil.TestComment(t, db, "post-2", testutil.Unapproved())

	w := performRequest(router, http.MethodGet, "/api/admin/comments?page=1&pageSize=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	page := decode[struct {
		Total    int64   `json:"total"`
		Page     int     `json:"page"`
		PageSize int     `json:"pageSize"`
		Items    []gin.H `json:"items"`
	}](t, w)
	assert.EqualValues(t, 4, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.Len(t, page.Items, 2)

	w = performRequest(router, http.MethodGet, "/api/admin/comments?subjectId=post-2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestCommentHandler_AdminDelete(t *testing.T) {
	router, db := setupCommentRouter(t)
	c := testutil.TestComment(t, db, "post-1")

	w := performRequest(router, http.MethodDelete, "/api/admin/comments/"+c.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodDelete, "/api/admin/comments/"+c.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Comment not found", parseError(t, w).Error)
}
