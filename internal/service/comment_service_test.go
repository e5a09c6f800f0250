package service

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/apperr"
	"github.com/qs3c/portfolio_server/internal/pkg/email"
	"github.com/qs3c/portfolio_server/internal/repository"
	"github.com/qs3c/portfolio_server/internal/testutil"
)

const testDeleteKey = "s3cret-delete-key"

func setupCommentService(t *testing.T) (*CommentService, *repository.CommentRepository) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	commentRepo := repository.NewCommentRepository(db)

	cfg := &config.Config{}
	cfg.Admin.DeleteKey = testDeleteKey

	return NewCommentService(commentRepo, nil, cfg), commentRepo
}

func validCommentRequest(subjectID string) *dto.CreateCommentRequest {
	return &dto.CreateCommentRequest{
		SubjectID:   subjectID,
		AuthorName:  "  Ada  ",
		AuthorEmail: "Ada@Example.COM",
		Content:     "  Great post!  ",
	}
}

func TestCommentService_Create_Success(t *testing.T) {
	service, repo := setupCommentService(t)

	node, err := service.Create(validCommentRequest("post-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, node.ID)
	assert.Equal(t, "Ada", node.AuthorName)
	assert.Equal(t, "Great post!", node.Content)
	assert.Nil(t, node.ParentID)
	assert.Empty(t, node.Replies)

	stored, err := repo.GetByID(node.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.AuthorEmail)
	assert.True(t, stored.IsApproved)
}

func TestCommentService_Create_LegacySubjectField(t *testing.T) {
	service, _ := setupCommentService(t)

	req := validCommentRequest("")
	req.BlogPostID = "legacy-post"

	node, err := service.Create(req)
	require.NoError(t, err)
	assert.Equal(t, "legacy-post", node.SubjectID)
}

func TestCommentService_Create_Validation(t *testing.T) {
	service, _ := setupCommentService(t)

	tests := []struct {
		name   string
		mutate func(*dto.CreateCommentRequest)
		want   error
	}{
		{"missing subject", func(r *dto.CreateCommentRequest) { r.SubjectID = "" }, ErrCommentFields},
		{"missing name", func(r *dto.CreateCommentRequest) { r.AuthorName = "   " }, ErrCommentFields},
		{"missing content", func(r *dto.CreateCommentRequest) { r.Content = "" }, ErrCommentFields},
		{"bad email", func(r *dto.CreateCommentRequest) { r.AuthorEmail = "not-an-email" }, ErrInvalidEmail},
		{"whitespace content", func(r *dto.CreateCommentRequest) { r.Content = "   " }, ErrCommentLength},
		{"too long", func(r *dto.CreateCommentRequest) { r.Content = strings.Repeat("a", 1001) }, ErrCommentLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCommentRequest("post-1")
			tt.mutate(req)

			_, err := service.Create(req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestCommentService_Create_MaxLengthCountsRunes(t *testing.T) {
	service, _ := setupCommentService(t)

	req := validCommentRequest("post-1")
	req.Content = strings.Repeat("评", MaxCommentLength)

	_, err := service.Create(req)
	assert.NoError(t, err)
}

func TestCommentService_Create_Reply(t *testing.T) {
	service, _ := setupCommentService(t)

	parent, err := service.Create(validCommentRequest("post-1"))
	require.NoError(t, err)

	req := validCommentRequest("post-1")
	req.ParentID = &parent.ID
	reply, err := service.Create(req)
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)
}

func TestCommentService_Create_ParentInOtherSubject(t *testing.T) {
	service, _ := setupCommentService(t)

	parent, err := service.Create(validCommentRequest("post-1"))
	require.NoError(t, err)

	req := validCommentRequest("post-2")
	req.ParentID = &parent.ID
	_, err = service.Create(req)
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestCommentService_Create_SendsNotification(t *testing.T) {
	db := testutil.SetupTestDB(t)

	var (
		mu   sync.Mutex
		body string
		sent = make(chan struct{}, 1)
	)
	notifier := email.NewService(&config.EmailConfig{
		SMTPHost: "smtp.example.com",
		SMTPPort: 25,
		From:     "site@example.com",
		NotifyTo: "owner@example.com",
	}).WithSender(func(addr string, a sasl.Client, from string, to []string, r io.Reader) error {
		data, _ := io.ReadAll(r)
		mu.Lock()
		body = string(data)
		mu.Unlock()
		sent <- struct{}{}
		return nil
	})

	service := NewCommentService(repository.NewCommentRepository(db), notifier, &config.Config{})
	_, err := service.Create(validCommentRequest("post-1"))
	require.NoError(t, err)

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not sent")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, body, "Great post!")
}

func TestCommentService_Tree(t *testing.T) {
	service, _ := setupCommentService(t)

	root, err := service.Create(validCommentRequest("post-1"))
	require.NoError(t, err)

	reply := validCommentRequest("post-1")
	reply.ParentID = &root.ID
	child, err := service.Create(reply)
	require.NoError(t, err)

	nested := validCommentRequest("post-1")
	nested.ParentID = &child.ID
	_, err = service.Create(nested)
	require.NoError(t, err)

	_, err = service.Create(validCommentRequest("post-2"))
	require.NoError(t, err)

	nodes, err := service.Tree("post-1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Len(t, nodes[0].Replies, 1)
	require.Len(t, nodes[0].Replies[0].Replies, 1)
	assert.Equal(t, child.ID, nodes[0].Replies[0].ID)
	assert.Equal(t, root.AuthorEmail, nodes[0].AuthorEmail)
	assert.NotEmpty(t, nodes[0].Replies[0].Replies[0].AuthorEmail)
}

func TestCommentService_Tree_SkipsUnapprovedAndOrphans(t *testing.T) {
	db := testutil.SetupTestDB(t)
	service := NewCommentService(repository.NewCommentRepository(db), nil, &config.Config{})

	root := testutil.TestComment(t, db, "post-1")
	hidden := testutil.TestComment(t, db, "post-1", testutil.Unapproved())
	testutil.TestComment(t, db, "post-1", testutil.WithParent(hidden.ID))
	testutil.TestComment(t, db, "post-1", testutil.WithParent(root.ID))

	nodes, err := service.Tree("post-1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, root.ID, nodes[0].ID)
	assert.Len(t, nodes[0].Replies, 1)
}

func TestCommentService_Tree_RequiresSubject(t *testing.T) {
	service, _ := setupCommentService(t)

	_, err := service.Tree(" ")
	assert.ErrorIs(t, err, ErrSubjectRequired)
}

func TestCommentService_Delete(t *testing.T) {
	service, repo := setupCommentService(t)

	root, err := service.Create(validCommentRequest("post-1"))
	require.NoError(t, err)
	reply := validCommentRequest("post-1")
	reply.ParentID = &root.ID
	child, err := service.Create(reply)
	require.NoError(t, err)

	deleted, err := service.Delete(root.ID, testDeleteKey)
	require.NoError(t, err)
	assert.Equal(t, root.ID, deleted.ID)
	assert.Equal(t, "Ada", deleted.Author)
	assert.Equal(t, "Great post!...", deleted.Preview)
	assert.Equal(t, int64(2), deleted.Removed)

	_, err = repo.GetByID(child.ID)
	assert.Error(t, err)
}

func TestCommentService_Delete_AuthChecksFirst(t *testing.T) {
	service, _ := setupCommentService(t)

	_, err := service.Delete("", "wrong")
	assert.ErrorIs(t, err, ErrInvalidAdminKey)
	assert.Equal(t, 401, apperr.HTTPStatus(apperr.KindOf(err)))

	_, err = service.Delete("missing", "")
	assert.ErrorIs(t, err, ErrInvalidAdminKey)

	_, err = service.Delete("", testDeleteKey)
	assert.ErrorIs(t, err, ErrCommentIDRequired)

	_, err = service.Delete("missing", testDeleteKey)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestCommentService_Delete_NoConfiguredKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	service := NewCommentService(repository.NewCommentRepository(db), nil, &config.Config{})

	_, err := service.Delete("any", "")
	assert.True(t, errors.Is(err, ErrInvalidAdminKey))
}

func TestCommentService_List(t *testing.T) {
	service, _ := setupCommentService(t)

	for i := 0; i < 3; i++ {
		_, err := service.Create(validCommentRequest("post-1"))
		require.NoError(t, err)
	}
	_, err := service.Create(validCommentRequest("post-2"))
	require.NoError(t, err)

	items, total, err := service.List(&dto.AdminCommentQuery{SubjectID: "post-1", Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	_, total, err = service.List(&dto.AdminCommentQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short...", Preview("short"))
	assert.Equal(t, strings.Repeat("x", 50)+"...", Preview(strings.Repeat("x", 80)))
	assert.Equal(t, strings.Repeat("评", 50)+"...", Preview(strings.Repeat("评", 60)))
}
