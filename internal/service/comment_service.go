package service

import (
	"crypto/subtle"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/model"
	"github.com/qs3c/portfolio_server/internal/model/dto"
	"github.com/qs3c/portfolio_server/internal/pkg/apperr"
	"github.com/qs3c/portfolio_server/internal/pkg/email"
	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/metrics"
	"github.com/qs3c/portfolio_server/internal/pkg/tree"
	"github.com/qs3c/portfolio_server/internal/repository"
)

const (
	MaxCommentLength = 1000
	previewLength    = 50
)

var (
	ErrSubjectRequired   = apperr.Validation("Subject ID is required")
	ErrCommentFields     = apperr.Validation("Missing required fields: subjectId, authorName, authorEmail, content")
	ErrInvalidEmail      = apperr.Validation("Invalid email format")
	ErrCommentLength     = apperr.Validation("Comment must be between 1 and 1000 characters")
	ErrCommentIDRequired = apperr.Validation("Comment ID is required")
	ErrCommentNotFound   = apperr.NotFound("Comment not found")
	ErrParentNotFound    = apperr.NotFound("Parent comment not found")
	ErrInvalidAdminKey   = apperr.Auth("Unauthorized: Invalid admin key")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type CommentService struct {
	commentRepo *repository.CommentRepository
	notifier    *email.Service
	cfg         *config.Config
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	notifier *email.Service,
	cfg *config.Config,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// Tree 获取主题下已审核评论组成的回复树
func (s *CommentService) Tree(subjectID string) ([]*dto.CommentNode, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, ErrSubjectRequired
	}

	comments, err := s.commentRepo.ListApprovedBySubject(subjectID)
	if err != nil {
		return nil, apperr.Upstream("Failed to fetch comments", err)
	}

	roots := tree.Build(comments,
		func(c *model.Comment) string { return c.ID },
		func(c *model.Comment) (string, bool) {
			if !c.IsReply() {
				return "", false
			}
			return *c.ParentID, true
		},
	)
	if n := tree.Count(roots); n < len(comments) {
		log.Debugf("comment tree for %s dropped %d orphaned replies", subjectID, len(comments)-n)
	}
	return toCommentNodes(roots), nil
}

func toCommentNodes(nodes []*tree.Node[*model.Comment]) []*dto.CommentNode {
	out := make([]*dto.CommentNode, 0, len(nodes))
	for _, n := range nodes {
		node := toCommentNode(n.Value)
		node.Replies = toCommentNodes(n.Children)
		out = append(out, node)
	}
	return out
}

func toCommentNode(c *model.Comment) *dto.CommentNode {
	return &dto.CommentNode{
		ID:          c.ID,
		SubjectID:   c.SubjectID,
		ParentID:    c.ParentID,
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
		Content:     c.Content,
		CreatedAt:   c.CreatedAt,
		Replies:     []*dto.CommentNode{},
	}
}

// Create 创建评论，新评论默认审核通过
func (s *CommentService) Create(req *dto.CreateCommentRequest) (*dto.CommentNode, error) {
	subjectID := strings.TrimSpace(req.Subject())
	name := strings.TrimSpace(req.AuthorName)
	addr := strings.ToLower(strings.TrimSpace(req.AuthorEmail))
	if subjectID == "" || name == "" || addr == "" || req.Content == "" {
		return nil, ErrCommentFields
	}
	if !emailPattern.MatchString(addr) {
		return nil, ErrInvalidEmail
	}

	// 下限按去除空白后计算，上限按原始内容计算
	content := strings.TrimSpace(req.Content)
	if content == "" || utf8.RuneCountInString(req.Content) > MaxCommentLength {
		return nil, ErrCommentLength
	}

	var parentID *string
	if req.ParentID != nil && *req.ParentID != "" {
		if _, err := s.commentRepo.GetInSubject(*req.ParentID, subjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, apperr.Upstream("Failed to create comment", err)
		}
		parentID = req.ParentID
	}

	comment := &model.Comment{
		SubjectID:   subjectID,
		ParentID:    parentID,
		AuthorName:  name,
		AuthorEmail: addr,
		Content:     content,
		IsApproved:  true,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, apperr.Upstream("Failed to create comment", err)
	}
	metrics.Comments.WithLabelValues("create").Inc()

	s.notify(comment)
	return toCommentNode(comment), nil
}

// notify 异步通知站长，失败只记录日志
func (s *CommentService) notify(c *model.Comment) {
	if !s.notifier.Enabled() {
		return
	}
	notice := &email.CommentNotice{
		SubjectID:  c.SubjectID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		IsReply:    c.IsReply(),
		CreatedAt:  c.CreatedAt,
	}
	go func() {
		if err := s.notifier.SendCommentNotification(notice); err != nil {
			log.Warnf("comment notification for %s failed: %v", c.ID, err)
		}
	}()
}

// Delete 凭管理密钥删除评论及其全部回复
func (s *CommentService) Delete(commentID, adminKey string) (*dto.DeletedComment, error) {
	if !s.checkAdminKey(adminKey) {
		return nil, ErrInvalidAdminKey
	}
	return s.DeleteByAdmin(commentID)
}

// DeleteByAdmin 已认证管理员删除评论
func (s *CommentService) DeleteByAdmin(commentID string) (*dto.DeletedComment, error) {
	if strings.TrimSpace(commentID) == "" {
		return nil, ErrCommentIDRequired
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, apperr.Upstream("Failed to delete comment", err)
	}

	removed, err := s.commentRepo.DeleteCascade(comment.ID)
	if err != nil {
		return nil, apperr.Upstream("Failed to delete comment", err)
	}
	metrics.Comments.WithLabelValues("delete").Inc()
	log.Infof("comment %s deleted with %d rows", comment.ID, removed)

	return &dto.DeletedComment{
		ID:      comment.ID,
		Author:  comment.AuthorName,
		Preview: Preview(comment.Content),
		Removed: removed,
	}, nil
}

// checkAdminKey 未配置密钥时一律拒绝
func (s *CommentService) checkAdminKey(key string) bool {
	expected := s.cfg.Admin.DeleteKey
	if key == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(expected)) == 1
}

// List 管理端分页列表
func (s *CommentService) List(q *dto.AdminCommentQuery) ([]*model.Comment, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	comments, total, err := s.commentRepo.List(q.SubjectID, q.Page, q.PageSize)
	if err != nil {
		return nil, 0, apperr.Upstream("Failed to fetch comments", err)
	}
	return comments, total, nil
}

// Preview 前 50 个字符加省略号
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}
