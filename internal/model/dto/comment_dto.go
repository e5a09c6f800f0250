package dto

import "time"

// CreateCommentRequest 创建评论请求，字段校验在 service 层完成
type CreateCommentRequest struct {
	SubjectID   string  `json:"subjectId"`
	BlogPostID  string  `json:"blogPostId"` // 旧字段名，等同 subjectId
	AuthorName  string  `json:"authorName"`
	AuthorEmail string  `json:"authorEmail"`
	Content     string  `json:"content"`
	ParentID    *string `json:"parentId,omitempty"`
}

// Subject 优先取 subjectId
func (r *CreateCommentRequest) Subject() string {
	if r.SubjectID != "" {
		return r.SubjectID
	}
	return r.BlogPostID
}

// CommentNode 评论树节点
type CommentNode struct {
	ID          string         `json:"id"`
	SubjectID   string         `json:"subject_id"`
	ParentID    *string        `json:"parent_id"`
	AuthorName  string         `json:"author_name"`
	AuthorEmail string         `json:"author_email"`
	Content     string         `json:"content"`
	CreatedAt   time.Time      `json:"created_at"`
	Replies     []*CommentNode `json:"replies"`
}

// DeletedComment 删除结果摘要
type DeletedComment struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Preview string `json:"preview"`
	// Removed 包含所有被级联删除的回复
	Removed int64 `json:"removed"`
}

// AdminCommentQuery 管理端评论列表参数
type AdminCommentQuery struct {
	SubjectID string `form:"subjectId"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"pageSize,default=20"`
}
