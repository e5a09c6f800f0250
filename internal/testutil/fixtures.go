package testutil

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/portfolio_server/internal/model"
)

// TestPassword 测试管理员的明文密码
const TestPassword = "correct-horse-battery"

// TestAdmin 创建测试管理员
func TestAdmin(t *testing.T, db *gorm.DB, opts ...func(*model.Admin)) *model.Admin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	hashStr := string(hash)
	admin := &model.Admin{
		Username:     fmt.Sprintf("admin_%d", time.Now().UnixNano()%100000),
		PasswordHash: &hashStr,
	}

	for _, opt := range opts {
		opt(admin)
	}

	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}
	return admin
}

// WithAdminUsername 设置管理员用户名
func WithAdminUsername(username string) func(*model.Admin) {
	return func(a *model.Admin) {
		a.Username = username
	}
}

// TestComment 创建测试评论，按调用顺序递增 created_at
func TestComment(t *testing.T, db *gorm.DB, subjectID string, opts ...func(*model.Comment)) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		SubjectID:   subjectID,
		AuthorName:  "Tester",
		AuthorEmail: "tester@example.com",
		Content:     fmt.Sprintf("Test comment %d", time.Now().UnixNano()%10000),
		IsApproved:  true,
		CreatedAt:   nextTick(),
	}

	for _, opt := range opts {
		opt(comment)
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}
	return comment
}

// WithParent 设置父评论
func WithParent(parentID string) func(*model.Comment) {
	return func(c *model.Comment) {
		c.ParentID = &parentID
	}
}

// WithContent 设置评论内容
func WithContent(content string) func(*model.Comment) {
	return func(c *model.Comment) {
		c.Content = content
	}
}

// WithAuthor 设置评论作者
func WithAuthor(name string) func(*model.Comment) {
	return func(c *model.Comment) {
		c.AuthorName = name
	}
}

// Unapproved 标记为未审核
func Unapproved() func(*model.Comment) {
	return func(c *model.Comment) {
		c.IsApproved = false
	}
}

// TestBlogPost 创建测试文章
func TestBlogPost(t *testing.T, db *gorm.DB, opts ...func(*model.BlogPost)) *model.BlogPost {
	t.Helper()

	post := &model.BlogPost{
		Title:    fmt.Sprintf("Test Post %d", time.Now().UnixNano()%10000),
		Excerpt:  "excerpt",
		Content:  "# Hello\n\nbody text",
		Date:     "2024-01-15",
		ReadTime: "1 min read",
		Tags:     model.StringArray{"go"},
		ImageURL: "https://cdn.example.com/uploads/1-cover.png",
	}

	for _, opt := range opts {
		opt(post)
	}

	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create test blog post: %v", err)
	}
	return post
}

// WithPostDate 设置文章日期
func WithPostDate(date string) func(*model.BlogPost) {
	return func(p *model.BlogPost) {
		p.Date = date
	}
}

// WithPostTitle 设置文章标题
func WithPostTitle(title string) func(*model.BlogPost) {
	return func(p *model.BlogPost) {
		p.Title = title
	}
}

// TestProject 创建测试项目
func TestProject(t *testing.T, db *gorm.DB, opts ...func(*model.Project)) *model.Project {
	t.Helper()

	project := &model.Project{
		Title:       fmt.Sprintf("Test Project %d", time.Now().UnixNano()%10000),
		Description: "description",
		PDFURL:      "https://cdn.example.com/uploads/1-plan.pdf",
		Category:    model.CategoryUrbanEnvironmental,
		Location:    "Portland, OR",
		Year:        "2023",
		Status:      model.ProjectCompleted,
		CreatedAt:   nextTick(),
	}

	for _, opt := range opts {
		opt(project)
	}

	if err := db.Create(project).Error; err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	return project
}

// WithCategory 设置项目分类
func WithCategory(category string) func(*model.Project) {
	return func(p *model.Project) {
		p.Category = category
	}
}

// TestCertificate 创建测试证书
func TestCertificate(t *testing.T, db *gorm.DB, opts ...func(*model.Certificate)) *model.Certificate {
	t.Helper()

	cert := &model.Certificate{
		Title:      fmt.Sprintf("Test Certificate %d", time.Now().UnixNano()%10000),
		Issuer:     "Example Board",
		DateIssued: "2022-06-01",
		FileName:   "cert.pdf",
		FileURL:    "https://cdn.example.com/uploads/1-cert.pdf",
		FileSize:   1024,
	}

	for _, opt := range opts {
		opt(cert)
	}

	if err := db.Create(cert).Error; err != nil {
		t.Fatalf("Failed to create test certificate: %v", err)
	}
	return cert
}

// WithDateIssued 设置颁发日期
func WithDateIssued(date string) func(*model.Certificate) {
	return func(c *model.Certificate) {
		c.DateIssued = date
	}
}

// TestResume 创建测试简历
func TestResume(t *testing.T, db *gorm.DB, fileName string) *model.Resume {
	t.Helper()

	resume := &model.Resume{
		FileName:   fileName,
		FileURL:    "https://cdn.example.com/uploads/" + fileName,
		FileSize:   2048,
		UploadedAt: nextTick(),
	}
	if err := db.Create(resume).Error; err != nil {
		t.Fatalf("Failed to create test resume: %v", err)
	}
	return resume
}

// TestPageView 创建测试访问事件
func TestPageView(t *testing.T, db *gorm.DB, pageType, pageID, ip string) *model.PageView {
	t.Helper()

	view := &model.PageView{
		PageType:  pageType,
		PageID:    pageID,
		IPAddress: ip,
		UserAgent: "test-agent",
		CreatedAt: nextTick(),
	}
	if err := db.Create(view).Error; err != nil {
		t.Fatalf("Failed to create test page view: %v", err)
	}
	return view
}

var clock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// nextTick 返回单调递增的时间，保证排序稳定
func nextTick() time.Time {
	clock = clock.Add(time.Second)
	return clock
}
