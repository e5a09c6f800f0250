package email

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/qs3c/portfolio_server/config"
)

// SendFunc 发送函数签名，与 smtp.SendMail 一致，测试时可替换
type SendFunc func(addr string, a sasl.Client, from string, to []string, r io.Reader) error

type Service struct {
	cfg  *config.EmailConfig
	send SendFunc
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg, send: smtp.SendMail}
}

// WithSender 替换发送实现
func (s *Service) WithSender(fn SendFunc) *Service {
	s.send = fn
	return s
}

// Enabled 是否配置了 SMTP 和收件人
func (s *Service) Enabled() bool {
	return s != nil && s.cfg.SMTPHost != "" && s.cfg.NotifyTo != ""
}

// CommentNotice 新评论通知内容
type CommentNotice struct {
	SubjectID  string
	AuthorName string
	Content    string
	IsReply    bool
	CreatedAt  time.Time
}

// SendCommentNotification 新评论通知站长
func (s *Service) SendCommentNotification(n *CommentNotice) error {
	kind := "comment"
	if n.IsReply {
		kind = "reply"
	}
	subject := headerSafe.Replace(fmt.Sprintf("New %s from %s", kind, n.AuthorName))

	link := ""
	if s.cfg.SiteURL != "" {
		link = fmt.Sprintf(`<p><a href="%s">Open site</a></p>`, html.EscapeString(s.cfg.SiteURL))
	}
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">New %s</h2>
        <p><strong>%s</strong> on <code>%s</code> at %s:</p>
        <blockquote style="background-color: #f3f4f6; padding: 15px; margin: 20px 0;">%s</blockquote>
        %s
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">This message was sent automatically.</p>
    </div>
</body>
</html>
`, kind,
		html.EscapeString(n.AuthorName),
		html.EscapeString(n.SubjectID),
		n.CreatedAt.UTC().Format(time.RFC1123),
		html.EscapeString(n.Content),
		link,
	)

	return s.sendHTML(splitAddrs(s.cfg.NotifyTo), subject, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to []string, subject, body string) error {
	var msg bytes.Buffer
	msg.WriteString("From: " + s.cfg.From + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth sasl.Client
	if s.cfg.Username != "" {
		auth = sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return s.send(addr, auth, s.cfg.From, to, &msg)
}

var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

func splitAddrs(s string) []string {
	var out []string
	for _, addr := range strings.Split(s, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
