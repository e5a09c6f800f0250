package service

import (
	"context"
	"errors"
	"mime/multipart"
	"net"
	"net/http"
	"path"
	"time"

	"github.com/qs3c/portfolio_server/config"
	"github.com/qs3c/portfolio_server/internal/pkg/apperr"
	"github.com/qs3c/portfolio_server/internal/pkg/jwt"
	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/metrics"
	"github.com/qs3c/portfolio_server/internal/pkg/storage"
	"github.com/qs3c/portfolio_server/internal/pkg/uploader"
)

const (
	defaultLinkExpire  = 15 * time.Minute
	defaultTokenExpire = 15 * time.Minute
)

var (
	ErrNoFile = &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "No file provided",
	}
	ErrProxiedTooLarge = &apperr.Error{
		Kind:            apperr.KindCapacity,
		Message:         "File too large for server upload",
		Suggestion:      "Use direct upload for files over 4.5MB",
		UseDirectUpload: true,
	}
	ErrInvalidUploadToken  = apperr.Auth("Invalid or expired upload token")
	ErrUploadedFileMissing = apperr.NotFound("Uploaded file not found")
)

type UploadService struct {
	store storage.Storage
	rules uploader.Rules
	cfg   *config.Config
	now   func() time.Time
}

func NewUploadService(store storage.Storage, cfg *config.Config) *UploadService {
	rules := uploader.DefaultRules()
	if len(cfg.Upload.AllowedTypes) > 0 {
		rules.AllowedTypes = cfg.Upload.AllowedTypes
	}
	if cfg.Upload.MaxImageSize > 0 {
		rules.MaxImageSize = cfg.Upload.MaxImageSize
	}
	if cfg.Upload.MaxPDFSize > 0 {
		rules.MaxPDFSize = cfg.Upload.MaxPDFSize
	}
	return &UploadService{
		store: store,
		rules: rules,
		cfg:   cfg,
		now:   time.Now,
	}
}

// ProxiedMaxBody 代理上传请求体上限
func (s *UploadService) ProxiedMaxBody() int64 {
	if s.cfg.Upload.ProxiedMaxBody > 0 {
		return s.cfg.Upload.ProxiedMaxBody
	}
	return uploader.DefaultRoutingThreshold + uploader.MiB/2
}

// Proxied 服务端中转上传
func (s *UploadService) Proxied(ctx context.Context, fh *multipart.FileHeader) (resp *uploader.ProxiedResponse, err error) {
	defer func() { s.observe("proxied", err) }()

	if fh == nil {
		return nil, ErrNoFile
	}
	if fh.Size > s.ProxiedMaxBody() {
		return nil, ErrProxiedTooLarge
	}
	contentType := fh.Header.Get("Content-Type")
	if err := s.check(contentType, fh.Size); err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Upstream("Failed to read uploaded file", err)
	}
	defer f.Close()

	now := s.now()
	name := uploader.StorageName(fh.Filename, now)
	key := storage.Join(s.cfg.Storage.Prefix, name)

	timeout := s.cfg.Upload.ProxiedTimeout()
	if timeout <= 0 {
		timeout = uploader.DefaultProxiedTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url, err := s.store.Put(ctx, key, f, fh.Size, contentType)
	if err != nil {
		return nil, storageError(err)
	}

	return &uploader.ProxiedResponse{
		URL:          url,
		DownloadURL:  url,
		Filename:     name,
		OriginalName: fh.Filename,
		Size:         fh.Size,
		Type:         contentType,
		Success:      true,
		UploadTime:   now.UnixMilli(),
	}, nil
}

// Direct 直传握手：签发预签名 PUT 与完成令牌
func (s *UploadService) Direct(ctx context.Context, req *uploader.DirectRequest) (auth *uploader.DirectAuthorization, err error) {
	defer func() {
		if err != nil {
			s.observe("direct", err)
		}
	}()

	if err := s.check(req.ContentType, req.Size); err != nil {
		return nil, err
	}

	key := storage.Join(s.cfg.Storage.Prefix, uploader.StorageName(path.Base(req.Pathname), s.now()))

	linkExpire := s.cfg.Storage.LinkExpire()
	if linkExpire <= 0 {
		linkExpire = defaultLinkExpire
	}
	signed, err := s.store.SignPut(ctx, key, req.ContentType, linkExpire)
	if err != nil {
		return nil, storageError(err)
	}

	tokenExpire := time.Duration(s.cfg.Upload.TokenExpireMinutes) * time.Minute
	if tokenExpire <= 0 {
		tokenExpire = defaultTokenExpire
	}
	token, err := jwt.GenerateUploadToken(jwt.UploadClaims{
		Pathname:    key,
		ContentType: req.ContentType,
		Size:        req.Size,
		Payload:     req.Payload,
	}, s.cfg.JWT.Secret, tokenExpire)
	if err != nil {
		return nil, apperr.Upstream("Failed to authorize upload", err)
	}

	headers := make(map[string]string, len(signed.Headers))
	for k := range signed.Headers {
		headers[k] = signed.Headers.Get(k)
	}
	return &uploader.DirectAuthorization{
		UploadURL: signed.URL,
		Method:    signed.Method,
		Headers:   headers,
		Pathname:  key,
		Token:     token,
		ExpiresAt: signed.Expires,
	}, nil
}

// Complete 直传完成回调，确认对象存在且符合规则
func (s *UploadService) Complete(ctx context.Context, token string) (resp *uploader.CompleteResponse, err error) {
	defer func() { s.observe("direct", err) }()

	claims, err := jwt.ParseUploadToken(token, s.cfg.JWT.Secret)
	if err != nil {
		return nil, ErrInvalidUploadToken
	}

	info, err := s.store.Stat(ctx, claims.Pathname)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrUploadedFileMissing
		}
		return nil, storageError(err)
	}

	// 实际写入的对象同样受大小上限约束
	if err := s.check(claims.ContentType, info.Size); err != nil {
		if derr := s.store.Delete(ctx, claims.Pathname); derr != nil {
			log.Warnf("remove rejected upload %s: %v", claims.Pathname, derr)
		}
		return nil, err
	}

	url := s.store.URL(claims.Pathname)
	return &uploader.CompleteResponse{
		URL:         url,
		DownloadURL: url,
		Pathname:    claims.Pathname,
		ContentType: claims.ContentType,
		Size:        info.Size,
		Payload:     claims.Payload,
	}, nil
}

// check 规则错误转换为对外错误
func (s *UploadService) check(contentType string, size int64) error {
	err := s.rules.Check(contentType, size)
	if err == nil {
		return nil
	}
	switch uploader.KindOf(err) {
	case uploader.KindUnsupportedType:
		return &apperr.Error{
			Kind:       apperr.KindValidation,
			Message:    uploader.UserMessage(err),
			Suggestion: "Supported formats: PDF, JPG, PNG, GIF, WebP",
		}
	default:
		return &apperr.Error{
			Kind:    apperr.KindCapacity,
			Message: uploader.UserMessage(err),
		}
	}
}

// storageError 存储错误分类：凭证 401，超时 408，网络 503，其余 500
func storageError(err error) error {
	log.Errorf("storage operation failed: %v", err)

	var ne net.Error
	switch {
	case storage.IsAuthError(err):
		return &apperr.Error{
			Kind:       apperr.KindAuth,
			Message:    "Storage authentication failed",
			Suggestion: "Check the storage credentials configuration",
			Debug:      err.Error(),
			Err:        err,
		}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return &apperr.Error{
			Kind:       apperr.KindUpstream,
			Status:     http.StatusRequestTimeout,
			Message:    "Upload timeout",
			Suggestion: "Try again or use direct upload for large files",
			Debug:      err.Error(),
			Err:        err,
		}
	case errors.As(err, &ne):
		return &apperr.Error{
			Kind:       apperr.KindUpstream,
			Status:     http.StatusServiceUnavailable,
			Message:    "Storage service unavailable",
			Suggestion: "Try again in a few minutes",
			Debug:      err.Error(),
			Err:        err,
		}
	default:
		return apperr.Upstream("Upload failed", err)
	}
}

func (s *UploadService) observe(path string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	metrics.Uploads.WithLabelValues(path, outcome).Inc()
}
