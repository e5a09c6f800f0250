// Package storage 对象存储抽象，支持阿里云 OSS、S3 兼容服务与内存实现。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/portfolio_server/config"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo 对象元信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// SignedRequest 预签名上传请求，客户端按原样发起
type SignedRequest struct {
	URL     string      `json:"url"`
	Method  string      `json:"method"`
	Headers http.Header `json:"headers,omitempty"`
	Expires time.Time   `json:"expiresAt"`
}

// Storage 对象存储
type Storage interface {
	// Put 上传对象并返回公开访问地址
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	// SignPut 生成直传用的预签名 PUT 请求
	SignPut(ctx context.Context, key, contentType string, expire time.Duration) (*SignedRequest, error)
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// URL 对象公开访问地址
	URL(key string) string
}

// New 按配置创建存储实现
func New(ctx context.Context, cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Provider {
	case "oss":
		return NewOSS(&cfg.OSS)
	case "s3":
		return NewS3(ctx, &cfg.S3)
	case "memory":
		return NewMemory("http://localhost/storage"), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// KeyFromURL 从公开地址反解对象 key，非本存储的地址返回 false
func KeyFromURL(s Storage, rawURL string) (string, bool) {
	base := strings.TrimSuffix(s.URL(""), "/") + "/"
	if !strings.HasPrefix(rawURL, base) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, base)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key, key != ""
}

// Join 拼接 key 前缀
func Join(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// 凭证失效或无权限时服务端返回的错误码，OSS 与 S3 一致
var authErrorCodes = map[string]bool{
	"AccessDenied":          true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
	"InvalidToken":          true,
}

// IsAuthError 判断是否为存储凭证或权限错误
func IsAuthError(err error) bool {
	var se oss.ServiceError
	if errors.As(err, &se) {
		return authErrorCodes[se.Code] || se.StatusCode == http.StatusForbidden
	}
	var api interface{ ErrorCode() string }
	if errors.As(err, &api) {
		return authErrorCodes[api.ErrorCode()]
	}
	return false
}
