// Package uploader 分级上传：小文件经服务端代理上传，大文件或代理拒收时直传对象存储。
//
// 上传规则与握手协议同时被服务端使用，保证两端校验一致。
package uploader

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	MiB = 1 << 20

	DefaultRoutingThreshold = 4 * MiB
	DefaultMaxImageSize     = 10 * MiB
	DefaultMaxPDFSize       = 20 * MiB
	DefaultProxiedTimeout   = 30 * time.Second
)

var DefaultAllowedTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// Rules 类型白名单与按类型的大小上限
type Rules struct {
	AllowedTypes []string
	MaxImageSize int64
	MaxPDFSize   int64
}

func DefaultRules() Rules {
	return Rules{
		AllowedTypes: DefaultAllowedTypes,
		MaxImageSize: DefaultMaxImageSize,
		MaxPDFSize:   DefaultMaxPDFSize,
	}
}

// Check 先校验类型再校验大小
func (r Rules) Check(contentType string, size int64) error {
	if !r.Allowed(contentType) {
		return &Error{
			Kind:    KindUnsupportedType,
			Message: msgUnsupportedType,
		}
	}
	if limit := r.Limit(contentType); limit > 0 && size > limit {
		what := "Image"
		if contentType == "application/pdf" {
			what = "PDF"
		}
		return &Error{
			Kind:    KindTooLarge,
			Message: fmt.Sprintf("%s files must be under %dMB", what, limit/MiB),
		}
	}
	return nil
}

func (r Rules) Allowed(contentType string) bool {
	for _, t := range r.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// Limit 0 表示不限制
func (r Rules) Limit(contentType string) int64 {
	switch {
	case contentType == "application/pdf":
		return r.MaxPDFSize
	case strings.HasPrefix(contentType, "image/"):
		return r.MaxImageSize
	}
	return 0
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeName 非 [A-Za-z0-9.-] 字符替换为下划线
func SanitizeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// StorageName 存储文件名 {unixMillis}-{清洗后的原文件名}
func StorageName(name string, now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), SanitizeName(name))
}
