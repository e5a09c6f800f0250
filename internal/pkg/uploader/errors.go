package uploader

import (
	"github.com/pkg/errors"
)

// Kind 面向用户的失败分类
type Kind int

const (
	// KindNetwork 网络或服务端临时故障，可提示重试
	KindNetwork Kind = iota
	KindUnsupportedType
	KindTooLarge
	// KindAuth 认证或配置错误，重试无意义
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedType:
		return "unsupported_type"
	case KindTooLarge:
		return "too_large"
	case KindAuth:
		return "auth"
	default:
		return "network"
	}
}

const (
	msgUnsupportedType = "File type not supported. Please upload PDF, JPG, PNG, GIF, or WebP files."
	msgNetwork         = "Network error during upload. Please try again."
	msgTimeout         = "Upload timeout. Please try again."
)

// Error 上传失败
type Error struct {
	Kind    Kind
	Message string
	Status  int
	// UseDirect 代理路径因体积拒收，可改走直传
	UseDirect bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf 未分类错误按网络错误处理
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNetwork
}

// UserMessage 面向用户的提示文本，服务端 5xx 的细节不直接展示
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" && (e.Kind != KindNetwork || e.Status < 500) {
		return e.Message
	}
	switch KindOf(err) {
	case KindUnsupportedType:
		return msgUnsupportedType
	case KindTooLarge:
		return "File is too large."
	case KindAuth:
		return "Upload is not authorized. Check your credentials or storage configuration."
	default:
		return msgNetwork
	}
}
