// Package apperr 定义对外可见的错误分类。
//
// 业务层返回 *Error，处理层按 Kind 映射 HTTP 状态码。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindCapacity
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindCapacity:
		return "capacity"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error 带分类的业务错误
type Error struct {
	Kind            Kind
	Message         string
	Debug           string
	Suggestion      string
	UseDirectUpload bool
	// Status 覆盖默认状态码，0 表示按 Kind 取默认值
	Status int
	Err    error
}

// 仅用于 errors.Is 按分类匹配
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrCapacity   = &Error{Kind: KindCapacity}
	ErrUpstream   = &Error{Kind: KindUpstream}
)

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 分类哨兵（无消息）按 Kind 匹配，其余按指针相等
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Err == nil {
		return t.Kind == e.Kind
	}
	return t == e
}

// HTTPStatus 返回错误对应的 HTTP 状态码
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return HTTPStatus(e.Kind)
}

func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindCapacity:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// KindOf 返回错误链中第一个 *Error 的分类
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As 取出错误链中的 *Error
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func Auth(message string) *Error       { return New(KindAuth, message) }
func Capacity(message string) *Error   { return New(KindCapacity, message) }

// Upstream 包装数据库或存储服务错误，细节写入 Debug
func Upstream(message string, err error) *Error {
	e := &Error{Kind: KindUpstream, Message: message, Err: err}
	if err != nil {
		e.Debug = err.Error()
	}
	return e
}

// Wrap 基于已有哨兵错误附加底层原因，保留哨兵的可匹配性
func Wrap(sentinel *Error, err error) error {
	return fmt.Errorf("%w: %w", sentinel, err)
}
