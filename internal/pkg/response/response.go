package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/portfolio_server/internal/pkg/apperr"
	"github.com/qs3c/portfolio_server/internal/pkg/log"
)

// 错误码定义
const (
	CodeSuccess          = 0
	CodeParamError       = 1000
	CodeAuthFailed       = 1001
	CodePermissionDenied = 1002
	CodeResourceNotFound = 1003
	CodeTooLarge         = 1004
	CodeRateLimited      = 1005
	CodeTimeout          = 1006
	CodeServerError      = 5000
	CodeUnavailable      = 5003
)

// 错误码对应的默认消息
var codeMessages = map[int]string{
	CodeParamError:       "Invalid request",
	CodeAuthFailed:       "Unauthorized",
	CodePermissionDenied: "Forbidden",
	CodeResourceNotFound: "Not found",
	CodeTooLarge:         "Payload too large",
	CodeRateLimited:      "Too many requests",
	CodeTimeout:          "Request timeout",
	CodeServerError:      "Internal server error",
	CodeUnavailable:      "Service unavailable",
}

var statusCodes = map[int]int{
	http.StatusBadRequest:            CodeParamError,
	http.StatusUnauthorized:          CodeAuthFailed,
	http.StatusForbidden:             CodePermissionDenied,
	http.StatusNotFound:              CodeResourceNotFound,
	http.StatusRequestTimeout:        CodeTimeout,
	http.StatusRequestEntityTooLarge: CodeTooLarge,
	http.StatusUnsupportedMediaType:  CodeParamError,
	http.StatusTooManyRequests:       CodeRateLimited,
	http.StatusServiceUnavailable:    CodeUnavailable,
}

// ErrorBody 统一错误响应结构
type ErrorBody struct {
	Code                  int    `json:"code"`
	Error                 string `json:"error"`
	Debug                 string `json:"debug,omitempty"`
	Suggestion            string `json:"suggestion,omitempty"`
	ShouldUseDirectUpload bool   `json:"shouldUseDirectUpload,omitempty"`
}

// PageData 分页数据结构
type PageData struct {
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
	Items    interface{} `json:"items"`
}

// Success 成功响应，直接输出数据
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["message"] = message
	c.JSON(http.StatusOK, data)
}

// SuccessPage 分页成功响应
func SuccessPage(c *gin.Context, total int64, page, pageSize int, items interface{}) {
	c.JSON(http.StatusOK, PageData{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	})
}

// Abort 输出错误响应
func Abort(c *gin.Context, status int, body ErrorBody) {
	if body.Code == 0 {
		body.Code = codeFor(status)
	}
	if body.Error == "" {
		body.Error = codeMessages[body.Code]
	}
	c.AbortWithStatusJSON(status, body)
}

func codeFor(status int) int {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	if status >= http.StatusInternalServerError {
		return CodeServerError
	}
	return CodeParamError
}

// Error 按错误分类输出响应，未分类错误统一按 500 处理
func Error(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		log.Errorf("unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		ServerError(c, "")
		return
	}

	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	Abort(c, status, ErrorBody{
		Error:                 e.Message,
		Debug:                 e.Debug,
		Suggestion:            e.Suggestion,
		ShouldUseDirectUpload: e.UseDirectUpload,
	})
}

// ParamError 参数错误
func ParamError(c *gin.Context, message string) {
	Abort(c, http.StatusBadRequest, ErrorBody{Error: message})
}

// AuthError 认证失败
func AuthError(c *gin.Context, message string) {
	Abort(c, http.StatusUnauthorized, ErrorBody{Error: message})
}

// PermissionError 权限不足
func PermissionError(c *gin.Context, message string) {
	Abort(c, http.StatusForbidden, ErrorBody{Error: message})
}

// NotFoundError 资源不存在
func NotFoundError(c *gin.Context, message string) {
	Abort(c, http.StatusNotFound, ErrorBody{Error: message})
}

// RateLimitError 请求过于频繁
func RateLimitError(c *gin.Context, message string) {
	Abort(c, http.StatusTooManyRequests, ErrorBody{Error: message})
}

// ServerError 服务器错误
func ServerError(c *gin.Context, message string) {
	Abort(c, http.StatusInternalServerError, ErrorBody{Error: message})
}
