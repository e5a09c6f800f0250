package uploader

import "time"

// 服务端接口路径
const (
	ProxiedPath  = "/api/upload"
	DirectPath   = "/api/upload/direct"
	CompletePath = "/api/upload/direct/complete"
)

// ErrorBody 服务端错误响应
type ErrorBody struct {
	Error                 string `json:"error"`
	Debug                 string `json:"debug,omitempty"`
	Suggestion            string `json:"suggestion,omitempty"`
	ShouldUseDirectUpload bool   `json:"shouldUseDirectUpload,omitempty"`
}

// ProxiedResponse 代理上传成功响应
type ProxiedResponse struct {
	URL          string `json:"url"`
	DownloadURL  string `json:"downloadUrl"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
	Success      bool   `json:"success"`
	UploadTime   int64  `json:"uploadTime"`
}

// DirectRequest 直传握手请求，Pathname 为原始文件名，存储名由服务端生成
type DirectRequest struct {
	Pathname    string `json:"pathname" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
	Payload     string `json:"payload,omitempty"`
}

// DirectAuthorization 直传授权：客户端按 Method/Headers 上传到 UploadURL，完成后凭 Token 回调
type DirectAuthorization struct {
	UploadURL string            `json:"uploadUrl"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	Pathname  string            `json:"pathname"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// CompleteRequest 直传完成回调
type CompleteRequest struct {
	Token string `json:"token" binding:"required"`
}

// CompleteResponse 直传完成结果，Payload 原样返回握手时的附加数据
type CompleteResponse struct {
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl"`
	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Payload     string `json:"payload,omitempty"`
}
