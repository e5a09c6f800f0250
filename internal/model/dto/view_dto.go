package dto

// RecordViewRequest 记录访问
type RecordViewRequest struct {
	PageType string `json:"pageType"`
	PageID   string `json:"pageId"`
}

// ViewMeta 请求来源信息
type ViewMeta struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

// SelfTestStep 自检步骤
type SelfTestStep struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SelfTestResult 自检结果
type SelfTestResult struct {
	Tests   []SelfTestStep `json:"tests"`
	Success bool           `json:"success"`
}
