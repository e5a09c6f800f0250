package dto

// BlogPostRequest 创建或更新博客
type BlogPostRequest struct {
	Title    string   `json:"title" binding:"required,max=200"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content" binding:"required"`
	Date     string   `json:"date"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"image_url"`
}

// ProjectRequest 创建或更新项目
type ProjectRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	PDFURL      string `json:"pdf_url"`
	Category    string `json:"category" binding:"required"`
	Location    string `json:"location"`
	Year        string `json:"year"`
	Status      string `json:"status" binding:"required"`
}

// ResumeRequest 替换简历
type ResumeRequest struct {
	FileName string `json:"fileName" binding:"required"`
	FileURL  string `json:"fileUrl" binding:"required"`
	FileSize int64  `json:"fileSize"`
}

// CertificateRequest 创建或更新证书
type CertificateRequest struct {
	Title      string `json:"title" binding:"required,max=200"`
	Issuer     string `json:"issuer"`
	DateIssued string `json:"date_issued"`
	FileName   string `json:"file_name"`
	FileURL    string `json:"file_url"`
	FileSize   int64  `json:"file_size"`
}
