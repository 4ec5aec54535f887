package dto

import "github.com/noah-isme/gema-site-api/internal/models"

// ContentCommitRequest is one content mutation sent to the remote repository.
type ContentCommitRequest struct {
	ResourceType string                 `json:"resourceType" validate:"required,oneof=blog page data"`
	Action       string                 `json:"action" validate:"required,oneof=create update delete"`
	Filename     string                 `json:"filename" validate:"omitempty,max=128"`
	Frontmatter  map[string]interface{} `json:"frontmatter"`
	Body         string                 `json:"body"`
	DataSubtype  string                 `json:"dataSubtype" validate:"omitempty,oneof=contributors newsletter config"`
	Description  string                 `json:"description" validate:"omitempty,max=2000"`
}

// ContentCommitResponse is the normalised outcome of a commit attempt.
type ContentCommitResponse struct {
	Success bool   `json:"success"`
	SHA     string `json:"sha,omitempty"`
	URL     string `json:"url,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BlogCreateRequest creates a local blog post.
type BlogCreateRequest struct {
	Title          string   `json:"title" validate:"required,min=3,max=200"`
	Description    string   `json:"description" validate:"omitempty,max=500"`
	Author         string   `json:"author" validate:"omitempty,max=120"`
	Tags           []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=40"`
	Body           string   `json:"body" validate:"required"`
	Date           string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Draft          bool     `json:"draft"`
	Newsletter     bool     `json:"newsletter"`
	SendNewsletter bool     `json:"sendNewsletter"`
}

// NewsletterResult reports the best-effort newsletter send that accompanied a publish.
type NewsletterResult struct {
	Success bool   `json:"success"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Error   string `json:"error,omitempty"`
}

// BlogCreateResponse carries the created post and, independently, the newsletter outcome.
type BlogCreateResponse struct {
	Post             models.BlogPost   `json:"post"`
	NewsletterResult *NewsletterResult `json:"newsletterResult,omitempty"`
}

// BlogListResponse lists local blog posts, newest first.
type BlogListResponse struct {
	Posts []models.BlogPost `json:"posts"`
	Total int               `json:"total"`
}

// PageListResponse lists local pages.
type PageListResponse struct {
	Pages []models.Page `json:"pages"`
	Total int           `json:"total"`
}
