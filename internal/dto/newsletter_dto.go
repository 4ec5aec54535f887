package dto

import "github.com/noah-isme/gema-site-api/internal/models"

// NewsletterSubscribeRequest is the public signup payload.
type NewsletterSubscribeRequest struct {
	Email string   `json:"email" validate:"required,email,max=254"`
	Name  string   `json:"name" validate:"omitempty,max=120"`
	Tags  []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
}

// NewsletterSubscribeResponse reports a signup.
type NewsletterSubscribeResponse struct {
	Email            string `json:"email"`
	Confirmed        bool   `json:"confirmed"`
	ConfirmationSent bool   `json:"confirmationSent"`
}

// NewsletterSendRequest sends a campaign to confirmed subscribers.
type NewsletterSendRequest struct {
	Subject  string `json:"subject" validate:"required,max=200"`
	HTML     string `json:"html" validate:"required"`
	Campaign string `json:"campaign" validate:"omitempty,max=120"`
}

// NewsletterSendResponse summarises a campaign send.
type NewsletterSendResponse struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// SubscriberListResponse lists subscribers for administrators.
type SubscriberListResponse struct {
	Subscribers []models.Subscriber `json:"subscribers"`
	Total       int                 `json:"total"`
	Confirmed   int                 `json:"confirmed"`
}

// DeliveryLogListRequest pages through delivery logs.
type DeliveryLogListRequest struct {
	Limit  int
	Offset int
	Status string
}

// DeliveryLogListResponse is a page of delivery logs, newest first.
type DeliveryLogListResponse struct {
	Items      []models.EmailDeliveryLog `json:"items"`
	Pagination OffsetPagination          `json:"pagination"`
}

// DeliveryLogCreateRequest records a delivery status event.
type DeliveryLogCreateRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Subject    string `json:"subject" validate:"omitempty,max=200"`
	Campaign   string `json:"campaign" validate:"omitempty,max=120"`
	Status     string `json:"status" validate:"required,oneof=sent failed delivered bounced complained opened"`
	ProviderID string `json:"providerId" validate:"omitempty,max=128"`
	Error      string `json:"error" validate:"omitempty,max=2000"`
}
