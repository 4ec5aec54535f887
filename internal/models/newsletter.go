package models

import "time"

// Subscriber is a newsletter recipient.
type Subscriber struct {
	Email            string     `json:"email"`
	Name             string     `json:"name,omitempty"`
	SubscribedAt     time.Time  `json:"subscribedAt"`
	Confirmed        bool       `json:"confirmed"`
	ConfirmedAt      *time.Time `json:"confirmedAt,omitempty"`
	Tags             []string   `json:"tags"`
	UnsubscribeToken string     `json:"unsubscribeToken"`
}

// Delivery statuses for outbound e-mail.
const (
	DeliverySent       = "sent"
	DeliveryFailed     = "failed"
	DeliveryDelivered  = "delivered"
	DeliveryBounced    = "bounced"
	DeliveryComplained = "complained"
	DeliveryOpened     = "opened"
)

// EmailDeliveryLog records the outcome of one outbound e-mail.
type EmailDeliveryLog struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Campaign   string    `json:"campaign,omitempty"`
	Status     string    `json:"status"`
	ProviderID string    `json:"providerId,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
