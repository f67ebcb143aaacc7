package notification

import "time"

type EventType string

const (
	EventBookingRequested EventType = "booking_requested"
	EventBookingApproved  EventType = "booking_approved"
	EventBookingRejected  EventType = "booking_rejected"
	EventPaymentReceived  EventType = "payment_received"
)

// Event is the payload handed to the delivery transport. Delivery is
// best-effort: the transport may drop it and the pipeline moves on.
type Event struct {
	ID             string         `json:"id"`
	Type           EventType      `json:"event_type"`
	RecipientEmail string         `json:"recipient_email,omitempty"`
	RecipientPhone string         `json:"recipient_phone,omitempty"`
	TemplateFields map[string]any `json:"template_fields"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Notification is the in-app row kept so panels can list past events.
type Notification struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	EventID   string    `gorm:"type:varchar(40)" json:"event_id"`
	Type      EventType `gorm:"type:varchar(40);index" json:"type"`
	Title     string    `json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
