package models

import "time"

// NotificationType classifies a notification for the client icon
type NotificationType string

const (
	NotificationMeldungCreated  NotificationType = "MELDUNG_ERSTELLT"
	NotificationMeldungAssigned NotificationType = "MELDUNG_ZUGEWIESEN"
	NotificationMeldungStatus   NotificationType = "MELDUNG_STATUS"
	NotificationNewMessage      NotificationType = "NEUE_NACHRICHT"
	NotificationTenantAssigned  NotificationType = "MIETER_ZUGEORDNET"
	NotificationSubscription    NotificationType = "ABO"
)

// Notification is an entry of a user's notification list
type Notification struct {
	BaseModel
	UserID      uint             `gorm:"index;not null" json:"user_id"`
	Type        NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title       string           `gorm:"type:varchar(120);not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	ReferenceID *uint            `json:"reference_id,omitempty"` // Meldung, Message or Unit id depending on Type
	Read        bool             `gorm:"column:is_read;index;default:false" json:"read"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
}
