package models

import "time"

// Message is one chat message between two users
type Message struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SenderID     uint       `gorm:"index;not null" json:"sender_id"`
	ReceiverID   uint       `gorm:"index;not null" json:"receiver_id"`
	SenderRole   Role       `gorm:"type:varchar(20);not null" json:"sender_role"`
	ReceiverRole Role       `gorm:"type:varchar(20);not null" json:"receiver_role"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	MeldungID    *uint      `gorm:"index" json:"meldung_id,omitempty"`
	Read         bool       `gorm:"column:is_read;default:false" json:"read"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
}

// PartnerOf returns the id and role of the other party for userID
func (m *Message) PartnerOf(userID uint) (uint, Role) {
	if m.SenderID == userID {
		return m.ReceiverID, m.ReceiverRole
	}
	return m.SenderID, m.SenderRole
}

// Contact is an allowed chat partner with conversation summary
type Contact struct {
	User        UserSummary `json:"user"`
	UnreadCount int64       `json:"unread_count"`
	LastMessage *Message    `json:"last_message,omitempty"`
}
