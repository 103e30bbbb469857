package models

import "time"

// ContactExchange records mutual agreement to share direct contact details
// over an accepted connection. Schema only for now; no handler writes it.
type ContactExchange struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ConnectionID uint      `gorm:"not null;index" json:"connection_id"`
	InitiatedBy  uint      `gorm:"not null" json:"initiated_by"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	Connection ConnectionRequest `gorm:"foreignKey:ConnectionID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
