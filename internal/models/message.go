package models

import "time"

// Message belongs to exactly one accepted connection. Rows are append-only;
// the only mutation is the read flag flipping when the counterpart opens the
// thread.
type Message struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ConnectionID    uint      `gorm:"not null;index" json:"connection_id"`
	SenderProfileID uint      `gorm:"not null;index" json:"sender_profile_id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	Read            bool      `gorm:"default:false" json:"read"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`

	// Relationships
	Connection ConnectionRequest `gorm:"foreignKey:ConnectionID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
