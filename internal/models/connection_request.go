package models

// ConnectionRequest is a directed proposal from one profile to another.
// Created pending by the requester; only the recipient moves it to accepted or
// declined, and those states are terminal. Messaging requires accepted.
type ConnectionRequest struct {
	BaseModel

	FromProfileID uint   `gorm:"not null;index" json:"from_profile_id"`
	ToProfileID   uint   `gorm:"not null;index" json:"to_profile_id"`
	Status        string `gorm:"not null;default:pending;index" json:"status"`

	// Relationships
	FromProfile Profile `gorm:"foreignKey:FromProfileID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	ToProfile   Profile `gorm:"foreignKey:ToProfileID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
