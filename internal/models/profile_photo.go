package models

import "time"

// ProfilePhoto references a blob in the photo store. At most one photo per
// profile carries IsPrimary, and exactly one does as soon as any photo exists.
type ProfilePhoto struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProfileID  uint      `gorm:"not null;index" json:"profile_id"`
	PhotoURL   string    `gorm:"not null" json:"photo_url"`
	ObjectKey  string    `gorm:"not null" json:"-"`
	IsPrimary  bool      `gorm:"default:false" json:"is_primary"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	// Relationships
	Profile Profile `gorm:"foreignKey:ProfileID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
