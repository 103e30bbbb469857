package models

import (
	"gorm.io/datatypes"
)

// Profile is one candidate in the matrimony pool. A parent submits on behalf
// of a child, or an adult child self-submits; either way there is at most one
// profile per account and it must pass admin review before it is listed.
type Profile struct {
	BaseModel

	UserID   uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	UserType string `gorm:"not null" json:"user_type"` // "parent" or "child"
	Status   string `gorm:"not null;default:pending;index" json:"status"`

	// Candidate
	ChildName       string `gorm:"not null" json:"child_name"`
	ChildAge        int    `gorm:"not null" json:"child_age"`
	ChildHeight     string `json:"child_height"`
	ChildProfession string `json:"child_profession"`
	ChildWorkplace  string `json:"child_workplace"`
	ChildEducation  string `json:"child_education"`
	ChildLocation   string `json:"child_location"`

	// Alumni
	ParentName string `gorm:"not null" json:"parent_name"`
	BatchYear  int    `gorm:"not null" json:"batch_year"`
	ParentCity string `json:"parent_city"`

	Preferences     datatypes.JSON `gorm:"type:jsonb" json:"preferences,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`

	// Relationships
	User   User           `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Photos []ProfilePhoto `gorm:"foreignKey:ProfileID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"photos,omitempty"`
}
