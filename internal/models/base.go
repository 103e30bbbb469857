package models

import "time"

// BaseModel mirrors gorm.Model without the soft-delete column; reviewed
// records transition by status instead of being deleted.
type BaseModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
