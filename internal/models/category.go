package models

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"category_id"`
	Name      string    `gorm:"size:100;not null" json:"category_name"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"modified_at"`
}
