package models

import "time"

type Supplier struct {
	ID        uint      `gorm:"primaryKey" json:"supplier_id"`
	Name      string    `gorm:"size:100;not null" json:"supplier_name"`
	Contact   string    `gorm:"size:100" json:"contact"`
	Address   string    `gorm:"size:255" json:"address"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"modified_at"`
}
