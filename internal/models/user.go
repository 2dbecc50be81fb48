package models

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleCustomer UserRole = "customer"
)

type User struct {
	ID           uint     `gorm:"primaryKey" json:"user_id"`
	Username     string   `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string   `gorm:"size:100" json:"email"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Address      string   `gorm:"size:255" json:"address"`
	Phone        string   `gorm:"size:30" json:"phone"`
	Role         UserRole `gorm:"size:20;not null" json:"role"`
}
