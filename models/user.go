package models

import "time"

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleClient UserRole = "client"
	RoleAdmin  UserRole = "admin"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:'client'"`
	Phone        string    `json:"phone"`
	IsAdmin      bool      `json:"is_admin"` // metadata flag, one of several admin sources
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminUser is a row in the admins table — grants admin independently of the
// profile's role field or metadata flag
type AdminUser struct {
	UserID    string    `json:"user_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

// Setting is a key/value row (momo_code, merchant_name, unit_price, ...)
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PushSubscription stores a browser push endpoint for a user
type PushSubscription struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Endpoint  string    `json:"endpoint" gorm:"not null"`
	Keys      string    `json:"keys"` // JSON-encoded p256dh/auth pair
	CreatedAt time.Time `json:"created_at"`
}
