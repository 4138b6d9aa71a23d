package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Username and password length rules applied at registration
const (
	MinUsernameLength = 3
	MaxUsernameLength = 100
	MinPasswordLength = 6
)

type User struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string     `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"size:200;not null" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
