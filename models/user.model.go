package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// ValidRoles lists every role a user may hold
var ValidRoles = []string{RoleStudent, RoleInstructor, RoleAdmin}

type User struct {
	gorm.Model
	Name        string     `json:"name" gorm:"not null;index"`
	Email       string     `json:"email" gorm:"uniqueIndex;not null"`
	Password    string     `json:"-" gorm:"not null"`
	Role        string     `json:"role" gorm:"not null;index"`
	IsActive    bool       `json:"is_active" gorm:"not null"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
