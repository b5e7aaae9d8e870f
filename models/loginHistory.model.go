package models

import "time"

// LoginHistory is one successful sign-in
type LoginHistory struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	IPAddress  string    `json:"ip_address"`
	Device     string    `json:"device"`
	LoggedInAt time.Time `json:"logged_in_at" gorm:"not null;index"`
}
