package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderFailed    = "failed"
	OrderRefunded  = "refunded"
)

// Order is a purchase of a course through a payment provider.
// Only one pending order may exist per (user, course); see database.Migrate.
type Order struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"not null;index"`
	CourseID         uint       `json:"course_id" gorm:"not null;index"`
	Amount           float64    `json:"amount" gorm:"not null"`
	Currency         string     `json:"currency"`
	PaymentMethod    string     `json:"payment_method" gorm:"not null"`
	TransactionID    string     `json:"transaction_id" gorm:"size:64;not null;uniqueIndex"`
	GatewayReference string     `json:"gateway_reference"`
	GatewayURL       string     `json:"gateway_url"`
	Status           string     `json:"status" gorm:"not null;index"`
	CompletedAt      *time.Time `json:"completed_at"`
	Course           *Course    `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	User             *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// PaymentEvent is an append-only record of a gateway callback
type PaymentEvent struct {
	gorm.Model
	Provider       string         `json:"provider" gorm:"not null;index"`
	TransactionID  string         `json:"transaction_id" gorm:"index"`
	Status         string         `json:"status"`
	SignatureValid bool           `json:"signature_valid"`
	Processed      bool           `json:"processed"`
	Error          string         `json:"error"`
	Payload        datatypes.JSON `json:"payload"`
}
