package models

import (
	"time"
)

// Device is a registered push target for the dashboard's mobile companion.
type Device struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Token      string    `gorm:"not null;uniqueIndex:idx_token_user" json:"token"`
	UserID     string    `gorm:"not null;index;uniqueIndex:idx_token_user" json:"userId"`
	DeviceType string    `gorm:"type:varchar(50)" json:"deviceType"`
	DeviceName string    `gorm:"type:varchar(100)" json:"deviceName,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Notification is an in-app notification, usually pointing back at the
// appointment that caused it.
type Notification struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Title         string    `gorm:"size:255" json:"title"`
	Body          string    `gorm:"type:text" json:"body"`
	Read          bool      `gorm:"default:false" json:"read"`
	AppointmentID string    `gorm:"column:appointment_id;size:36" json:"appointment_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
