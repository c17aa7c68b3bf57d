package models

import (
	"time"
)

// Setting is one scheduling/financial parameter (tax rate, reschedule
// deadline, payment deadlines). Type is unique per key.
type Setting struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Type  string `gorm:"size:50;not null;uniqueIndex" json:"type"`
	Value string `gorm:"size:255" json:"value"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
