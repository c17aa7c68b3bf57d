package models

import (
	"time"

	"github.com/lib/pq"
)

// Resource is a bookable entity (a professional, a room). Every appointment
// references exactly one resource.
type Resource struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Type        string         `gorm:"size:50" json:"type"`
	Details     string         `gorm:"type:text" json:"details"`
	Specialties pq.StringArray `gorm:"type:text[]" json:"specialties"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
