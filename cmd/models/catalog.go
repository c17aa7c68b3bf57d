package models

import (
	"time"

	"github.com/lib/pq"
)

// ServiceOffering is an entry in the service catalog.
type ServiceOffering struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	Price           float64        `gorm:"not null" json:"price"`
	DurationMinutes int            `gorm:"column:duration_minutes;not null" json:"durationMinutes"`
	Online          bool           `gorm:"default:false" json:"online"`
	Tags            pq.StringArray `gorm:"type:text[]" json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ServiceOffering) TableName() string {
	return "service_offerings"
}

type Client struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Name  string `gorm:"size:255;not null;index" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:255" json:"email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
