package models

import (
	"time"
)

// Weekday keys as stored and exchanged with the dashboard.
var WeekdayKeys = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

type OperatingHours struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Weekday string `gorm:"size:10;not null;uniqueIndex" json:"weekday"`
	Start   string `gorm:"size:5" json:"start"` // HH:MM
	End     string `gorm:"size:5" json:"end"`   // HH:MM
	Closed  bool   `gorm:"default:false" json:"closed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OperatingHours) TableName() string {
	return "operating_hours"
}

// WeekdayKey maps a time.Weekday to the stored key.
func WeekdayKey(d time.Weekday) string {
	return WeekdayKeys[int(d)]
}
