package models

import (
	"time"
)

const (
	FreqDaily   = "daily"
	FreqWeekly  = "weekly"
	FreqMonthly = "monthly"
	FreqPeriod  = "period"
)

type BlockedTimeSlot struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Start       time.Time `gorm:"not null;index" json:"start"`
	End         time.Time `gorm:"not null" json:"end"`
	Description string    `gorm:"type:text" json:"description"`

	// Recurrence definition. Expansion happens at read time; the stored
	// record is never mutated by it.
	IsRecurring bool   `gorm:"column:is_recurring;default:false" json:"is_recurring"`
	Freq        string `gorm:"size:20" json:"freq"`
	Interval    int    `gorm:"default:1" json:"interval"`
	DayOfWeek   *int   `gorm:"column:day_of_week" json:"day_of_week"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BlockedTimeSlot) TableName() string {
	return "blocked_time_slots"
}
