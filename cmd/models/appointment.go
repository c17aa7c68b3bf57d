package models

import (
	"time"
)

const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCanceled  = "canceled"
)

const (
	PaymentTypeFee     = "fee"
	PaymentTypeService = "service"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusReceived  = "received"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusConfirmed = "confirmed"
)

type Appointment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	CalendarID string    `gorm:"column:calendar_id;size:36;index" json:"calendarId"`
	ResourceID string    `gorm:"column:resource_id;size:36;index" json:"resourceId"`
	ClientID   string    `gorm:"column:client_id;size:36" json:"clientId"`
	Title      string    `gorm:"size:255" json:"title"`
	Start      time.Time `gorm:"not null;index" json:"start"`
	End        time.Time `gorm:"not null" json:"end"`
	Status     string    `gorm:"size:20;default:'pending'" json:"status"`

	// Set only on instances produced by splitting a multi-day span.
	// Never persisted; the stored record keeps the unsplit bounds.
	OriginalStart *time.Time `gorm:"-" json:"original_start,omitempty"`
	OriginalEnd   *time.Time `gorm:"-" json:"original_end,omitempty"`

	Details   AppointmentDetails `gorm:"embedded;embeddedPrefix:details_" json:"details"`
	Payments  []Payment          `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE" json:"payments"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type AppointmentDetails struct {
	Service         string `gorm:"column:service;size:255" json:"service"`
	ServiceID       string `gorm:"column:service_id;size:36" json:"serviceId"`
	DurationMinutes int    `gorm:"column:duration_minutes" json:"durationMinutes"`
	Online          bool   `gorm:"column:online;default:false" json:"online"`
}

type Payment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	AppointmentID   string     `gorm:"column:appointment_id;size:36;index" json:"appointment_id"`
	Type            string     `gorm:"size:20;not null" json:"type"`
	Value           float64    `gorm:"not null" json:"value"`
	Status          string     `gorm:"size:20;default:'pending'" json:"status"`
	SendPaymentLink bool       `gorm:"column:send_payment_link;default:false" json:"sendPaymentLink"`
	BillingType     *string    `gorm:"column:billing_type;size:50" json:"billingType"`
	DueDate         *time.Time `gorm:"column:due_date" json:"dueDate"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ActivePayments returns the non-refunded payments, the ones that count
// toward the one-active-payment-per-type rule and due-date validation.
func (a *Appointment) ActivePayments() []Payment {
	var active []Payment
	for _, p := range a.Payments {
		if p.Status != PaymentStatusRefunded {
			active = append(active, p)
		}
	}
	return active
}
