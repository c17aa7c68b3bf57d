package appointment

import (
	"testing"
	"time"

	"github.com/Jhol55/agendai-sub000/cmd/models"
)

func validBase() models.Appointment {
	start := time.Now().Add(24 * time.Hour)
	return models.Appointment{
		Title: "Consultation",
		Start: start,
		End:   start.Add(time.Hour),
	}
}

func TestValidateAppointmentRequiresInterval(t *testing.T) {
	a := validBase()
	a.Start = time.Time{}
	if err := validateAppointment(&a); err == nil {
		t.Fatal("expected error for missing start")
	}

	a = validBase()
	a.End = a.Start.Add(-time.Hour)
	if err := validateAppointment(&a); err == nil {
		t.Fatal("expected error for end before start")
	}

	a = validBase()
	a.End = a.Start
	if err := validateAppointment(&a); err != nil {
		t.Fatalf("zero-length appointment should be allowed: %v", err)
	}
}

func TestValidateAppointmentPaymentTypes(t *testing.T) {
	a := validBase()
	a.Payments = []models.Payment{{Type: "tip", Status: models.PaymentStatusPending}}
	if err := validateAppointment(&a); err == nil {
		t.Fatal("expected error for unknown payment type")
	}
}

func TestValidateAppointmentOneActivePaymentPerType(t *testing.T) {
	a := validBase()
	a.Payments = []models.Payment{
		{Type: models.PaymentTypeFee, Status: models.PaymentStatusPending},
		{Type: models.PaymentTypeFee, Status: models.PaymentStatusReceived},
	}
	if err := validateAppointment(&a); err == nil {
		t.Fatal("expected error for two active fee payments")
	}

	// A refunded payment no longer counts against the limit.
	a.Payments[0].Status = models.PaymentStatusRefunded
	if err := validateAppointment(&a); err != nil {
		t.Fatalf("refunded payment should be ignored: %v", err)
	}

	// One active payment of each type is fine.
	a.Payments = []models.Payment{
		{Type: models.PaymentTypeFee, Status: models.PaymentStatusPending},
		{Type: models.PaymentTypeService, Status: models.PaymentStatusPending},
	}
	if err := validateAppointment(&a); err != nil {
		t.Fatalf("one payment per type should be valid: %v", err)
	}
}

func TestValidateAppointmentDueDates(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	a := validBase()
	a.Payments = []models.Payment{
		{Type: models.PaymentTypeFee, Status: models.PaymentStatusPending, DueDate: &past},
	}
	if err := validateAppointment(&a); err == nil {
		t.Fatal("expected error for past due date on active payment")
	}

	a.Payments[0].Status = models.PaymentStatusRefunded
	if err := validateAppointment(&a); err != nil {
		t.Fatalf("past due date on refunded payment should pass: %v", err)
	}

	a.Payments[0].Status = models.PaymentStatusPending
	a.Payments[0].DueDate = &future
	if err := validateAppointment(&a); err != nil {
		t.Fatalf("future due date should pass: %v", err)
	}
}

func TestMergeIntoKeepsUnsetFields(t *testing.T) {
	stored := validBase()
	stored.ID = "a"
	stored.ClientID = "client-1"
	stored.Status = models.AppointmentStatusPending

	mergeInto(&stored, models.Appointment{Status: models.AppointmentStatusConfirmed})

	if stored.ID != "a" || stored.ClientID != "client-1" || stored.Title != "Consultation" {
		t.Fatalf("unset fields overwritten: %+v", stored)
	}
	if stored.Status != models.AppointmentStatusConfirmed {
		t.Fatalf("status not applied: %q", stored.Status)
	}
}

func TestMergeIntoReplacesPayments(t *testing.T) {
	stored := validBase()
	stored.Payments = []models.Payment{{Type: models.PaymentTypeFee, Value: 100}}

	mergeInto(&stored, models.Appointment{Payments: []models.Payment{
		{Type: models.PaymentTypeService, Value: 250},
	}})

	if len(stored.Payments) != 1 || stored.Payments[0].Type != models.PaymentTypeService {
		t.Fatalf("payments not replaced: %+v", stored.Payments)
	}

	// A nil payment list means "unchanged", not "clear".
	mergeInto(&stored, models.Appointment{Title: "Renamed"})
	if len(stored.Payments) != 1 {
		t.Fatalf("nil payment list cleared payments: %+v", stored.Payments)
	}
}

func TestPaymentsChanged(t *testing.T) {
	base := []models.Payment{{Type: models.PaymentTypeFee, Status: models.PaymentStatusPending, Value: 100}}

	same := []models.Payment{{Type: models.PaymentTypeFee, Status: models.PaymentStatusPending, Value: 100}}
	if paymentsChanged(base, same) {
		t.Fatal("identical payments reported as changed")
	}

	paid := []models.Payment{{Type: models.PaymentTypeFee, Status: models.PaymentStatusReceived, Value: 100}}
	if !paymentsChanged(base, paid) {
		t.Fatal("status change not detected")
	}

	if !paymentsChanged(base, nil) {
		t.Fatal("removal not detected")
	}
}
