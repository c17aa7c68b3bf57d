package appointment

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Jhol55/agendai-sub000/cmd/models"
	notification "github.com/Jhol55/agendai-sub000/service/notifications"
	"github.com/Jhol55/agendai-sub000/service/realtime"
)

const realtimeChannel = "public"

type AppointmentHandler struct {
	db       *gorm.DB
	hub      *realtime.Hub
	mailer   *Mailer
	notifier *notification.Notifier
}

func NewAppointmentHandler(db *gorm.DB, hub *realtime.Hub, notifier *notification.Notifier) *AppointmentHandler {
	return &AppointmentHandler{db: db, hub: hub, mailer: NewMailer(), notifier: notifier}
}

func (h *AppointmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/get-appointments", h.GetAppointments).Methods("GET")
	router.HandleFunc("/get-appointment", h.GetAppointment).Methods("GET")
	router.HandleFunc("/create-appointment", h.CreateAppointment).Methods("POST")
	router.HandleFunc("/update-appointment", h.UpdateAppointment).Methods("POST")
	router.HandleFunc("/delete-appointment", h.DeleteAppointment).Methods("POST")
}

// GetAppointments lists appointments inside the [from, to] bounds.
func (h *AppointmentHandler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "Invalid or missing 'from' bound", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "Invalid or missing 'to' bound", http.StatusBadRequest)
		return
	}

	var appointments []models.Appointment
	if err := h.db.Preload("Payments").
		Where("start <= ? AND \"end\" >= ?", to, from).
		Order("start ASC").
		Find(&appointments).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointments)
}

// GetAppointment retrieves one appointment by id, the server-authoritative
// read used for notification drill-down.
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Appointment ID is required", http.StatusBadRequest)
		return
	}

	var appointment models.Appointment
	if err := h.db.Preload("Payments").First(&appointment, "id = ?", id).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointment)
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var appointment models.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appointment); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateAppointment(&appointment); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	appointment.ID = uuid.NewString()
	if appointment.Status == "" {
		appointment.Status = models.AppointmentStatusPending
	}
	// Split instances never reach storage with their display-only bounds.
	appointment.OriginalStart = nil
	appointment.OriginalEnd = nil

	if err := h.db.Create(&appointment).Error; err != nil {
		http.Error(w, "Error creating appointment", http.StatusInternalServerError)
		return
	}

	h.hub.Publish(realtimeChannel, realtime.Event{
		EventType: realtime.EventInsert,
		Table:     "appointments",
		Origin:    r.Header.Get("X-Client-ID"),
		New:       appointment,
	})

	h.notifier.Notify("New appointment",
		fmt.Sprintf("%s on %s", appointment.Title, appointment.Start.Format("02 Jan 15:04")),
		appointment.ID)

	for _, p := range appointment.Payments {
		if p.SendPaymentLink {
			go h.sendPaymentLink(appointment, p)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appointment)
}

// UpdateAppointment takes {old, new}, merges the new appointment over the
// stored one and persists the result.
func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Old models.Appointment `json:"old"`
		New models.Appointment `json:"new"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := payload.New.ID
	if id == "" {
		id = payload.Old.ID
	}
	if id == "" {
		http.Error(w, "Appointment ID is required", http.StatusBadRequest)
		return
	}

	var stored models.Appointment
	if err := h.db.Preload("Payments").First(&stored, "id = ?", id).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	previous := stored

	mergeInto(&stored, payload.New)
	if err := validateAppointment(&stored); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := h.db.Begin()
	if payload.New.Payments != nil {
		if err := tx.Where("appointment_id = ?", stored.ID).Delete(&models.Payment{}).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Error updating payments", http.StatusInternalServerError)
			return
		}
		for i := range stored.Payments {
			stored.Payments[i].ID = 0
			stored.Payments[i].AppointmentID = stored.ID
		}
	}
	if err := tx.Save(&stored).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error updating appointment", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error completing update", http.StatusInternalServerError)
		return
	}

	origin := r.Header.Get("X-Client-ID")
	h.hub.Publish(realtimeChannel, realtime.Event{
		EventType: realtime.EventUpdate,
		Table:     "appointments",
		Origin:    origin,
		New:       stored,
		Old:       previous,
	})
	if paymentsChanged(previous.Payments, stored.Payments) {
		h.hub.Publish(realtimeChannel, realtime.Event{
			EventType: realtime.EventUpdate,
			Table:     "payments",
			Origin:    origin,
			New:       stored.Payments,
			Old:       previous.Payments,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stored)
}

func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == "" {
		http.Error(w, "Appointment ID is required", http.StatusBadRequest)
		return
	}

	result := h.db.Select("Payments").Delete(&models.Appointment{ID: payload.ID})
	if result.Error != nil {
		http.Error(w, "Error deleting appointment", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Appointment deleted successfully",
	})
}

func (h *AppointmentHandler) sendPaymentLink(appointment models.Appointment, payment models.Payment) {
	var client models.Client
	if err := h.db.First(&client, "id = ?", appointment.ClientID).Error; err != nil {
		log.Printf("payment link: client %s not found: %v", appointment.ClientID, err)
		return
	}
	if client.Email == "" {
		log.Printf("payment link: client %s has no email", client.ID)
		return
	}
	if err := h.mailer.SendPaymentLink(client.Email, appointment, payment); err != nil {
		log.Printf("payment link: error sending to %s: %v", client.Email, err)
	}
}

// validateAppointment enforces the interval invariant and the payment
// rules: one active (non-refunded) payment per type, and no past due dates
// on active payments.
func validateAppointment(a *models.Appointment) error {
	if a.Start.IsZero() || a.End.IsZero() {
		return fmt.Errorf("start and end are required")
	}
	if a.End.Before(a.Start) {
		return fmt.Errorf("end must not be before start")
	}

	activeByType := make(map[string]int)
	now := time.Now()
	for _, p := range a.Payments {
		if p.Type != models.PaymentTypeFee && p.Type != models.PaymentTypeService {
			return fmt.Errorf("invalid payment type %q", p.Type)
		}
		if p.Status == models.PaymentStatusRefunded {
			continue
		}
		activeByType[p.Type]++
		if activeByType[p.Type] > 1 {
			return fmt.Errorf("more than one active %s payment", p.Type)
		}
		if p.DueDate != nil && p.DueDate.Before(now.Truncate(24*time.Hour)) {
			return fmt.Errorf("%s payment due date is in the past", p.Type)
		}
	}
	return nil
}

// mergeInto applies the non-zero fields of update over stored.
func mergeInto(stored *models.Appointment, update models.Appointment) {
	if update.CalendarID != "" {
		stored.CalendarID = update.CalendarID
	}
	if update.ResourceID != "" {
		stored.ResourceID = update.ResourceID
	}
	if update.ClientID != "" {
		stored.ClientID = update.ClientID
	}
	if update.Title != "" {
		stored.Title = update.Title
	}
	if !update.Start.IsZero() {
		stored.Start = update.Start
	}
	if !update.End.IsZero() {
		stored.End = update.End
	}
	if update.Status != "" {
		stored.Status = update.Status
	}
	if update.Details != (models.AppointmentDetails{}) {
		stored.Details = update.Details
	}
	if update.Payments != nil {
		stored.Payments = update.Payments
	}
}

func paymentsChanged(old, current []models.Payment) bool {
	if len(old) != len(current) {
		return true
	}
	for i := range old {
		if old[i].Status != current[i].Status || old[i].Value != current[i].Value {
			return true
		}
	}
	return false
}
