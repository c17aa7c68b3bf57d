package schedule

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Jhol55/agendai-sub000/cmd/models"
)

// ScheduleHandler serves operating hours and blocked time slots.
type ScheduleHandler struct {
	db *gorm.DB
}

func NewScheduleHandler(db *gorm.DB) *ScheduleHandler {
	return &ScheduleHandler{db: db}
}

func (h *ScheduleHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/get-operating-hours", h.GetOperatingHours).Methods("GET")
	router.HandleFunc("/update-operating-hours", h.UpdateOperatingHours).Methods("POST")
	router.HandleFunc("/get-blocked-time-slot", h.GetBlockedTimeSlots).Methods("GET")
	router.HandleFunc("/add-blocked-time-slot", h.AddBlockedTimeSlot).Methods("POST")
}

// GetOperatingHours returns the per-weekday records, seeding closed
// defaults for weekdays never configured.
func (h *ScheduleHandler) GetOperatingHours(w http.ResponseWriter, r *http.Request) {
	var hours []models.OperatingHours
	if err := h.db.Find(&hours).Error; err != nil {
		http.Error(w, "Error retrieving operating hours", http.StatusInternalServerError)
		return
	}

	configured := make(map[string]bool, len(hours))
	for _, oh := range hours {
		configured[oh.Weekday] = true
	}
	for _, day := range models.WeekdayKeys {
		if !configured[day] {
			hours = append(hours, models.OperatingHours{Weekday: day, Closed: true})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(hours)
}

// UpdateOperatingHours upserts the submitted weekday records.
func (h *ScheduleHandler) UpdateOperatingHours(w http.ResponseWriter, r *http.Request) {
	var hours []models.OperatingHours
	if err := json.NewDecoder(r.Body).Decode(&hours); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	valid := make(map[string]bool, len(models.WeekdayKeys))
	for _, day := range models.WeekdayKeys {
		valid[day] = true
	}
	for _, oh := range hours {
		if !valid[oh.Weekday] {
			http.Error(w, "Unknown weekday: "+oh.Weekday, http.StatusBadRequest)
			return
		}
		if !oh.Closed && (!validHHMM(oh.Start) || !validHHMM(oh.End)) {
			http.Error(w, "Invalid time for "+oh.Weekday+", use HH:MM", http.StatusBadRequest)
			return
		}
	}

	tx := h.db.Begin()
	for _, oh := range hours {
		var existing models.OperatingHours
		if err := tx.Where("weekday = ?", oh.Weekday).First(&existing).Error; err == nil {
			existing.Start = oh.Start
			existing.End = oh.End
			existing.Closed = oh.Closed
			if err := tx.Save(&existing).Error; err != nil {
				tx.Rollback()
				http.Error(w, "Error updating operating hours", http.StatusInternalServerError)
				return
			}
		} else {
			oh.ID = 0
			if err := tx.Create(&oh).Error; err != nil {
				tx.Rollback()
				http.Error(w, "Error saving operating hours", http.StatusInternalServerError)
				return
			}
		}
	}
	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error completing update", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Operating hours updated successfully",
	})
}

// GetBlockedTimeSlots returns slots intersecting [from, to]. Recurring
// definitions are always included; expansion against the range happens on
// the consumer side and never mutates the stored record.
func (h *ScheduleHandler) GetBlockedTimeSlots(w http.ResponseWriter, r *http.Request) {
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

	var slots []models.BlockedTimeSlot
	if err := h.db.
		Where("is_recurring = ? OR (start <= ? AND \"end\" >= ?)", true, to, from).
		Order("start ASC").
		Find(&slots).Error; err != nil {
		http.Error(w, "Error retrieving blocked time slots", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(slots)
}

func (h *ScheduleHandler) AddBlockedTimeSlot(w http.ResponseWriter, r *http.Request) {
	var slot models.BlockedTimeSlot
	if err := json.NewDecoder(r.Body).Decode(&slot); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if slot.Start.IsZero() || slot.End.IsZero() {
		http.Error(w, "Start and end are required", http.StatusBadRequest)
		return
	}
	if slot.End.Before(slot.Start) {
		http.Error(w, "End must not be before start", http.StatusBadRequest)
		return
	}
	if slot.IsRecurring {
		switch slot.Freq {
		case models.FreqDaily, models.FreqWeekly, models.FreqMonthly, models.FreqPeriod:
		default:
			http.Error(w, "Unknown recurrence frequency", http.StatusBadRequest)
			return
		}
		if slot.Interval < 1 {
			slot.Interval = 1
		}
		if slot.DayOfWeek != nil && (*slot.DayOfWeek < 0 || *slot.DayOfWeek > 6) {
			http.Error(w, "day_of_week must be between 0 and 6", http.StatusBadRequest)
			return
		}
	}

	slot.ID = uuid.NewString()
	if err := h.db.Create(&slot).Error; err != nil {
		http.Error(w, "Error creating blocked time slot", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(slot)
}

func validHHMM(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
