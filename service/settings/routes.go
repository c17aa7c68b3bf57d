package settings

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Jhol55/agendai-sub000/cmd/models"
)

// SettingsHandler serves the keyed scheduling/financial parameters.
type SettingsHandler struct {
	db *gorm.DB
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

func (h *SettingsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/get-settings", h.GetSettings).Methods("GET")
	router.HandleFunc("/update-settings", h.UpdateSettings).Methods("POST")
}

// GetSettings returns all settings, or the one matching ?id (the type key).
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Setting{})
	if id := r.URL.Query().Get("id"); id != "" {
		query = query.Where("type = ?", id)
	}

	var settings []models.Setting
	if err := query.Find(&settings).Error; err != nil {
		http.Error(w, "Error retrieving settings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

// UpdateSettings upserts the submitted {type, value} entries. Type is
// unique per key.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings []models.Setting
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tx := h.db.Begin()
	for _, s := range settings {
		if s.Type == "" {
			tx.Rollback()
			http.Error(w, "Setting type is required", http.StatusBadRequest)
			return
		}
		var existing models.Setting
		if err := tx.Where("type = ?", s.Type).First(&existing).Error; err == nil {
			existing.Value = s.Value
			if err := tx.Save(&existing).Error; err != nil {
				tx.Rollback()
				http.Error(w, "Error updating setting", http.StatusInternalServerError)
				return
			}
		} else {
			s.ID = 0
			if err := tx.Create(&s).Error; err != nil {
				tx.Rollback()
				http.Error(w, "Error saving setting", http.StatusInternalServerError)
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
		"message": "Settings updated successfully",
	})
}
