package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Jhol55/agendai-sub000/cmd/models"
)

// CatalogHandler serves the service catalog.
type CatalogHandler struct {
	db *gorm.DB
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/get-services", h.GetServices).Methods("GET")
	router.HandleFunc("/add-service", h.AddService).Methods("POST")
	router.HandleFunc("/update-service", h.UpdateService).Methods("POST")
	router.HandleFunc("/delete-services", h.DeleteServices).Methods("POST")
}

func (h *CatalogHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	var services []models.ServiceOffering
	if err := h.db.Order("name ASC").Find(&services).Error; err != nil {
		http.Error(w, "Error retrieving services", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(services)
}

func (h *CatalogHandler) AddService(w http.ResponseWriter, r *http.Request) {
	var service models.ServiceOffering
	if err := json.NewDecoder(r.Body).Decode(&service); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if service.Name == "" {
		http.Error(w, "Service name is required", http.StatusBadRequest)
		return
	}
	if service.DurationMinutes <= 0 {
		http.Error(w, "Duration must be positive", http.StatusBadRequest)
		return
	}

	service.ID = uuid.NewString()
	if err := h.db.Create(&service).Error; err != nil {
		http.Error(w, "Error creating service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(service)
}

func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var service models.ServiceOffering
	if err := json.NewDecoder(r.Body).Decode(&service); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if service.ID == "" {
		http.Error(w, "Service ID is required", http.StatusBadRequest)
		return
	}

	var existing models.ServiceOffering
	if err := h.db.First(&existing, "id = ?", service.ID).Error; err != nil {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}

	existing.Name = service.Name
	existing.Price = service.Price
	existing.DurationMinutes = service.DurationMinutes
	existing.Online = service.Online
	existing.Tags = service.Tags

	if err := h.db.Save(&existing).Error; err != nil {
		http.Error(w, "Error updating service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(existing)
}

// DeleteServices removes the catalog entries listed in the body.
func (h *CatalogHandler) DeleteServices(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.IDs) == 0 {
		http.Error(w, "Service IDs are required", http.StatusBadRequest)
		return
	}

	result := h.db.Where("id IN ?", payload.IDs).Delete(&models.ServiceOffering{})
	if result.Error != nil {
		http.Error(w, "Error deleting services", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Services deleted successfully",
		"deleted": result.RowsAffected,
	})
}
