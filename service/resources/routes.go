package resources

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Jhol55/agendai-sub000/cmd/models"
)

// ResourceHandler serves the bookable entities appointments are assigned to.
type ResourceHandler struct {
	db *gorm.DB
}

func NewResourceHandler(db *gorm.DB) *ResourceHandler {
	return &ResourceHandler{db: db}
}

func (h *ResourceHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/get-resources", h.GetResources).Methods("GET")
	router.HandleFunc("/add-resource", h.AddResource).Methods("POST")
}

func (h *ResourceHandler) GetResources(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Resource{})
	if t := r.URL.Query().Get("type"); t != "" {
		query = query.Where("type = ?", t)
	}

	var found []models.Resource
	if err := query.Order("name ASC").Find(&found).Error; err != nil {
		http.Error(w, "Error retrieving resources", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(found)
}

func (h *ResourceHandler) AddResource(w http.ResponseWriter, r *http.Request) {
	var resource models.Resource
	if err := json.NewDecoder(r.Body).Decode(&resource); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if resource.Name == "" {
		http.Error(w, "Resource name is required", http.StatusBadRequest)
		return
	}

	resource.ID = uuid.NewString()
	if err := h.db.Create(&resource).Error; err != nil {
		http.Error(w, "Error creating resource", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resource)
}
