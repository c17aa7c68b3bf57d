package clients

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Jhol55/agendai-sub000/cmd/models"
)

// ClientHandler serves the client registry behind the contact search.
type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

func (h *ClientHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/get-clients", h.GetClients).Methods("GET")
	router.HandleFunc("/add-client", h.AddClient).Methods("POST")
}

// GetClients searches clients by name, case-insensitive substring match.
func (h *ClientHandler) GetClients(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Client{})
	if name := r.URL.Query().Get("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}

	var found []models.Client
	if err := query.Order("name ASC").Limit(50).Find(&found).Error; err != nil {
		http.Error(w, "Error retrieving clients", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(found)
}

func (h *ClientHandler) AddClient(w http.ResponseWriter, r *http.Request) {
	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if client.Name == "" {
		http.Error(w, "Client name is required", http.StatusBadRequest)
		return
	}

	client.ID = uuid.NewString()
	if err := h.db.Create(&client).Error; err != nil {
		http.Error(w, "Error creating client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(client)
}
