package notification

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"gorm.io/gorm"

	"github.com/Jhol55/agendai-sub000/cmd/models"
)

const pageSize = 20

// NotificationHandler serves the in-app notification feed and the push
// device registry.
type NotificationHandler struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewNotificationHandler(db *gorm.DB, notifier *Notifier) *NotificationHandler {
	return &NotificationHandler{db: db, notifier: notifier}
}

func (h *NotificationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/get-notifications", h.GetNotifications).Methods("GET")
	router.HandleFunc("/update-notification", h.UpdateNotification).Methods("POST")
	router.HandleFunc("/devices", h.RegisterDevice).Methods("POST")
	router.HandleFunc("/devices/{id}", h.DeleteDevice).Methods("DELETE")
}

// GetNotifications returns one page of the feed, most recent first.
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	var total int64
	h.db.Model(&models.Notification{}).Count(&total)

	var notifications []models.Notification
	if err := h.db.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&notifications).Error; err != nil {
		http.Error(w, "Error retrieving notifications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"notifications": notifications,
		"total":         total,
		"page":          page,
		"total_pages":   (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// UpdateNotification updates a notification record, typically marking it read.
func (h *NotificationHandler) UpdateNotification(w http.ResponseWriter, r *http.Request) {
	var notification models.Notification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if notification.ID == "" {
		http.Error(w, "Notification ID is required", http.StatusBadRequest)
		return
	}

	result := h.db.Model(&models.Notification{}).Where("id = ?", notification.ID).
		Updates(map[string]interface{}{
			"read":  notification.Read,
			"title": notification.Title,
			"body":  notification.Body,
		})
	if result.Error != nil {
		http.Error(w, "Error updating notification", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Notification updated successfully",
	})
}

// RegisterDevice registers a push target for the mobile companion.
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var device models.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if device.UserID == "" || device.Token == "" {
		http.Error(w, "UserID and token are required", http.StatusBadRequest)
		return
	}
	if _, err := expo.NewExponentPushToken(device.Token); err != nil {
		http.Error(w, "Invalid Expo push token format", http.StatusBadRequest)
		return
	}

	var existing models.Device
	result := h.db.Where("token = ? AND user_id = ?", device.Token, device.UserID).First(&existing)
	if result.Error == nil {
		existing.DeviceType = device.DeviceType
		existing.DeviceName = device.DeviceName
		if err := h.db.Save(&existing).Error; err != nil {
			http.Error(w, "Error updating device", http.StatusInternalServerError)
			return
		}
		device = existing
	} else {
		if err := h.db.Create(&device).Error; err != nil {
			http.Error(w, "Error creating device", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Device registered successfully",
		"device":  device,
	})
}

func (h *NotificationHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid device ID", http.StatusBadRequest)
		return
	}

	result := h.db.Delete(&models.Device{}, deviceID)
	if result.Error != nil {
		http.Error(w, "Error deleting device", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Device not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Device deleted successfully",
	})
}

// Notifier records in-app notifications and pushes them to every registered
// device. Push failures are logged, never surfaced.
type Notifier struct {
	db         *gorm.DB
	expoClient *expo.PushClient
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{
		db:         db,
		expoClient: expo.NewPushClient(nil),
	}
}

func (n *Notifier) Notify(title, body, appointmentID string) {
	record := models.Notification{
		ID:            uuid.NewString(),
		Title:         title,
		Body:          body,
		AppointmentID: appointmentID,
	}
	if err := n.db.Create(&record).Error; err != nil {
		log.Printf("Error creating notification: %v", err)
		return
	}

	go n.push(record)
}

func (n *Notifier) push(record models.Notification) {
	var devices []models.Device
	if err := n.db.Find(&devices).Error; err != nil {
		log.Printf("Error retrieving devices: %v", err)
		return
	}

	var tokens []expo.ExponentPushToken
	for _, d := range devices {
		token, err := expo.NewExponentPushToken(d.Token)
		if err != nil {
			continue
		}
		tokens = append(tokens, token)
	}
	if len(tokens) == 0 {
		return
	}

	response, err := n.expoClient.Publish(&expo.PushMessage{
		To:       tokens,
		Title:    record.Title,
		Body:     record.Body,
		Data:     map[string]string{"appointment_id": record.AppointmentID},
		Sound:    "default",
		Priority: expo.DefaultPriority,
	})
	if err != nil {
		log.Printf("Error sending push notification: %v", err)
		return
	}
	if err := response.ValidateResponse(); err != nil {
		log.Printf("Push notification rejected: %v", err)
	}
}
