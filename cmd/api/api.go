package api

import (
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Jhol55/agendai-sub000/service/appointment"
	"github.com/Jhol55/agendai-sub000/service/catalog"
	"github.com/Jhol55/agendai-sub000/service/clients"
	notification "github.com/Jhol55/agendai-sub000/service/notifications"
	"github.com/Jhol55/agendai-sub000/service/realtime"
	"github.com/Jhol55/agendai-sub000/service/resources"
	"github.com/Jhol55/agendai-sub000/service/schedule"
	"github.com/Jhol55/agendai-sub000/service/settings"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	hub := realtime.NewHub()
	router.HandleFunc("/ws", hub.HandleWebSocket)

	notifier := notification.NewNotifier(s.db)

	appointmentHandler := appointment.NewAppointmentHandler(s.db, hub, notifier)
	appointmentHandler.RegisterRoutes(subrouter)

	scheduleHandler := schedule.NewScheduleHandler(s.db)
	scheduleHandler.RegisterRoutes(subrouter)

	settingsHandler := settings.NewSettingsHandler(s.db)
	settingsHandler.RegisterRoutes(subrouter)

	catalogHandler := catalog.NewCatalogHandler(s.db)
	catalogHandler.RegisterRoutes(subrouter)

	clientHandler := clients.NewClientHandler(s.db)
	clientHandler.RegisterRoutes(subrouter)

	resourceHandler := resources.NewResourceHandler(s.db)
	resourceHandler.RegisterRoutes(subrouter)

	notificationHandler := notification.NewNotificationHandler(s.db, notifier)
	notificationHandler.RegisterRoutes(subrouter)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Client-ID"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, cors(router))
}
