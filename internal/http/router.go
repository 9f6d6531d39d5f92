package http

import (
	"net/http"

	"land-backend/internal/handlers"
	"land-backend/internal/middleware"
	"land-backend/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	propertyHandler *handlers.PropertyHandler,
	workflowHandler *handlers.WorkflowHandler,
	queueHandler *handlers.ReviewQueueHandler,
	notificationHandler *handlers.NotificationHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics)

	// Public routes
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Users (administrators only)
	usersAPI := api.PathPrefix("/users").Subrouter()
	usersAPI.Use(authMiddleware.RequireRole(models.RoleAdministrator))
	usersAPI.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersAPI.HandleFunc("", userHandler.CreateUser).Methods("POST")
	usersAPI.HandleFunc("/{id}/toggle-active", userHandler.ToggleActive).Methods("PATCH")

	authors := authMiddleware.RequireRole(models.RoleInputter, models.RoleAdministrator)

	// Customers
	customersAPI := api.PathPrefix("/customers").Subrouter()
	customersAPI.HandleFunc("", customerHandler.List).Methods("GET")
	customersAPI.Handle("", authors(http.HandlerFunc(customerHandler.Create))).Methods("POST")
	customersAPI.HandleFunc("/{id}", customerHandler.Get).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.Update).Methods("PUT")
	registerWorkflow(customersAPI, workflowHandler, models.EntityCustomer)

	// Properties
	propertiesAPI := api.PathPrefix("/properties").Subrouter()
	propertiesAPI.HandleFunc("", propertyHandler.List).Methods("GET")
	propertiesAPI.Handle("", authors(http.HandlerFunc(propertyHandler.Create))).Methods("POST")
	propertiesAPI.HandleFunc("/{id}", propertyHandler.Get).Methods("GET")
	propertiesAPI.HandleFunc("/{id}", propertyHandler.Update).Methods("PUT")
	propertiesAPI.HandleFunc("/{id}/photos", propertyHandler.UploadPhoto).Methods("POST")
	propertiesAPI.HandleFunc("/{id}/photos", propertyHandler.ListPhotos).Methods("GET")
	propertiesAPI.HandleFunc("/{id}/archive", workflowHandler.Archive(models.EntityProperty)).Methods("POST")
	propertiesAPI.HandleFunc("/{id}/unarchive", workflowHandler.Unarchive(models.EntityProperty)).Methods("POST")
	registerWorkflow(propertiesAPI, workflowHandler, models.EntityProperty)

	// Review queue
	api.HandleFunc("/review-queue", queueHandler.Queue).Methods("GET")
	api.HandleFunc("/review-queue/summary", queueHandler.Summary).Methods("GET")

	// Notifications
	notificationsAPI := api.PathPrefix("/notifications").Subrouter()
	notificationsAPI.HandleFunc("", notificationHandler.List).Methods("GET")
	notificationsAPI.HandleFunc("/unread-count", notificationHandler.UnreadCount).Methods("GET")
	notificationsAPI.HandleFunc("/read-all", notificationHandler.MarkAllRead).Methods("POST")
	notificationsAPI.HandleFunc("/ws", notificationHandler.Stream).Methods("GET")
	notificationsAPI.HandleFunc("/{id}/read", notificationHandler.MarkRead).Methods("POST")

	return r
}

// registerWorkflow adds the transitions shared by customers and properties
func registerWorkflow(sr *mux.Router, h *handlers.WorkflowHandler, t models.EntityType) {
	sr.HandleFunc("/{id}/submit", h.Submit(t)).Methods("POST")
	sr.HandleFunc("/{id}/approve", h.Approve(t)).Methods("POST")
	sr.HandleFunc("/{id}/reject", h.Reject(t)).Methods("POST")
	sr.HandleFunc("/{id}", h.Delete(t)).Methods("DELETE")
	sr.HandleFunc("/{id}/activity", h.History(t)).Methods("GET")
}
