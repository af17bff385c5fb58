package http

import (
	"net/http"

	"dental-booking/internal/delivery/http/handler"
	"dental-booking/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	appointmentHandler  *handler.AppointmentHandler
	availabilityHandler *handler.AvailabilityHandler
	serviceHandler      *handler.ServiceHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	metricsPath         string
	metricsHandler      http.Handler
}

func NewRouter(
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	availabilityHandler *handler.AvailabilityHandler,
	serviceHandler *handler.ServiceHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		appointmentHandler:  appointmentHandler,
		availabilityHandler: availabilityHandler,
		serviceHandler:      serviceHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

// WithMetrics exposes h at path outside the versioned API
func (r *Router) WithMetrics(path string, h http.Handler) *Router {
	r.metricsPath = path
	r.metricsHandler = h
	return r
}

func (r *Router) Setup() *mux.Router {
	if r.metricsHandler != nil {
		r.router.Handle(r.metricsPath, r.metricsHandler).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Public routes
	api.HandleFunc("/available-slots", r.availabilityHandler.GetAvailableSlots).Methods(http.MethodGet)
	api.HandleFunc("/chatbot/appointments", r.appointmentHandler.CreateFromChatbot).Methods(http.MethodPost)
	api.HandleFunc("/services", r.serviceHandler.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}", r.serviceHandler.GetByID).Methods(http.MethodGet)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Patient routes
	patient := api.PathPrefix("/appointments").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("", r.appointmentHandler.Create).Methods(http.MethodPost)
	patient.HandleFunc("/mine", r.appointmentHandler.GetMine).Methods(http.MethodGet)
	patient.HandleFunc("/{id}/cancel", r.appointmentHandler.CancelOwn).Methods(http.MethodPut)

	// Front desk routes (staff and admin)
	staff := api.PathPrefix("/appointments").Subrouter()
	staff.Use(r.authMiddleware.Authenticate)
	staff.Use(middleware.RequireStaff)
	staff.HandleFunc("", r.appointmentHandler.GetAll).Methods(http.MethodGet)
	staff.HandleFunc("/staff", r.appointmentHandler.CreateForGuest).Methods(http.MethodPost)
	staff.HandleFunc("/{id}", r.appointmentHandler.GetByID).Methods(http.MethodGet)
	staff.HandleFunc("/{id}/status", r.appointmentHandler.UpdateStatus).Methods(http.MethodPut)
	staff.HandleFunc("/{id}", r.appointmentHandler.Delete).Methods(http.MethodDelete)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/services", r.serviceHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
