package http

import (
	"net/http"

	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/http/handler"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	doctorHandler      *handler.DoctorHandler
	queueHandler       *handler.QueueHandler
	appointmentHandler *handler.AppointmentHandler
	chatHandler        *handler.ChatHandler
	auditLogHandler    *handler.AuditLogHandler
	wsHandler          *handler.WSHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	doctorHandler *handler.DoctorHandler,
	queueHandler *handler.QueueHandler,
	appointmentHandler *handler.AppointmentHandler,
	chatHandler *handler.ChatHandler,
	auditLogHandler *handler.AuditLogHandler,
	wsHandler *handler.WSHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		doctorHandler:      doctorHandler,
		queueHandler:       queueHandler,
		appointmentHandler: appointmentHandler,
		chatHandler:        chatHandler,
		auditLogHandler:    auditLogHandler,
		wsHandler:          wsHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// WebSocket entrypoint (authenticates itself, browsers cannot set headers)
	api.HandleFunc("/ws", r.wsHandler.ServeWS).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Doctor discovery (public)
	api.HandleFunc("/doctors/search", r.doctorHandler.SearchDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/availability", r.doctorHandler.GetAvailability).Methods(http.MethodGet)

	// Doctor self-service (doctor only)
	doctorMe := api.PathPrefix("/doctors/me").Subrouter()
	doctorMe.Use(r.authMiddleware.Authenticate)
	doctorMe.Use(middleware.RequireDoctor)
	doctorMe.HandleFunc("/profile", r.doctorHandler.UpdateProfile).Methods(http.MethodPut)
	doctorMe.HandleFunc("/working-hours", r.doctorHandler.UpdateWorkingHours).Methods(http.MethodPut)

	// Queue routes (protected)
	queue := api.PathPrefix("/queue").Subrouter()
	queue.Use(r.authMiddleware.Authenticate)
	queue.HandleFunc("", r.queueHandler.GetQueue).Methods(http.MethodGet)
	queue.HandleFunc("/{id}", r.queueHandler.Remove).Methods(http.MethodDelete)

	queuePatient := api.PathPrefix("/queue").Subrouter()
	queuePatient.Use(r.authMiddleware.Authenticate)
	queuePatient.Use(middleware.RequirePatient)
	queuePatient.HandleFunc("", r.queueHandler.JoinQueue).Methods(http.MethodPost)
	queuePatient.HandleFunc("/status", r.queueHandler.GetMyStatus).Methods(http.MethodGet)

	queueStaff := api.PathPrefix("/queue").Subrouter()
	queueStaff.Use(r.authMiddleware.Authenticate)
	queueStaff.Use(middleware.RequireStaff)
	queueStaff.HandleFunc("/next", r.queueHandler.CallNext).Methods(http.MethodPost)
	queueStaff.HandleFunc("/{id}/complete", r.queueHandler.Complete).Methods(http.MethodPost)

	// Appointment routes (protected)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	appointments.HandleFunc("/my", r.appointmentHandler.GetMyAppointments).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPost)

	// Chat routes (protected)
	chat := api.PathPrefix("/chat").Subrouter()
	chat.Use(r.authMiddleware.Authenticate)
	chat.HandleFunc("/rooms", r.chatHandler.ListRooms).Methods(http.MethodGet)
	chat.HandleFunc("/rooms/{id}/messages", r.chatHandler.GetMessages).Methods(http.MethodGet)
	chat.HandleFunc("/rooms/{id}/read", r.chatHandler.MarkRead).Methods(http.MethodPost)
	chat.HandleFunc("/messages", r.chatHandler.SendMessage).Methods(http.MethodPost)

	// Admin routes (admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAuditLogs).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
