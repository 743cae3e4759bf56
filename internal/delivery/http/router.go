package http

import (
	"net/http"

	"medibook/internal/delivery/http/handler"
	"medibook/internal/delivery/http/middleware"
	"medibook/internal/domain/entity"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router                *mux.Router
	log                   *logrus.Logger
	authHandler           *handler.AuthHandler
	doctorHandler         *handler.DoctorHandler
	doctorScheduleHandler *handler.DoctorScheduleHandler
	bookingHandler        *handler.BookingHandler
	adminHandler          *handler.AdminHandler
	auditLogHandler       *handler.AuditLogHandler
	authMiddleware        *middleware.AuthMiddleware
	corsMiddleware        *middleware.CORSMiddleware
}

func NewRouter(
	log *logrus.Logger,
	authHandler *handler.AuthHandler,
	doctorHandler *handler.DoctorHandler,
	doctorScheduleHandler *handler.DoctorScheduleHandler,
	bookingHandler *handler.BookingHandler,
	adminHandler *handler.AdminHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:                mux.NewRouter(),
		log:                   log,
		authHandler:           authHandler,
		doctorHandler:         doctorHandler,
		doctorScheduleHandler: doctorScheduleHandler,
		bookingHandler:        bookingHandler,
		adminHandler:          adminHandler,
		auditLogHandler:       auditLogHandler,
		authMiddleware:        authMiddleware,
		corsMiddleware:        corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Doctor directory and availability (public)
	doctors := api.PathPrefix("/doctors").Subrouter()
	doctors.HandleFunc("", r.doctorHandler.BrowseDoctors).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}", r.doctorHandler.GetPublicDoctor).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}/availability", r.doctorScheduleHandler.GetAvailability).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}/availability/range", r.doctorScheduleHandler.GetAvailabilityRange).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}/schedule", r.doctorScheduleHandler.GetWeeklySchedule).Methods(http.MethodGet)
	doctors.Handle("/{id}/schedule/{day}",
		r.secured(r.doctorScheduleHandler.SetDaySchedule, entity.RoleDoctor, entity.RoleAdmin),
	).Methods(http.MethodPut)

	// Bookings (authenticated; ownership is checked per booking)
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.Handle("", middleware.RequirePatient(http.HandlerFunc(r.bookingHandler.CreateBooking))).Methods(http.MethodPost)
	bookings.Handle("/me", middleware.RequirePatient(http.HandlerFunc(r.bookingHandler.GetMyBookings))).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}", r.bookingHandler.GetBooking).Methods(http.MethodGet)
	bookings.Handle("/{id}/cancel", middleware.RequireRole(entity.RolePatient, entity.RoleAdmin)(http.HandlerFunc(r.bookingHandler.CancelBooking))).Methods(http.MethodPut)
	bookings.Handle("/{id}/reschedule", middleware.RequireRole(entity.RolePatient, entity.RoleAdmin)(http.HandlerFunc(r.bookingHandler.RescheduleBooking))).Methods(http.MethodPut)
	bookings.Handle("/{id}/confirm", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.bookingHandler.ConfirmBooking))).Methods(http.MethodPut)
	bookings.Handle("/{id}/complete", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.bookingHandler.CompleteBooking))).Methods(http.MethodPut)
	bookings.Handle("/{id}/no-show", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.bookingHandler.MarkNoShow))).Methods(http.MethodPut)

	// Doctor workspace (doctor only)
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/bookings", r.bookingHandler.GetDoctorBookings).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors", r.doctorHandler.ListDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.UpdateDoctor).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}/status", r.adminHandler.UpdateUserStatus).Methods(http.MethodPut)
	admin.HandleFunc("/reports/bookings", r.adminHandler.BookingReport).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Preflight requests match here so the CORS middleware can answer them
	r.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.router.Use(middleware.RequestLogger(r.log))
	r.router.Use(middleware.Prometheus)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

// secured requires an authenticated caller holding one of roles.
func (r *Router) secured(h http.HandlerFunc, roles ...entity.Role) http.Handler {
	return r.authMiddleware.Authenticate(middleware.RequireRole(roles...)(h))
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
