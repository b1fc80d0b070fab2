package http

import (
	"net/http"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/http/handler"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/http/middleware"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	bookingHandler     *handler.BookingHandler
	appointmentHandler *handler.AppointmentHandler
	paymentHandler     *handler.PaymentHandler
	slotHandler        *handler.SlotHandler
	doctorHandler      *handler.DoctorHandler
	hospitalHandler    *handler.HospitalHandler
	adminHandler       *handler.AdminHandler
	patientHandler     *handler.PatientHandler
	dashboardHandler   *handler.DashboardHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	metricsMiddleware  *middleware.MetricsMiddleware
	bookingLimiter     *middleware.RateLimiter
	metricsHandler     http.Handler
}

func NewRouter(
	bookingHandler *handler.BookingHandler,
	appointmentHandler *handler.AppointmentHandler,
	paymentHandler *handler.PaymentHandler,
	slotHandler *handler.SlotHandler,
	doctorHandler *handler.DoctorHandler,
	hospitalHandler *handler.HospitalHandler,
	adminHandler *handler.AdminHandler,
	patientHandler *handler.PatientHandler,
	dashboardHandler *handler.DashboardHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	metricsMiddleware *middleware.MetricsMiddleware,
	bookingLimiter *middleware.RateLimiter,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		bookingHandler:     bookingHandler,
		appointmentHandler: appointmentHandler,
		paymentHandler:     paymentHandler,
		slotHandler:        slotHandler,
		doctorHandler:      doctorHandler,
		hospitalHandler:    hospitalHandler,
		adminHandler:       adminHandler,
		patientHandler:     patientHandler,
		dashboardHandler:   dashboardHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		metricsMiddleware:  metricsMiddleware,
		bookingLimiter:     bookingLimiter,
		metricsHandler:     metricsHandler,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Catalogue and calendar (public)
	public := api.PathPrefix("/doctors").Subrouter()
	public.HandleFunc("", r.doctorHandler.ListDoctors).Methods(http.MethodGet)
	public.HandleFunc("/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	public.HandleFunc("/{id}/slots", r.slotHandler.GetSlots).Methods(http.MethodGet)
	public.HandleFunc("/{id}/custom-slots/{date}", r.slotHandler.GetCustomSlots).Methods(http.MethodGet)

	api.HandleFunc("/hospitals/register", r.hospitalHandler.Register).Methods(http.MethodPost)

	// Schedule management (doctor, its hospital, admin)
	schedule := api.PathPrefix("/doctors").Subrouter()
	schedule.Use(r.authMiddleware.Authenticate)
	schedule.Use(middleware.RequireStaff)
	schedule.HandleFunc("/{id}/custom-slots", r.slotHandler.SetCustomSlots).Methods(http.MethodPut)
	schedule.HandleFunc("/{id}/custom-slots/{date}", r.slotHandler.ClearCustomSlots).Methods(http.MethodDelete)
	schedule.HandleFunc("/{id}/availability", r.doctorHandler.ChangeAvailability).Methods(http.MethodPatch)

	// Appointment routes (any authenticated role, ownership checked per use case)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("", r.appointmentHandler.ListMine).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/cancel", r.appointmentHandler.Cancel).Methods(http.MethodPost)
	appointments.Handle("/{id}/complete", middleware.RequireStaff(http.HandlerFunc(r.appointmentHandler.Complete))).Methods(http.MethodPost)

	dashboard := api.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(r.authMiddleware.Authenticate)
	dashboard.Use(middleware.RequireStaff)
	dashboard.HandleFunc("", r.dashboardHandler.GetDashboard).Methods(http.MethodGet)

	// Patient routes (protected - patient only)
	patient := api.PathPrefix("/patient").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.Handle("/appointments", r.bookingLimiter.Limit(http.HandlerFunc(r.bookingHandler.Book))).Methods(http.MethodPost)
	patient.HandleFunc("/appointments/{id}/rating", r.bookingHandler.Rate).Methods(http.MethodPost)
	patient.HandleFunc("/appointments/{id}/checkout", r.paymentHandler.CreateCheckout).Methods(http.MethodPost)
	patient.HandleFunc("/appointments/{id}/payment", r.paymentHandler.ConfirmPayment).Methods(http.MethodPost)
	patient.HandleFunc("/profile", r.patientHandler.GetMyProfile).Methods(http.MethodGet)
	patient.HandleFunc("/profile", r.patientHandler.UpdateMyProfile).Methods(http.MethodPut)

	// Doctor routes (protected - doctor only)
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/profile", r.doctorHandler.UpdateMyProfile).Methods(http.MethodPut)

	// Hospital routes (protected - hospital only)
	hospital := api.PathPrefix("/hospital").Subrouter()
	hospital.Use(r.authMiddleware.Authenticate)
	hospital.Use(middleware.RequireHospital)
	hospital.HandleFunc("/me", r.hospitalHandler.GetMe).Methods(http.MethodGet)
	hospital.HandleFunc("/doctors", r.hospitalHandler.AddDoctor).Methods(http.MethodPost)
	hospital.HandleFunc("/doctors", r.hospitalHandler.ListMyDoctors).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/hospitals/pending", r.adminHandler.ListPendingHospitals).Methods(http.MethodGet)
	admin.HandleFunc("/hospitals/{id}/approve", r.adminHandler.ApproveHospital).Methods(http.MethodPost)
	admin.HandleFunc("/hospitals/{id}/reject", r.adminHandler.RejectHospital).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/pending", r.adminHandler.ListPendingDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}/approve", r.adminHandler.ApproveDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/appointments", r.appointmentHandler.ListAll).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS and request metrics middleware
	r.router.Use(r.corsMiddleware.Handle)
	r.router.Use(r.metricsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
