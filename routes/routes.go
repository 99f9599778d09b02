package routes

import (
	"github.com/gorilla/mux"

	"github.com/websense/RPL/handlers"
	"github.com/websense/RPL/middleware"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly  = []string{"GET", "OPTIONS"}
	MethodsPostOnly = []string{"POST", "OPTIONS"}
)

const (
	PathAPI    = "/api"
	PathHealth = "/health"
)

func RegisterRoutes(r *mux.Router) {
	// ====================
	// HEALTH CHECK (Public)
	// ====================
	r.HandleFunc(PathHealth, handlers.HealthCheck).Methods(MethodsGetOnly...)

	// ====================
	// PUBLIC ROUTES (applicant-facing, no auth)
	// ====================
	r.HandleFunc("/api/login", handlers.Login).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/logout", handlers.Logout).Methods(MethodsPostOnly...)

	// Handbook lookup used by the submission form to autofill UWA units
	r.HandleFunc("/api/uwa/{code}", handlers.GetUnitMetadata).Methods(MethodsGetOnly...)

	// Application submission and supporting documents
	r.HandleFunc("/api/submit", handlers.SubmitApplication).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/upload-supporting", handlers.UploadSupporting).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/files/{id}", handlers.DownloadFile).Methods(MethodsGetOnly...)

	// Real-time review feed (token authenticated via query parameter)
	r.HandleFunc("/api/ws/reviews", handlers.ReviewFeed).Methods(MethodsGetOnly...)

	// ====================
	// STAFF ROUTES (identity attached when a token is present)
	// ====================
	staffRouter := r.PathPrefix(PathAPI).Subrouter()
	staffRouter.Use(middleware.OptionalAuth)

	staffRouter.HandleFunc("/db", handlers.ListApplications).Methods(MethodsGetOnly...)
	staffRouter.HandleFunc("/application/{id}", handlers.GetApplication).Methods(MethodsGetOnly...)
	staffRouter.HandleFunc("/application/{id}/comments", handlers.PostComment).Methods(MethodsPostOnly...)
	staffRouter.HandleFunc("/application/{id}/unlink-supporting", handlers.UnlinkSupportingDoc).Methods(MethodsPostOnly...)
	staffRouter.HandleFunc("/whoami", handlers.Whoami).Methods(MethodsGetOnly...)

	// ====================
	// ADMIN ROUTES (require a valid token)
	// ====================
	adminRouter := r.PathPrefix(PathAPI).Subrouter()
	adminRouter.Use(middleware.AuthMiddleware)

	adminRouter.HandleFunc("/application/{id}/assign-uc", handlers.AssignUC).Methods(MethodsPostOnly...)
}
