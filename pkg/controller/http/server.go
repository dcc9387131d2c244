package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/qassure-lab/lotgate/pkg/usecase"
)

// Server represents the HTTP server
type Server struct {
	*http.Server
	router chi.Router
}

// NewServer creates the HTTP surface over the acceptance, approval and
// escalation use cases
func NewServer(ctx context.Context, addr string, acceptanceUC *usecase.Acceptance, approvalUC *usecase.Approval, escalationUC *usecase.Escalation) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	h := newHandler(acceptanceUC, approvalUC, escalationUC)

	router.Get("/health", handleHealth)

	router.Route("/api", func(r chi.Router) {
		r.Route("/inspections", func(r chi.Router) {
			r.Post("/", h.handleCreateInspection)
			r.Get("/{inspectionID}", h.handleGetInspection)
			r.Get("/{inspectionID}/verdict", h.handlePreviewVerdict)
			r.Post("/{inspectionID}/defects", h.handleRecordDefect)
			r.Post("/{inspectionID}/reset", h.handleResetTally)
			r.Post("/{inspectionID}/submit", h.handleSubmit)
		})

		r.Route("/approvals", func(r chi.Router) {
			r.Post("/", h.handleOpenApproval)
			r.Post("/{approvalID}/resolve", h.handleResolveApproval)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Post("/", h.handleRaiseNotification)
			r.Get("/", h.handleListOpenNotifications)
			r.Get("/{notificationID}", h.handleGetNotification)
			r.Post("/{notificationID}/escalate", h.handleEscalate)
			r.Post("/{notificationID}/resolve", h.handleResolveNotification)
			r.Post("/{notificationID}/status", h.handleUpdateNotificationStatus)
		})
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		Server: httpServer,
		router: router,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Router returns the underlying router (useful for testing)
func (s *Server) Router() chi.Router {
	return s.router
}
