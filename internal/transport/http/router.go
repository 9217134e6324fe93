package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veridoc/internal/platform/middleware"
)

// NewRouter wires all public endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Post("/session", h.handleEstablishSession)
	r.Delete("/session", h.handleClearSession)

	r.Post("/verify", h.handleSubmit)
	r.Get("/verify/state", h.handleVerifyState)
	r.Post("/verify/reset", h.handleVerifyReset)
	r.Get("/documents", h.handleDocuments)

	r.Route("/console", func(r chi.Router) {
		r.Get("/alerts", h.handleConsoleAlerts)
		r.Get("/logs", h.handleConsoleLogs)
		r.Post("/refresh", h.handleConsoleRefresh)
		r.Post("/alerts/{id}/ack", h.handleConsoleAcknowledge)
	})

	r.Get("/healthz", h.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
