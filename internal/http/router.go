package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"oral-health-intake-service/internal/app"
	"oral-health-intake-service/internal/observability"
	"oral-health-intake-service/internal/observability/metrics"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	return newRouter(&Handler{
		sessions: application.Sessions,
		spool:    application.Spool,
		ready:    application.Ready,
		maxBody:  application.Cfg.Audio.MaxAudioBytes,
	})
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.HTTPMetrics(metrics.DefaultMetrics))

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", h.readiness)

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Get("/form", h.form)
		r.Get("/assessments/export", h.export)

		r.Post("/sessions", h.createSession)
		r.Route("/sessions/{sessionId}", func(r chi.Router) {
			r.Delete("/", h.closeSession)
			r.Post("/doctor", h.submitInfo)
			r.Post("/audio", h.uploadAudio)
			r.Post("/save", h.save)
		})
	})

	return r
}
