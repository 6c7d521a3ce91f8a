package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/vidforge/internal/api/middleware"
	"github.com/kiranshivaraju/vidforge/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit
	Drain     *mw.Drain

	HealthHandler     http.HandlerFunc
	GenerateHandler   http.HandlerFunc
	TriggerRunHandler http.HandlerFunc
	GetRunHandler     http.HandlerFunc
	ListRunsHandler   http.HandlerFunc
	MediaHandler      http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	if deps.Drain != nil {
		r.Use(deps.Drain.Track)
	}

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Get("/media/{name}", orNotImplemented(deps.MediaHandler))

	r.Get("/api/v1/runs", orNotImplemented(deps.ListRunsHandler))
	r.Get("/api/v1/runs/{runID}", orNotImplemented(deps.GetRunHandler))

	// Generation routes, rate limited per client IP
	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/generate_video", orNotImplemented(deps.GenerateHandler))
		r.Post("/api/v1/generate", orNotImplemented(deps.GenerateHandler))
		r.Post("/api/v1/runs", orNotImplemented(deps.TriggerRunHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
