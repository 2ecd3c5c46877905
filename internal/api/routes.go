package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ignite/open-tracker/internal/tracking"
)

// SetupRoutes wires the beacon endpoints, the query API and the landing
// page onto one router.
func SetupRoutes(h *Handlers, beacon *tracking.Handler, stealthHome bool) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/", HomeHandler(stealthHome))
	r.Get("/health", h.HandleHealth)

	beacon.Register(r)

	// Query API, consumed by the sender dashboard (browser client).
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/tracking", h.HandleListEvents)
		r.Post("/tracking", h.HandleRegister)
		r.Get("/tracking/{id}", h.HandleGetEvent)
	})

	return r
}
