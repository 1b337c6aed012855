package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-places/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	resultsHandler := handlers.NewResultsHandler(s.result)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/places", resultsHandler.ListPlaces)
		r.Get("/places/{index}", resultsHandler.GetPlace)
		r.Get("/events", resultsHandler.ListEvents)
		r.Get("/events/{index}", resultsHandler.GetEvent)
		r.Get("/stats", resultsHandler.Stats)
	})
}
