package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mercator-hq/placement/pkg/telemetry/health"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoverer)
	r.Use(s.requestID)
	if s.opts.Tracer != nil {
		r.Use(s.opts.Tracer.HTTPMiddleware)
	}
	r.Use(s.accessLog)
	r.Use(s.instrument)

	tel := s.opts.Telemetry
	r.Get(tel.Health.LivenessPath, s.opts.Health.LivenessHandler())
	r.Get(tel.Health.ReadinessPath, s.opts.Health.ReadinessHandler())
	r.Get("/version", health.VersionHandler(s.opts.Version, "", ""))
	if s.opts.Metrics != nil && tel.Metrics.IsEnabled() {
		r.Handle(tel.Metrics.Path, s.opts.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)

		r.Post("/resolve", s.handleResolve)
		r.Post("/layouts/{id}/render", s.handleRenderIndividual)

		r.Group(func(r chi.Router) {
			if s.opts.Auth != nil {
				r.Use(s.opts.Auth.Handle)
			}
			r.Get("/layouts", s.handleListLayouts)
			r.Post("/layouts", s.handleCreateLayout)
			r.Get("/layouts/{id}", s.handleGetLayout)
			r.Get("/layouts/{id}/tags", s.handleLayoutTags)
			r.Put("/layouts/{id}", s.handlePutLayout)
			r.Delete("/layouts/{id}", s.handleDeleteLayout)
			r.Get("/vocabulary", s.handleVocabulary)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path)
	})

	return r
}
