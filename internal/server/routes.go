package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if s.config.Env == "dev" || s.config.Env == "development" {
		r.Use(middleware.NoCache)
	}

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Forwarded-For"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		// File routes. The Authorization header, when present, feeds the
		// unverified identity extractor for logging; it is not an access
		// control here.
		r.Route("/files", func(r chi.Router) {
			r.Post("/", s.filesHandler.HandleUpload)
			r.Post("/metadata", s.filesHandler.HandleStoreMetadata)
			r.Get("/metadata", s.filesHandler.HandleListByTarget)
			r.Get("/usage", s.filesHandler.HandleListByUser)
			r.Get("/usage/stats", s.filesHandler.HandleUsageStats)

			// File keys contain a path separator and arrive percent-encoded
			// as a single segment.
			r.Get("/{fileKey}", s.filesHandler.HandlePreview)
			r.Get("/{fileKey}/download", s.filesHandler.HandleDownload)
			r.Delete("/{fileKey}", s.filesHandler.HandleDelete)
		})

		// Log queries
		r.Route("/logs", func(r chi.Router) {
			r.Get("/action/{action}", s.activityHandler.HandleListByAction)
			r.Get("/user-delete", s.activityHandler.HandleUserDeletes)
			r.Get("/user-download", s.activityHandler.HandleUserDownloads)

			// Log removal requires a verified admin token
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(s.tokenAuth))
				r.Use(s.AdminOnly)
				r.Delete("/{logId}", s.activityHandler.HandleDeleteLog)
			})
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtauth.Verifier(s.tokenAuth))
			r.Use(s.AdminOnly)
			r.Get("/files", s.filesHandler.HandleListAll)
		})
	})

	return r
}
