// internal/routes/creative_routes.go
package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"signage/internal/config"
	"signage/internal/handlers"
	"signage/internal/middleware"
	"signage/internal/repository"
)

func RegisterCreativeRoutes(router chi.Router, db *sql.DB, cfg *config.Config, s3Config *config.S3Config) {
	creativeRepo := repository.NewCreativeRepository(db)
	creativeHandler := handlers.NewCreativeHandler(creativeRepo, s3Config)

	router.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))

		r.Route("/creatives", func(r chi.Router) {
			r.Get("/", creativeHandler.ListCreatives)
			r.Post("/", creativeHandler.CreateCreative)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", creativeHandler.GetCreative)
				r.Delete("/", creativeHandler.DeleteCreative)
				r.Post("/media", creativeHandler.UploadMedia)
			})
		})
	})
}
