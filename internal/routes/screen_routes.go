// internal/routes/screen_routes.go
package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"signage/internal/config"
	"signage/internal/handlers"
	"signage/internal/middleware"
	"signage/internal/playlist"
	"signage/internal/repository"
)

func RegisterScreenRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	screenRepo := repository.NewScreenRepository(db)
	screenHandler := handlers.NewScreenHandler(screenRepo, cfg.HeartbeatInterval)

	resolver := playlist.NewResolver(
		screenRepo,
		repository.NewCampaignRepository(db),
		repository.NewCreativeRepository(db),
		repository.NewApprovalRepository(db),
		playlist.WithImageDuration(cfg.ImageDuration),
	)
	playlistHandler := handlers.NewPlaylistHandler(resolver)

	router.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))

		r.Route("/screens", func(r chi.Router) {
			r.Get("/", screenHandler.ListScreens)
			r.Post("/", screenHandler.CreateScreen)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", screenHandler.GetScreen)
				r.Put("/", screenHandler.UpdateScreen)
				r.Delete("/", screenHandler.DeleteScreen)
				r.Post("/heartbeat", screenHandler.Heartbeat)
				r.Get("/playlist", playlistHandler.GetPlaylist)
			})
		})

		r.Get("/fleet/health", screenHandler.FleetHealth)
	})
}
