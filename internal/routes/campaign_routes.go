// internal/routes/campaign_routes.go
package routes

import (
	"database/sql"
	"log"

	"github.com/go-chi/chi/v5"

	"signage/internal/config"
	"signage/internal/handlers"
	"signage/internal/middleware"
	"signage/internal/repository"
)

func RegisterCampaignRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	log.Println("Registering campaign routes...")

	campaignRepo := repository.NewCampaignRepository(db)
	campaignHandler := handlers.NewCampaignHandler(campaignRepo)

	router.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", campaignHandler.ListCampaigns)
			r.Post("/", campaignHandler.CreateCampaign)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", campaignHandler.GetCampaign)
				r.Put("/", campaignHandler.UpdateCampaign)
				r.Delete("/", campaignHandler.DeleteCampaign)
			})
		})
	})
}
