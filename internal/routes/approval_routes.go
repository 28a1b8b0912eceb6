// internal/routes/approval_routes.go
package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"signage/internal/config"
	"signage/internal/handlers"
	"signage/internal/middleware"
	"signage/internal/repository"
)

func RegisterApprovalRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	approvalRepo := repository.NewApprovalRepository(db)
	screenRepo := repository.NewScreenRepository(db)
	creativeRepo := repository.NewCreativeRepository(db)
	approvalHandler := handlers.NewApprovalHandler(approvalRepo, screenRepo, creativeRepo)

	router.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))

		r.Route("/approvals", func(r chi.Router) {
			r.Get("/", approvalHandler.ListApprovals)
			r.Post("/", approvalHandler.ProposeApproval)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/approve", approvalHandler.Approve)
				r.Post("/reject", approvalHandler.Reject)
			})
		})
	})
}
