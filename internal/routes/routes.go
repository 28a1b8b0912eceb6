// internal/routes/routes.go
package routes

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"signage/internal/config"
)

func SetupRoutes(db *sql.DB, cfg *config.Config, s3Config *config.S3Config) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "signage fleet API",
		})
	})

	// Health check, including a database ping so load balancers can tell a
	// wedged pool apart from a healthy one.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"status": "ok"}
		dbStatus := map[string]string{"status": "ok"}
		code := http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			dbStatus["status"] = "down"
			dbStatus["error"] = err.Error()
			resp["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
		resp["db"] = dbStatus
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(resp)
	})

	RegisterSwaggerRoutes(r)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		RegisterAuthRoutes(r, db, cfg)
		RegisterScreenRoutes(r, db, cfg)
		RegisterCampaignRoutes(r, db, cfg)
		RegisterCreativeRoutes(r, db, cfg, s3Config)
		RegisterApprovalRoutes(r, db, cfg)
	})

	return r
}
