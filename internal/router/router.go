package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/itsnaaur/OpenLine/internal/advisory"
	"github.com/itsnaaur/OpenLine/internal/config"
	"github.com/itsnaaur/OpenLine/internal/handlers"
	"github.com/itsnaaur/OpenLine/internal/middleware"
	"github.com/itsnaaur/OpenLine/internal/repository/postgres"
	"github.com/itsnaaur/OpenLine/internal/service"
	"github.com/itsnaaur/OpenLine/internal/storage"
)

// lookupRateLimit is the fixed-window limit on the access-code lookup
// surface. It blunts brute-force guessing; the counter is per-instance,
// which weakens the limit behind a load balancer (known gap, swap in a
// shared httprate counter backend to fix).
const (
	lookupRateLimit  = 10
	lookupRateWindow = time.Minute
)

// lookupLimiter builds the limiter for the access-code surface. The
// window is a parameter so tests can watch it roll over without waiting
// out the production minute.
func lookupLimiter(window time.Duration) func(http.Handler) http.Handler {
	return httprate.LimitByIP(lookupRateLimit, window)
}

func New(log zerolog.Logger, db *pgxpool.Pool, store storage.BlobStore, cfg config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))
	r.Use(middleware.WithAuth(log, cfg))

	// Health
	r.Get("/healthz", handlers.Health())

	// Repos + services + handlers
	reportRepo := postgres.NewReportRepo(db)
	adminRepo := postgres.NewAdminRepo(db)
	signer := storage.NewURLSigner(cfg.EvidenceKey)
	classifier := advisory.NewGeminiClassifier(cfg.GeminiBaseURL, cfg.GeminiAPIKey, log)

	submitSvc := service.NewSubmitService(reportRepo, store, log)
	advisorySvc := service.NewAdvisoryService(reportRepo, classifier)
	authSvc := service.NewAuthService(adminRepo, cfg.SessionSecret)

	rh := handlers.NewReportHTTP(submitSvc, reportRepo)
	ah := handlers.NewAdminHTTP(reportRepo, advisorySvc)
	eh := handlers.NewEvidenceHTTP(reportRepo, store, signer, cfg.PublicBaseURL, log)
	uh := handlers.NewAuthHTTP(authSvc, adminRepo)

	r.Route("/api", func(r chi.Router) {
		r.Post("/reports", rh.Submit())

		// Access-code surface gets its own tight limiter.
		r.Group(func(r chi.Router) {
			r.Use(lookupLimiter(lookupRateWindow))
			r.Get("/reports/code/{code}", rh.Lookup())
			r.Get("/reports/code/{code}/evidence", eh.ByAccessCode())
		})
		r.Post("/reports/code/{code}/messages", rh.AddMessage())

		r.Get("/evidence/{key}", eh.Serve())

		r.Post("/auth/login", uh.Login())
		r.Post("/auth/logout", uh.Logout())
		r.Get("/auth/me", uh.Me())

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/reports", ah.List())
			r.Get("/reports/summary", ah.Summary())
			r.Route("/reports/{id}", func(r chi.Router) {
				r.Get("/", ah.Get())
				r.Patch("/status", ah.UpdateStatus())
				r.Post("/messages", ah.AddMessage())
				r.Post("/classify", ah.Classify())
				r.Put("/advisory", ah.SaveAdvisory())
				r.Post("/override", ah.Override())
				r.Get("/evidence", eh.ByReportID())
			})
		})
	})

	return r
}
