package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"accredia/internal/auth"
	"accredia/internal/httpserver/handlers"
	"accredia/internal/mailer"
	"accredia/internal/obs"
	"accredia/internal/objstore"
	"accredia/internal/tier"
)

func NewRouter(db *gorm.DB, store objstore.Store, tiers tier.Store, mail *mailer.Mailer, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Use(obs.Middleware)

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		status := "ok"
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status = "degraded"
			code = http.StatusInternalServerError
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"data":{"status":"` + status + `"}}`))
	})
	r.Method(http.MethodGet, "/metrics", obs.Handler())

	r.Post("/api/auth/request-link", handlers.RequestLink(db, mail, lg))
	r.Get("/api/auth/verify", handlers.VerifyLink(db, lg))
	r.Post("/api/auth/login", handlers.Login(db, lg))
	r.Post("/api/billing/webhook", handlers.Webhook(tiers, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.SessionAuth(db))
		protected.Get("/api/me", handlers.Me(db))
		protected.Post("/api/auth/logout", handlers.Logout(db))

		protected.Post("/api/upload", handlers.Upload(db, store, lg))
		protected.Get("/api/documents", handlers.ListDocuments(db))
		protected.Get("/api/documents/{id}", handlers.GetDocument(db))

		protected.Post("/api/standards", handlers.CreateStandard(db, lg))
		protected.Get("/api/standards", handlers.ListStandards(db))
		protected.Get("/api/standards/{id}", handlers.GetStandard(db))

		protected.Post("/api/map/auto", handlers.AutoMap(db, lg))
		protected.Post("/api/map/review", handlers.MapReview(db, lg))

		protected.Post("/api/gaps/run", handlers.RunGap(db, lg))
		protected.Get("/api/gaps/{runId}", handlers.GetGapRun(db))

		protected.Post("/api/narratives", handlers.CreateNarrative(db, store, lg))
		protected.Get("/api/narratives/{runId}", handlers.GetNarrative(db))

		protected.Get("/api/search", handlers.Search(db))

		protected.Get("/api/privacy/export", handlers.PrivacyExport(db, lg))
		protected.Post("/api/privacy/delete", handlers.PrivacyDelete(db, lg))

		protected.Post("/api/billing/checkout", handlers.Checkout(lg))
		protected.Get("/api/billing/tier", handlers.MyTier(tiers))
	})
	return r
}
