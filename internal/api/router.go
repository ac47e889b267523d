package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/walnut-media/backend/internal/api/handlers"
	"github.com/walnut-media/backend/internal/api/middleware"
	"github.com/walnut-media/backend/internal/config"
	"github.com/walnut-media/backend/internal/db"
	"github.com/walnut-media/backend/internal/session"
	"github.com/walnut-media/backend/internal/token"
)

func NewRouter(cfg *config.Config, sess *session.Session, ledger *token.Ledger, database *db.Database, events *session.EventBus) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))

	// Handlers
	mediaHandler := handlers.NewMediaHandler(sess, cfg.MaxUploadMB<<20)
	processHandler := handlers.NewProcessHandler(sess, database)
	resultHandler := handlers.NewResultHandler(sess)
	tokensHandler := handlers.NewTokensHandler(ledger)
	operationsHandler := handlers.NewOperationsHandler(database)
	eventsHandler := handlers.NewEventsHandler(events)

	// Uploads and triggers are the expensive operations
	uploadLimiter := middleware.NewRateLimiter(30, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Session and intake
		r.Get("/session", mediaHandler.GetSession)
		r.With(uploadLimiter.Handler).Post("/media", mediaHandler.Upload)
		r.Delete("/media", mediaHandler.Clear)

		// Processing and results
		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(1 << 20))
			r.With(uploadLimiter.Handler).Post("/process", processHandler.Trigger)
		})
		r.Get("/result", resultHandler.Get)
		r.Get("/result/video", resultHandler.Video)

		// Tokens
		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(1 << 20))
			r.Get("/tokens", tokensHandler.Balance)
			r.Post("/tokens/credit", tokensHandler.Credit)
			r.Get("/tokens/history", tokensHandler.History)
		})

		// History and events
		r.Get("/operations", operationsHandler.List)
		r.Get("/events", eventsHandler.Feed)
	})

	return r
}
