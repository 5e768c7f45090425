package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"purchase-tracking/internal/database"
	"purchase-tracking/internal/handlers"
	"purchase-tracking/internal/parser"
)

// NewRouter builds the API router with all handlers mounted
func NewRouter(db *database.DB, emailParser *parser.EmailParser, logger *slog.Logger) http.Handler {
	parseHandler := handlers.NewParseHandler(emailParser)
	emailHandler := handlers.NewEmailHandler(db)
	healthHandler := handlers.NewHealthHandler(db)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Post("/parse", parseHandler.Parse)
		r.Get("/emails", emailHandler.ListEmails)
		r.Get("/emails/{id}", emailHandler.GetEmail)
	})

	return r
}
