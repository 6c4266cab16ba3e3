package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/broffee-bot/internal/config"
	"github.com/Lixing-Zhang/broffee-bot/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps holds what the HTTP API needs
type RouterDeps struct {
	Auth     config.AuthConfig
	Health   *HealthHandler
	Menu     *MenuHandler
	Sessions *SessionHandler
	Logger   *slog.Logger
}

// NewRouter builds the chi router for the bot's HTTP API
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.APIKeyHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", deps.Health.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", deps.Menu.ListItems)
		r.Get("/menu/{item}", deps.Menu.GetItem)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(deps.Auth))

			r.Post("/sessions", deps.Sessions.CreateSession)
			r.Post("/sessions/{sessionId}/commands", deps.Sessions.PostCommand)
			r.Get("/sessions/{sessionId}/cart", deps.Sessions.GetCart)
			r.Delete("/sessions/{sessionId}/cart", deps.Sessions.ClearCart)
		})
	})

	return r
}
