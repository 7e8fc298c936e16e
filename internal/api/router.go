package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/api/handlers"
	custommiddleware "github.com/rabbit-invest/rabbit-invest-backend/internal/api/middleware"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/config"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/service"
)

// Services holds the services the router dispatches to.
type Services struct {
	System    *service.SystemService
	Auth      *service.AuthService
	Funds     *service.FundService
	Sessions  *service.SessionManager
	Scheduler *service.RefreshScheduler
}

// NewRouter creates and configures the HTTP router
func NewRouter(svcs Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(svcs.System)
	authHandler := handlers.NewAuthHandler(svcs.Auth)
	fundHandler := handlers.NewFundHandler(svcs.Funds)
	selectionHandler := handlers.NewSelectionHandler(svcs.Funds)
	favoritesHandler := handlers.NewFavoritesHandler(svcs.Funds)
	compareHandler := handlers.NewCompareHandler(svcs.Funds, svcs.Scheduler, cfg.Refresh.Interval.String())
	preferencesHandler := handlers.NewPreferencesHandler()

	requireSession := custommiddleware.RequireSession(svcs.Sessions)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Get("/last-email", authHandler.LastEmail)
			r.With(requireSession).Post("/logout", authHandler.Logout)
		})

		r.Route("/funds", func(r chi.Router) {
			r.Get("/options", fundHandler.Options)
			r.Get("/{schemeCode}/nav", fundHandler.FundNAV)
			r.With(requireSession).Get("/", fundHandler.Funds)
			r.With(requireSession).Post("/search", fundHandler.Search)
			r.With(requireSession).Post("/reload", fundHandler.Reload)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Route("/selection", func(r chi.Router) {
				r.Get("/", selectionHandler.Selection)
				r.Post("/{schemeCode}", selectionHandler.Add)
				r.Delete("/{schemeCode}", selectionHandler.Remove)
				r.Post("/{schemeCode}/toggle", selectionHandler.Toggle)
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", favoritesHandler.Favorites)
				r.Post("/{schemeCode}", favoritesHandler.Add)
				r.Delete("/{schemeCode}", favoritesHandler.Remove)
				r.Post("/{schemeCode}/toggle", favoritesHandler.Toggle)
			})

			r.Route("/compare", func(r chi.Router) {
				r.Get("/", compareHandler.Compare)
				r.Post("/watch", compareHandler.Watch)
				r.Delete("/watch", compareHandler.Unwatch)
			})

			r.Route("/preferences", func(r chi.Router) {
				r.Delete("/", preferencesHandler.ClearAll)
				r.Get("/search-history", preferencesHandler.SearchHistory)
				r.Delete("/search-history", preferencesHandler.ClearSearchHistory)
				r.Get("/filters", preferencesHandler.Filters)
			})
		})
	})

	return r
}
