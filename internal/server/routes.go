package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mdemena/lists-sharing-sub000/internal/handlers/api"
	"github.com/mdemena/lists-sharing-sub000/internal/middleware"
	"github.com/mdemena/lists-sharing-sub000/internal/service"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Services *service.Services
	Health   api.Pinger
	Gatherer prometheus.Gatherer
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	authMiddleware := middleware.NewAuthMiddleware(deps.Services.Auth)

	authHandler := api.NewAuthHandler(deps.Services.Auth, s.Cfg)
	listHandler := api.NewListHandler(deps.Services.Lists, deps.Services.Shares)
	itemHandler := api.NewItemHandler(deps.Services.Items)
	profileHandler := api.NewProfileHandler(deps.Services.Profiles)
	storageHandler := api.NewStorageHandler(deps.Services.Storage)
	shareHandler := api.NewShareHandler(deps.Services.Shares)
	healthHandler := api.NewHealthHandler(deps.Health)

	// Operational endpoints
	s.App.Get("/healthz", healthHandler.Healthz)
	if deps.Gatherer != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Uploaded images
	s.App.Get("/uploads/*", static.New(s.Cfg.StorageDir))

	// Auth: signup/signin/oauth are anonymous, the rest read the bearer token
	s.App.Get("/auth/callback", authHandler.Callback)
	s.App.Get("/auth", authMiddleware.OptionalAuth, authHandler.Get)
	s.App.Post("/auth", authMiddleware.OptionalAuth, authHandler.Post)

	// Lists
	s.App.Get("/lists", authMiddleware.RequireAuth, listHandler.Get)
	s.App.Post("/lists", authMiddleware.RequireAuth, listHandler.Create)
	s.App.Put("/lists", authMiddleware.RequireAuth, listHandler.Update)
	s.App.Delete("/lists", authMiddleware.RequireAuth, listHandler.Delete)

	// Items
	s.App.Get("/items", authMiddleware.RequireAuth, itemHandler.Get)
	s.App.Post("/items", authMiddleware.RequireAuth, itemHandler.Create)
	s.App.Put("/items", authMiddleware.RequireAuth, itemHandler.Update)
	s.App.Delete("/items", authMiddleware.RequireAuth, itemHandler.Delete)

	// Profiles
	s.App.Get("/profiles", authMiddleware.RequireAuth, profileHandler.Get)
	s.App.Post("/profiles", authMiddleware.RequireAuth, profileHandler.Create)
	s.App.Put("/profiles", authMiddleware.RequireAuth, profileHandler.Update)

	// Object storage
	s.App.Post("/storage", authMiddleware.RequireAuth, storageHandler.Post)

	// Email actions; sharing may be anonymous when enabled
	s.App.Post("/share-list", authMiddleware.OptionalAuth, shareHandler.ShareList)
	s.App.Post("/send-list-file", authMiddleware.RequireAuth, shareHandler.SendListFile)
}
