package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"seqcode/app"
	"seqcode/domain/schema"
)

// App represents the admin/API application
type App struct {
	router     *chi.Mux
	generation *app.GenerationService
	admin      *app.AdminService
	oracle     schema.Oracle
	server     *http.Server
}

// Config holds API application configuration
type Config struct {
	Port string
}

// NewApp creates the HTTP application over the engine services
func NewApp(config Config, generation *app.GenerationService, admin *app.AdminService, oracle schema.Oracle) *App {
	a := &App{
		router:     chi.NewRouter(),
		generation: generation,
		admin:      admin,
		oracle:     oracle,
	}

	a.setupMiddleware()
	a.setupRoutes()

	a.server = &http.Server{
		Addr:         ":" + config.Port,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)

	// Definition administration
	a.router.Post("/api/definitions", a.handleCreateDefinition)
	a.router.Get("/api/definitions", a.handleListDefinitions)
	a.router.Get("/api/definitions/export", a.handleExportDefinitions)
	a.router.Get("/api/definitions/{id}", a.handleGetDefinition)
	a.router.Delete("/api/definitions/{id}", a.handleDeleteDefinition)
	a.router.Post("/api/definitions/{id}/preview", a.handlePreviewDefinition)

	// Host write hook
	a.router.Post("/api/records/{entity}/write", a.handleRecordWrite)

	// Schema catalog introspection
	a.router.Get("/api/schema/{entity}", a.handleGetEntitySchema)
}

// Router exposes the mux, mainly for tests
func (a *App) Router() http.Handler {
	return a.router
}

// Start runs the HTTP server until it fails or is shut down
func (a *App) Start() error {
	return a.server.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully
func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
