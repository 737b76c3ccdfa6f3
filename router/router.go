package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lexivo/config"
	aiHandler "lexivo/internal/ai"
	aiservice "lexivo/internal/ai/service"
	docHandler "lexivo/internal/document"
	docrepo "lexivo/internal/document/repository"
	docservice "lexivo/internal/document/service"
	exportHandler "lexivo/internal/export"
	exportservice "lexivo/internal/export/service"
	"lexivo/internal/health"
	projectHandler "lexivo/internal/project"
	projectrepo "lexivo/internal/project/repository"
	projectservice "lexivo/internal/project/service"
	settingsHandler "lexivo/internal/settings"
	settingsrepo "lexivo/internal/settings/repository"
	settingsservice "lexivo/internal/settings/service"
	templateHandler "lexivo/internal/template"
	templaterepo "lexivo/internal/template/repository"
	templateservice "lexivo/internal/template/service"
	"lexivo/middleware"
	"lexivo/pkg/cache"
	"lexivo/socket"
)

// Deps are the long-lived collaborators built in main. AI and Cache are nil
// when their environment keys are unset.
type Deps struct {
	Config *config.Config
	DB     *sql.DB
	AI     aiservice.Completer
	Cache  *cache.RedisCache
}

// Setup wires repositories, services and handlers onto one mux and returns it
// wrapped in the global middleware chain, plus the hub the caller must Run.
func Setup(deps Deps) (http.Handler, *socket.Hub, error) {
	cfg := deps.Config
	mux := http.NewServeMux()
	auth := middleware.Auth(cfg.Auth.JWTSecret)
	limit, err := middleware.UserRateLimiter(cfg.Server.AIRateLimit)
	if err != nil {
		return nil, nil, err
	}

	docRepo := docrepo.NewDocumentRepository(deps.DB)
	templateRepo := templaterepo.NewTemplateRepository(deps.DB)
	projectRepo := projectrepo.NewProjectRepository(deps.DB)

	// The hub admits clients through the project service, which in turn
	// publishes to the hub.
	projectService := projectservice.NewProjectService(projectRepo, docRepo, templateRepo, nil)
	hub := socket.NewHub(projectService)
	projectService.Hub = hub

	var aiCache aiservice.Cache
	var cachePinger health.CachePinger
	if deps.Cache != nil {
		aiCache = deps.Cache
		cachePinger = deps.Cache
	}
	aiService := aiservice.NewAIService(deps.AI, aiCache, cfg.Cache.TTL, projectService, docRepo, templateRepo)

	renderer, err := exportservice.NewSlideRenderer()
	if err != nil {
		return nil, nil, err
	}

	health.NewHealthHandler(deps.DB, cachePinger, deps.AI != nil, cfg.App.Version).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}
		socket.ServeWs(hub, w, r, userID)
	})
	mux.Handle("GET /ws", middleware.AuthWS(cfg.Auth.JWTSecret)(wsHandler))

	docHandler.NewDocumentHandler(docservice.NewDocumentService(docRepo)).Register(mux, auth)
	projectHandler.NewProjectHandler(projectService).Register(mux, auth)
	templateHandler.NewTemplateHandler(templateservice.NewTemplateService(templateRepo)).Register(mux, auth)
	settingsHandler.NewSettingsHandler(settingsservice.NewSettingsService(settingsrepo.NewSettingsRepository(deps.DB))).Register(mux, auth)
	aiHandler.NewAIHandler(aiService).Register(mux, auth, limit)
	exportHandler.NewExportHandler(exportservice.NewExportService(projectService, renderer)).Register(mux, auth)

	handler := middleware.CORSMiddleware(cfg.Server.AllowedOrigins)(mux)
	handler = middleware.Metrics(handler)
	handler = middleware.RequestLogger(handler)
	return handler, hub, nil
}
