package api

import (
	"fmt"
	"net/http"

	"planetarium/internal/cache"
	"planetarium/internal/config"
	"planetarium/internal/database"
	"planetarium/internal/handlers"
	"planetarium/internal/logger"
	"planetarium/internal/messaging"
	"planetarium/internal/middleware"
	"planetarium/internal/repository"
	"planetarium/internal/search"
	"planetarium/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires configuration, storage, optional infrastructure and the
// HTTP surface together.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	// Credential cache is optional; without it BasicAuth hits the
	// database on every request.
	var valkeyClient *cache.ValkeyClient
	if cfg.Cache.Addr != "" {
		valkeyClient, err = cache.NewValkeyClient(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to cache: %w", err)
		}
	}

	// Search is optional too. The assignment stays behind the URL check
	// so a disabled client never ends up as a typed nil in the interface.
	var showSearch service.ShowSearch
	if cfg.Elasticsearch.URL != "" {
		esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
		}
		showSearch = esClient
	}

	repos := repository.NewRepositories(db)

	stores := service.Stores{
		Themes:       repos.Themes,
		Shows:        repos.Shows,
		Domes:        repos.Domes,
		Sessions:     repos.Sessions,
		Reservations: repos.Reservations,
	}
	services := service.NewServices(stores, showSearch, natsClient)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.repos.Users)

	api := s.router.Group("/api")
	api.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	{
		staff := middleware.RequireStaff(s.repos.Users)

		themes := api.Group("/themes")
		{
			themes.GET("", h.ListThemes)
			themes.GET("/:id", h.GetTheme)
			themes.POST("", staff, h.CreateTheme)
			themes.PUT("/:id", staff, h.UpdateTheme)
			themes.DELETE("/:id", staff, h.DeleteTheme)
		}

		domes := api.Group("/domes")
		{
			domes.GET("", h.ListDomes)
			domes.GET("/:id", h.GetDome)
			domes.POST("", staff, h.CreateDome)
			domes.PUT("/:id", staff, h.UpdateDome)
			domes.DELETE("/:id", staff, h.DeleteDome)
		}

		shows := api.Group("/shows")
		{
			shows.GET("", h.ListShows)
			shows.GET("/:id", h.GetShow)
			shows.POST("", staff, h.CreateShow)
			shows.PUT("/:id", staff, h.UpdateShow)
			shows.DELETE("/:id", staff, h.DeleteShow)
		}

		sessions := api.Group("/sessions")
		{
			sessions.GET("", h.ListSessions)
			sessions.GET("/:id", h.GetSession)
			sessions.POST("", staff, h.CreateSession)
			sessions.PUT("/:id", staff, h.UpdateSession)
			sessions.DELETE("/:id", staff, h.DeleteSession)
		}

		reservations := api.Group("/reservations")
		{
			reservations.POST("", h.CreateReservation)
			reservations.GET("", h.ListReservations)
			reservations.GET("/:id", h.GetReservation)
			reservations.DELETE("/:id", h.CancelReservation)
		}
	}

	s.router.GET("/health", h.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.RequestTimeout,
		WriteTimeout: s.config.RequestTimeout,
	}
}

// Cleanup closes external connections.
func (s *Server) Cleanup() error {
	log := logger.Get()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Error("Error closing cache connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
