package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/kitchenbook/backend/config"
	"github.com/kitchenbook/backend/internal/database"
	"github.com/kitchenbook/backend/internal/router"
	"github.com/kitchenbook/backend/internal/service"
)

// Server wires the database, services and HTTP stack together.
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

// New assembles a server from configuration.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	redisClient, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		// The API works without Redis; only rate limiting is lost.
		logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		redisClient = nil
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	auth := service.NewAuthService(db, cfg.JWTSecret)
	recipes := service.NewRecipeService(db)
	relations := service.NewRelationService(db)
	shopping := service.NewShoppingListService(db)
	images := service.NewImageService(cfg, s3Config, logger)

	engine := router.SetupRouter(router.Deps{
		DB:        db,
		Auth:      auth,
		Recipes:   recipes,
		Relations: relations,
		Shopping:  shopping,
		Images:    images,
		Redis:     redisClient,
		Logger:    logger,
	})

	return &Server{
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: engine,
		},
		logger: logger,
	}, nil
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
