// Package server assembles the HTTP server from its parts.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/api"
	"github.com/foodgram-app/backend/internal/database"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
}

// New creates a server with its database, Redis client and routes wired up.
// A Redis connection failure is logged and tolerated; a database failure is not.
func New(cfg *config.Config) (*Server, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		redisClient = nil
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if err := api.SetupAPI(router, db, redisClient, cfg); err != nil {
		return nil, fmt.Errorf("failed to set up API: %w", err)
	}

	return &Server{
		cfg:    cfg,
		router: router,
		db:     db,
		redis:  redisClient,
	}, nil
}

// Router exposes the gin engine, used by tests to drive requests directly.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the server and blocks until it exits.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.router,
	}

	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and closes the connections.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			return err
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("Failed to close Redis client: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		return sqlDB.Close()
	}
	return nil
}
