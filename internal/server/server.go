// Package server assembles the HTTP surface: stores, middleware, route
// registration and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gurilao-dev/loja/auth"
	"github.com/Gurilao-dev/loja/config"
	"github.com/Gurilao-dev/loja/handlers"
	"github.com/Gurilao-dev/loja/internal/checkout"
	"github.com/Gurilao-dev/loja/internal/realtime"
	"github.com/Gurilao-dev/loja/middleware"
	"github.com/Gurilao-dev/loja/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg    config.Config
	engine *gin.Engine
}

// New wires every store and handler onto a gin engine.
func New(cfg config.Config, db *mongo.Database) (*Server, error) {
	users := store.NewMongoUserStore(db)
	products := store.NewMongoProductStore(db)
	reviews := store.NewMongoReviewStore(db)
	carts := store.NewMongoCartStore(db)
	orders := store.NewMongoOrderStore(db)
	messages := store.NewMongoMessageStore(db)
	counters := store.NewMongoCounterStore(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	mw := middleware.New(tokens, users)

	uploader, err := handlers.NewImageUploader(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	workflow := checkout.NewWorkflow(products, orders, carts, counters)
	hub := realtime.NewHub()

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.MaxMultipartMemory = 8 << 20

	engine.Static("/uploads/products", cfg.UploadDir)
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "app": cfg.AppName})
	})

	api := engine.Group("/api")

	authHandler := handlers.NewAuthHandler(users, tokens)
	authHandler.RegisterRoutes(api, mw)

	productHandler := handlers.NewProductHandler(products, reviews, uploader)
	productHandler.RegisterRoutes(api, mw)

	cartHandler := handlers.NewCartHandler(carts, products)
	cartHandler.RegisterRoutes(api, mw)

	orderHandler := handlers.NewOrderHandler(orders, workflow)
	orderHandler.RegisterRoutes(api, mw)

	chatHandler := handlers.NewChatHandler(messages, users, hub)
	chatHandler.RegisterRoutes(api, mw)
	chatHandler.RegisterWebsocket(engine, mw)

	adminHandler := handlers.NewAdminHandler(users, products, orders, messages)
	adminHandler.RegisterRoutes(api, mw)

	setupHandler := handlers.NewSetupHandler(users, products)
	setupHandler.RegisterRoutes(api)

	return &Server{cfg: cfg, engine: engine}, nil
}

// Run serves until the context is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.engine,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
