package main

import (
	"net/http"
	"os"
	"time"

	"campus-popcorn-api/blob"
	"campus-popcorn-api/config"
	"campus-popcorn-api/handlers"
	"campus-popcorn-api/ingest"
	"campus-popcorn-api/notify"
	"campus-popcorn-api/roles"
	"campus-popcorn-api/routes"
	"campus-popcorn-api/settlement"
	"campus-popcorn-api/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	// Configuration and database
	config.Load()
	config.InitDB()

	// Wiring: store, blob store, notifier, services
	st := store.New(config.DB, log.Logger)
	blobs := blob.NewLocal(config.BlobDir, config.BlobBaseURL, []byte(config.BlobSecret))
	notifier := notify.NewPush(st.Users, log.Logger)
	svc := settlement.New(st, blobs, notifier, log.Logger, config.UnitPrice)
	ing := ingest.NewService(st.Messages, log.Logger)
	resolver := roles.NewResolver(config.AdminEmails, st.Users)
	h := handlers.New(svc, ing, st, blobs, log.Logger)

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	// CORS middleware for the PWA frontend
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-SMS-Secret")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Campus Popcorn Ordering API",
			"version": "1.0.0",
		})
	})

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "🍿 Welcome to the Campus Popcorn Ordering API",
			"docs":    "/api/state-machine",
			"health":  "/health",
		})
	})

	// Register all routes
	routes.SetupRoutes(r, h, resolver, st.Users)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info().Str("port", port).Msg("server starting")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
