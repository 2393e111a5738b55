package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"linkdir/internal/auth"
	"linkdir/internal/database"
	"linkdir/internal/handlers"
	"linkdir/internal/listings"
	"linkdir/internal/metadata"
	"linkdir/internal/ratelimit"
	"linkdir/internal/realtime"
	"linkdir/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load database configuration
	dbConfig := database.LoadConfig()

	// Connect to database
	if err := database.Connect(dbConfig); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	setupGracefulShutdown()
	setupServer()
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")
		database.Close()
		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}

// redisClient returns a client for the listings cache, or nil when REDIS_ADDR
// is unset. The cache is optional; everything degrades to direct DB reads.
func redisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, listings cache disabled")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
}

func setupServer() {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	db := database.DB

	// Shared infrastructure
	verifier := auth.NewSessionVerifierFromEnv()
	authorizer := auth.NewAllowListAuthorizer(db)
	hub := realtime.NewHub()
	listingsService := listings.NewService(db, redisClient())

	// Services
	submissionsService := services.NewSubmissionsService(db, ratelimit.NewSubmitLimiter())
	dedupeService := services.NewDedupeService(db)
	moderationService := services.NewModerationService(db, authorizer, listingsService)
	interactionsService := services.NewInteractionsService(db, ratelimit.NewToggleLimiter())

	// Handlers
	submissionsHandler := handlers.NewSubmissionsHandler(submissionsService, dedupeService, metadata.NewExtractor(), hub)
	moderationHandler := handlers.NewModerationHandler(moderationService, submissionsService, authorizer, hub)
	resourcesHandler := handlers.NewResourcesHandler(listingsService)
	interactionsHandler := handlers.NewInteractionsHandler(interactionsService)

	r.Use(handlers.ActorMiddleware(verifier))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "linkdir"})
	})

	// Public catalog
	r.GET("/api/resources", resourcesHandler.List)
	r.GET("/api/resources/:slug", resourcesHandler.Detail)
	r.GET("/go/:slug", resourcesHandler.Redirect)

	// Intake
	r.POST("/api/submissions", submissionsHandler.Submit)
	r.GET("/api/submissions/check", submissionsHandler.CheckDuplicate)
	r.GET("/api/submissions/prefill", submissionsHandler.Prefill)

	// Interaction toggles
	r.POST("/api/interactions/resources/:id/vote", interactionsHandler.ToggleVote)
	r.POST("/api/interactions/resources/:id/favorite", interactionsHandler.ToggleFavorite)
	r.POST("/api/interactions/comments/:id/flag", interactionsHandler.ToggleFlag)

	// Moderation (gate-protected)
	admin := r.Group("/admin", moderationHandler.RequireAdmin())
	{
		admin.GET("/queue", moderationHandler.Queue)
		admin.GET("/queue/live", moderationHandler.QueueLive)
		admin.POST("/submissions/:id/approve", moderationHandler.Approve)
		admin.POST("/submissions/:id/reject", moderationHandler.Reject)
	}

	// Get port from environment or default to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
