package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/craftfolio/backend/internal/activity"
	"github.com/craftfolio/backend/internal/analytics"
	"github.com/craftfolio/backend/internal/auth"
	"github.com/craftfolio/backend/internal/cache"
	"github.com/craftfolio/backend/internal/database"
	"github.com/craftfolio/backend/internal/handlers"
	"github.com/craftfolio/backend/internal/logger"
	"github.com/craftfolio/backend/internal/metrics"
	"github.com/craftfolio/backend/internal/middleware"
	"github.com/craftfolio/backend/internal/telemetry"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Structured logging
	if err := logger.Initialize("", ""); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Craftfolio server starting ===")

	// Initialize database
	if err := database.Initialize(); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis cache (rankings cache + rate limiting); optional
	redisClient, err := cache.NewRedisClient(
		os.Getenv("REDIS_HOST"),
		os.Getenv("REDIS_PORT"),
		os.Getenv("REDIS_PASSWORD"),
	)
	if err != nil {
		logger.Log.Warn("Redis unavailable, continuing without cache", zap.Error(err))
	} else {
		defer redisClient.Close()
	}

	// Prometheus metrics
	metrics.Initialize()

	// Tracing, enabled when an OTLP endpoint is configured
	tracerProvider, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "craftfolio-backend",
		Environment:  os.Getenv("ENVIRONMENT"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Enabled:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "",
		SamplingRate: 1.0,
	})
	if err != nil {
		logger.Log.Warn("Failed to initialize tracing", zap.Error(err))
	}
	if tracerProvider != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tracerProvider.Shutdown(ctx)
		}()
	}

	// Auth service
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}
	authService := auth.NewService(
		jwtSecret,
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
	)

	// Analytics pipeline: recorder + background event queue
	recorder := analytics.NewRecorder(database.DB)
	queue := analytics.NewQueue(recorder, runtime.NumCPU(), 1024)
	queue.Start()
	defer queue.Stop()

	scanner := analytics.NewScanner(database.DB)
	aggregator := analytics.NewAggregator(database.DB)

	// Activity log retention sweep (runs every hour)
	sweeper := activity.NewRetentionSweeper(1 * time.Hour)
	sweeper.Start()
	defer sweeper.Stop()

	// Handlers
	h := handlers.NewHandlers(authService, recorder, queue, scanner, aggregator)

	// Setup Gin router
	gin.SetMode(os.Getenv("GIN_MODE"))
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if tracerProvider != nil {
		r.Use(otelgin.Middleware("craftfolio-backend"))
	}

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := database.Health(); err != nil {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "craftfolio-backend",
		})
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api/v1")
	{
		// Authentication routes (public)
		authGroup := api.Group("/auth")
		authGroup.Use(middleware.RateLimitSmartAuth())
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/google", h.GoogleLogin)
			authGroup.GET("/google/callback", h.GoogleCallback)
			authGroup.GET("/me", h.AuthMiddleware(), h.Me)
		}

		// User routes
		users := api.Group("/users")
		{
			users.PUT("/me", h.AuthMiddleware(), h.UpdateMe)
			users.GET("/me/activity", h.AuthMiddleware(), h.GetMyActivity)
			users.GET("/:id", h.OptionalAuthMiddleware(), h.GetProfile)
			users.GET("/:id/projects", h.OptionalAuthMiddleware(), h.GetUserProjects)
			users.POST("/:id/follow", h.AuthMiddleware(), h.FollowUser)
			users.DELETE("/:id/follow", h.AuthMiddleware(), h.UnfollowUser)
			users.GET("/:id/followers", h.ListFollowers)
			users.GET("/:id/following", h.ListFollowing)
		}

		// Project routes
		projects := api.Group("/projects")
		{
			projects.GET("", h.ListProjects)
			projects.POST("", h.AuthMiddleware(), h.CreateProject)
			projects.GET("/:id", h.OptionalAuthMiddleware(), h.GetProject)
			projects.PUT("/:id", h.AuthMiddleware(), h.UpdateProject)
			projects.DELETE("/:id", h.AuthMiddleware(), h.DeleteProject)
			projects.GET("/:id/stats", h.OptionalAuthMiddleware(), h.GetProjectStats)
			projects.POST("/:id/like", h.AuthMiddleware(), h.LikeProject)
			projects.DELETE("/:id/like", h.AuthMiddleware(), h.UnlikeProject)
			projects.GET("/:id/comments", h.OptionalAuthMiddleware(), h.ListComments)
			projects.POST("/:id/comments", h.AuthMiddleware(), h.CreateComment)
			projects.DELETE("/:id/comments/:commentId", h.AuthMiddleware(), h.DeleteComment)
		}

		// Analytics routes (owner dashboard)
		analyticsGroup := api.Group("/analytics")
		analyticsGroup.Use(h.AuthMiddleware())
		{
			analyticsGroup.GET("/dashboard", h.GetDashboard)
			analyticsGroup.GET("/audience", h.GetAudience)
			analyticsGroup.GET("/export", h.ExportStats)
		}

		// Ranking routes (public, cached, rate limited)
		rankings := api.Group("/rankings")
		rankings.Use(middleware.RateLimitSmartRanking())
		{
			rankings.GET("/users", h.RankUsers)
			rankings.GET("/projects", h.RankProjects)
			rankings.GET("/tags", h.RankTags)
		}

		// Notification routes
		notifications := api.Group("/notifications")
		notifications.Use(h.AuthMiddleware())
		{
			notifications.GET("", h.ListNotifications)
			notifications.GET("/unread", h.UnreadCount)
			notifications.POST("/read", h.MarkNotificationsRead)
		}

		// Moderation
		api.POST("/reports", h.AuthMiddleware(), h.CreateReport)

		admin := api.Group("/admin")
		admin.Use(h.AuthMiddleware(), middleware.RequireAdmin())
		{
			admin.GET("/reports", h.ListReports)
			admin.POST("/reports/:id/resolve", h.ResolveReport)
			admin.POST("/users/:id/ban", h.BanUser)
			admin.POST("/users/:id/unban", h.UnbanUser)
		}
	}

	// HTTP server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("Server listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Forced shutdown", zap.Error(err))
	}

	logger.Log.Info("Server stopped")
}
