package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/engineers4hire/jobdesk/internal/auth"
	"github.com/engineers4hire/jobdesk/internal/database"
	"github.com/engineers4hire/jobdesk/internal/handlers"
	"github.com/engineers4hire/jobdesk/internal/normalizer"
	"github.com/engineers4hire/jobdesk/internal/services"
	"github.com/engineers4hire/jobdesk/internal/store"
)

func main() {
	// 1. Environment
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	logger, err := buildLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatal("failed to build logger:", err)
	}
	defer logger.Sync()

	upstream := os.Getenv("UPSTREAM_API_URL")
	if upstream == "" {
		upstream = "https://github-utils-api.onrender.com"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// 2. Persistence: postgres when configured, in-memory otherwise
	// (notes then last only for the process lifetime).
	var sessionStore store.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := database.Connect(dsn)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		sessionStore = store.NewGormStore(db)
		logger.Info("using postgres store")
	} else {
		sessionStore = store.NewMemoryStore()
		logger.Warn("DATABASE_URL not set, notes will not survive restarts")
	}

	// 3. Core services
	client := auth.NewClient(upstream, logger.Named("auth"))
	session := auth.NewSession(client, sessionStore, logger.Named("session"), sessionConfig())
	norm := normalizer.New(logger.Named("normalizer"))
	jobService := services.NewJobService(session, sessionStore, norm, logger.Named("jobs"))
	noteService := services.NewNoteService(sessionStore, logger.Named("notes"))

	// First job load fires as soon as the session comes up.
	session.SetOnAuthenticated(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := jobService.Refresh(ctx); err != nil {
			logger.Warn("initial job load failed", zap.Error(err))
		}
	})
	session.Start(context.Background())
	defer session.Close()

	// 4. Handlers
	jobHandler := handlers.NewJobHandler(jobService, noteService)
	authHandler := handlers.NewAuthHandler(session)

	// 5. Router & CORS
	r := gin.Default()
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	// 6. Routes
	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)

		api.GET("/jobs", jobHandler.ListJobs)
		api.POST("/jobs/refresh", jobHandler.RefreshJobs)
		api.GET("/jobs/:id/notes", jobHandler.GetNote)
		api.PUT("/jobs/:id/notes", jobHandler.SaveNote)
		api.GET("/notes", jobHandler.ListNotes)

		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/status", authHandler.Status)
	}

	logger.Info("server starting", zap.String("port", port), zap.String("upstream", upstream))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}

func sessionConfig() auth.Config {
	cfg := auth.Config{}
	if raw := os.Getenv("AUTH_RETRY_BASE"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.RetryBase = d
		}
	}
	if raw := os.Getenv("AUTH_RETRY_MAX_ATTEMPTS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			cfg.MaxAttempts = n
		}
	}
	return cfg
}
