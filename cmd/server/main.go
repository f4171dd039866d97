// Package main initializes and starts the Altheia backend server,
// setting up configuration, logging, database connections, repositories,
// services, and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/altheia/backend/internal/chat"
	"github.com/altheia/backend/internal/config"
	"github.com/altheia/backend/internal/db"
	"github.com/altheia/backend/internal/feed"
	"github.com/altheia/backend/internal/gcal"
	"github.com/altheia/backend/internal/logger"
	"github.com/altheia/backend/internal/repository"
	"github.com/altheia/backend/internal/server/handler/http"
	"github.com/altheia/backend/internal/service"
	"github.com/altheia/backend/internal/token"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Load .env before flags and environment are read.
	_ = godotenv.Load()

	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Prune aggregated articles that fell out of the feed long ago.
	db.StartArticleCleaner(context.Background(), postgresDB,
		24*time.Hour,    // interval
		90*24*time.Hour, // retention: 90 days
		zapLogger,
	)

	// Refresh-token cipher; the key must be stable across restarts.
	cipher, err := token.NewCipher(options.EncryptionKey)
	if err != nil {
		zapLogger.Fatal("cannot init token cipher", zap.Error(err))
	}

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	logRepo := repository.NewPostgresLogRepository(postgresDB)
	articleRepo := repository.NewPostgresArticleRepository(postgresDB)

	// External collaborators.
	resolver := gcal.NewResolver(options.GoogleClientID, options.GoogleClientSecret,
		options.GoogleRedirectURI, cipher, zapLogger)
	fetcher := feed.NewFetcher(options.FeedURL, 2, zapLogger)
	defer func() { _ = fetcher.Close() }()
	chatClient := chat.NewClient(options.GeminiAPIKey, "gemini-2.5-flash", 2)
	defer func() { _ = chatClient.Close() }()

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, options.JWTSecret,
		time.Duration(options.JWTExpireMinutes)*time.Minute)
	logService := service.NewLogService(logRepo)
	articleService := service.NewArticleService(articleRepo, fetcher, zapLogger)
	calendarService := service.NewCalendarService(userRepo, logRepo, resolver, zapLogger)

	// Periodic article ingestion.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 6h", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := articleService.Refresh(ctx); err != nil {
			zapLogger.Error("scheduled article refresh failed", zap.Error(err))
		}
	}); err != nil {
		zapLogger.Fatal("cannot schedule article refresh", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Build the router with middleware and routes.
	router := http.NewRouter(http.RouterConfig{
		Auth: &http.AuthHandler{
			AuthService:    authService,
			CalendarStatus: calendarService,
		},
		Logs:     &http.LogHandler{LogService: logService},
		Articles: &http.ArticleHandler{ArticleService: articleService},
		Chat:     &http.ChatHandler{ChatClient: chatClient, Logger: zapLogger},
		Calendar: &http.CalendarHandler{
			CalendarService: calendarService,
			FrontendURL:     options.FrontendURL,
		},
		Logger:      zapLogger,
		JWTSecret:   options.JWTSecret,
		CORSOrigins: options.CORSOriginsList(),
	})

	server := &nethttp.Server{
		Addr:         options.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
