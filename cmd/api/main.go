package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/nourishlabs/consistency-engine/internal/adapters/cache"
	adapterHTTP "github.com/nourishlabs/consistency-engine/internal/adapters/handler/http"
	"github.com/nourishlabs/consistency-engine/internal/adapters/repository"
	"github.com/nourishlabs/consistency-engine/internal/core/domain"
	"github.com/nourishlabs/consistency-engine/internal/core/services"
	"github.com/nourishlabs/consistency-engine/internal/core/workers"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	serverPort := envOr("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is not set")
	}
	jwtIssuer := envOr("JWT_ISSUER", "nourish-app")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	redisClient, err := cache.NewRedisClient(
		envOr("REDIS_HOST", "localhost"),
		envOr("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)
	if err != nil {
		log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
		redisClient = nil
	}

	activityRepo := repository.NewPostgresActivityRepository(db)
	freezeRepo := repository.NewPostgresFreezeRepository(db)

	var squadRepo domain.SquadRepository = repository.NewPostgresSquadRepository(db)
	if redisClient != nil {
		squadRepo = repository.NewCachedSquadRepository(squadRepo, redisClient)
	}

	reactionRepo := repository.NewPostgresReactionRepository(db)

	metricsService := services.NewMetricsService(activityRepo, freezeRepo)
	freezeService := services.NewFreezeService(freezeRepo)
	squadService := services.NewSquadService(squadRepo, metricsService)
	reactionService := services.NewReactionService(reactionRepo, squadRepo)
	tokenService := services.NewTokenService(jwtSecret, jwtIssuer, 24*time.Hour)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	recomputeWorker := workers.NewRecomputeWorker(squadService)
	recomputeWorker.Start(workerCtx)

	scheduler, err := workers.StartDailyRecompute(workerCtx, squadRepo, recomputeWorker)
	if err != nil {
		log.Fatalf("Critical: Failed to start recompute scheduler: %v", err)
	}

	activityService := services.NewActivityService(activityRepo, squadRepo, recomputeWorker)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		ActivityHandler: adapterHTTP.NewActivityHandler(activityService),
		MetricsHandler:  adapterHTTP.NewMetricsHandler(metricsService),
		FreezeHandler:   adapterHTTP.NewFreezeHandler(freezeService),
		SquadHandler:    adapterHTTP.NewSquadHandler(squadService),
		ReactionHandler: adapterHTTP.NewReactionHandler(reactionService),
		TokenValidator:  tokenService,
		DB:              db,
		Redis:           redisClient,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Consistency Engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	stopWorkers()
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
