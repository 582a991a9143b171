// @title Learn Persona API
// @version 1.0
// @description Persona quiz, course recommendations and L&D analytics.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "learn-persona/cmd/api/docs"
	"learn-persona/internal/config"
	"learn-persona/internal/database"
	"learn-persona/internal/domain"
	"learn-persona/internal/logger"
	"learn-persona/internal/questionbank"
	"learn-persona/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := database.RunMigrations(db, cfg.DB.Driver); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	cacheAdapter, closeCache, err := server.NewCache(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer closeCache()

	bank, err := loadQuestionBank(cfg.Quiz)
	if err != nil {
		appLogger.Fatal("Failed to load question bank", zap.Error(err))
	}
	appLogger.Info("Question bank loaded", zap.Int("questions", len(bank.Questions)))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := server.New(server.Options{
		Config:   cfg,
		DB:       db,
		Cache:    cacheAdapter,
		Bank:     bank,
		Registry: registry,
	})
	if err != nil {
		appLogger.Fatal("Failed to build server", zap.Error(err))
	}

	if srv.Scheduler != nil {
		if err := srv.Scheduler.Start(); err != nil {
			appLogger.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer srv.Scheduler.Stop()
	}

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := srv.App.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.App.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	appLogger.Info("Server exited gracefully")
}

func loadQuestionBank(cfg config.QuizConfig) (*domain.QuestionBank, error) {
	if cfg.BankPath != "" {
		return questionbank.Load(cfg.BankPath)
	}
	return questionbank.Default()
}
