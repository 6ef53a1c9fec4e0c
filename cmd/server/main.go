package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/easygrow/plantcore/internal/api/rest"
	"github.com/easygrow/plantcore/internal/api/websocket"
	"github.com/easygrow/plantcore/internal/auth"
	"github.com/easygrow/plantcore/internal/config"
	"github.com/easygrow/plantcore/internal/devices"
	"github.com/easygrow/plantcore/internal/garden"
	"github.com/easygrow/plantcore/internal/mail"
	"github.com/easygrow/plantcore/internal/sensors"
	"github.com/easygrow/plantcore/internal/storage"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Config loaded successfully")

	db, err := storage.NewPostgresClient(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to apply database schema", zap.Error(err))
	}

	// Services
	mailer := mail.NewSMTPMailer(cfg.Email, logger)
	authService := auth.NewService(db, cfg.Auth, mailer, logger)
	deviceService := devices.NewService(db, logger)
	catalogService := garden.NewCatalogService(db, logger)
	plantService := garden.NewPlantService(db, logger)

	if err := catalogService.Seed(ctx, cfg.Catalog.SeedPath); err != nil {
		logger.Fatal("Failed to seed catalog", zap.Error(err))
	}

	// Live updates
	hub := websocket.NewHub(logger, authService.JWTHandler())
	go hub.Run()

	sensorService := sensors.NewService(db, hub, logger)

	server := rest.NewServer(cfg, rest.Services{
		Auth:    authService,
		Devices: deviceService,
		Catalog: catalogService,
		Plants:  plantService,
		Sensors: sensorService,
	}, hub, logger)

	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start REST server", zap.Error(err))
	}

	logger.Info("EasyGrow backend started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("EasyGrow backend stopped successfully")
}
