package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/appforge-dev/chirper/backend/internal/router"
	"github.com/appforge-dev/chirper/backend/pkg/config"
	"github.com/appforge-dev/chirper/backend/pkg/firebase"
	"github.com/appforge-dev/chirper/backend/pkg/logger"
	"github.com/appforge-dev/chirper/backend/validators"
)

func main() {
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := config.InitDB(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.StorageBucket)
	if err != nil {
		zapLogger.Fatal("failed to initialize Firebase", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, zapLogger)

	stopFanout, err := router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, db.Redis,
		firebaseApp.AuthClient, firebaseApp.StorageClient, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to set up routes", zap.Error(err))
	}
	defer stopFanout()

	if err := e.Start(":" + cfg.Port); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}
