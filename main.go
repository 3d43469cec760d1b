package main

import (
	"log"
	"time"

	"gin-shop/internals/config"
	"gin-shop/internals/initializers"
	"gin-shop/internals/routes"

	"go.uber.org/zap"
)

func main() {
	envErr := initializers.LoadEnvVariables()

	logger, err := initializers.NewLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Fatal("failed to load .env file", zap.Error(envErr))
	}

	db, err := initializers.ConnectToDB(config.GetEnv("DB_URL"))
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := initializers.SyncDatabase(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	cleanupInterval := config.GetEnvAsInt("CLEANUP_INTERVAL_MINUTES", 30, true)
	initializers.StartJanitor(db, logger, time.Duration(cleanupInterval)*time.Minute)

	r := routes.SetupRouter(db, logger)
	if err := r.Run(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
