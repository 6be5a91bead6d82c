package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nuramustaphaali/nurastore/internal/logger"
	"github.com/nuramustaphaali/nurastore/internal/mockapi"
)

func main() {
	_ = godotenv.Load()
	logger.Initialize(getEnv("APP_ENV", "development"))
	defer logger.Log.Sync()

	var carts mockapi.CartStore
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		store, err := mockapi.NewRedisCartStore(redisURL, 7*24*time.Hour)
		if err != nil {
			logger.Log.Fatal("redis connection failed", zap.Error(err))
		}
		carts = store
		logger.Info("using redis cart store")
	}

	server := mockapi.New(getEnv("JWT_SECRET", "dev-secret-change-me"), carts)

	// A ready-made account so the storefront works out of the box.
	if err := server.SeedUser("demo", "demo@example.com", "demo1234"); err != nil {
		logger.Log.Fatal("seed user failed", zap.Error(err))
	}

	port := getEnv("PORT", "8000")
	logger.Info("mock API listening", zap.String("port", port))
	if err := server.Router().Run(":" + port); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
