package app

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/k-obata-3/leave-connect-api/internal/middleware"
	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
	"github.com/k-obata-3/leave-connect-api/internal/shared/connection"
)

type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	SQLDB  *sql.DB
	Redis  *redis.Client
	Logger *zap.Logger
}

// BuildApp wires every module and returns a ready-to-serve router plus
// the shared connections so the caller controls their lifetime.
func BuildApp() (*App, error) {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	apperror.Init()

	gormDB, err := connection.ConnectGORMWithRetry(
		getenv("DB_HOST", "localhost"),
		getenv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getenv("DB_NAME", "leave_connect"),
		getenv("DB_PORT", "5432"),
		getenv("DB_SSLMODE", "disable"),
		5,
	)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}

	rdb, err := connection.ConnectRedisWithRetry(getenv("REDIS_ADDR", "localhost:6379"), 5)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(logger))
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	registerModules(router, gormDB, sqlDB, rdb, logger)

	return &App{
		Router: router,
		DB:     gormDB,
		SQLDB:  sqlDB,
		Redis:  rdb,
		Logger: logger,
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
