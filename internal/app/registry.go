package app

import (
	"database/sql"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/k-obata-3/leave-connect-api/internal/application"
	"github.com/k-obata-3/leave-connect-api/internal/balance"
	"github.com/k-obata-3/leave-connect-api/internal/messaging/kafka"
	"github.com/k-obata-3/leave-connect-api/internal/middleware"
	"github.com/k-obata-3/leave-connect-api/internal/sysconfig"
	"github.com/k-obata-3/leave-connect-api/internal/user"
)

func registerModules(router *gin.Engine, gormDB *gorm.DB, sqlDB *sql.DB, rdb *redis.Client, logger *zap.Logger) {
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	userRepo := user.NewRepository(gormDB)

	configRepo := sysconfig.NewRepository(gormDB)
	configService := sysconfig.NewService(configRepo, logger)

	balanceRepo := balance.NewRepository(sqlDB)
	ledger := balance.NewLedger(balanceRepo, logger)

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	workflowRepo := application.NewRepository(sqlDB)
	workflowQueries := application.NewQueryRepository(gormDB)
	workflowService := application.NewServiceWithOutbox(
		sqlDB,
		workflowRepo,
		workflowQueries,
		userRepo,
		configService,
		ledger,
		outboxRepo,
		paidHolidayTypeFromEnv(),
		logger,
	)
	workflowHandler := application.NewHandler(workflowService, logger)
	application.RegisterRoutes(v1, workflowHandler, rdb)
}

// paidHolidayTypeFromEnv identifies which application type consumes the
// leave balance. Type 0 unless overridden.
func paidHolidayTypeFromEnv() int64 {
	raw := os.Getenv("PAID_HOLIDAY_TYPE")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		zap.L().Warn("invalid PAID_HOLIDAY_TYPE, falling back to 0", zap.String("value", raw))
		return 0
	}
	return v
}
