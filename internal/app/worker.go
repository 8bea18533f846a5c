package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/k-obata-3/leave-connect-api/internal/messaging/kafka"
	"github.com/k-obata-3/leave-connect-api/internal/messaging/kafka/producer"
	"github.com/k-obata-3/leave-connect-api/internal/shared/connection"
)

// RunWorker polls the outbox table and publishes pending lifecycle
// events to Kafka until the process is signalled to stop.
func RunWorker() error {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

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
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}
	defer sqlDB.Close()

	writer, err := connection.ConnectKafkaWithRetry(getenv("KAFKA_BROKER", "localhost:9092"), 5)
	if err != nil {
		return err
	}
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	repo := kafka.NewOutboxRepository(sqlDB)
	producer.ProcessOutboxEvents(ctx, repo, writer, logger, 3*time.Second)
	return nil
}
