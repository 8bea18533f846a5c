package main

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/k-obata-3/leave-connect-api/internal/app"
	"github.com/k-obata-3/leave-connect-api/internal/bootstrap"
)

func main() {
	a, err := app.BuildApp()
	if err != nil {
		zap.L().Fatal("failed to build app", zap.Error(err))
	}
	defer a.Logger.Sync()
	defer a.SQLDB.Close()
	defer a.Redis.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bootstrap.StartHTTPServer(a.Router, bootstrap.ServerConfig{
		Port:         port,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, bootstrap.NewStdoutAuditLogger())
}
