package main

import (
	"log"

	"github.com/k-obata-3/leave-connect-api/internal/app"
)

func main() {
	if err := app.RunWorker(); err != nil {
		log.Fatalf("worker exited: %v", err)
	}
}
