package main

import (
	"log"

	"grantreview-backend/internal/shared/config"
	"grantreview-backend/internal/shared/server"
	"grantreview-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.LogLevel, cfg.LogFormat)

	r, err := server.NewRouter(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
