package main

import (
	"log"

	"github.com/folioworks/folio/internal/logger"
	"github.com/folioworks/folio/server"
)

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Console = true
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	log.Printf("Folio content API starting on %s", cfg.Addr)
	if err := srv.Start(cfg.Addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
