package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"catalog-backend/internal/config"
	"catalog-backend/internal/database"
	"catalog-backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	app := server.New(cfg, db)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down ...")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Println("Server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
