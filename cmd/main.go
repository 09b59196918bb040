package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bistro/internal/api"
	"bistro/internal/auth"
	"bistro/internal/config"
	"bistro/internal/database"
	"bistro/internal/live"
	"bistro/internal/metrics"
	"bistro/internal/models"

	"github.com/jinzhu/gorm"
)

var (
	configFile    = flag.String("config", "", "Path to configuration file")
	adminUser     = flag.String("create-admin", "", "Create a staff admin account with this username and exit")
	adminPassword = flag.String("admin-password", "", "Password for -create-admin")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}

	if err := database.InitDB(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	db := database.GetDB()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := database.Seed(db); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	if *adminUser != "" {
		if err := createAdmin(db, *adminUser, *adminPassword); err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		log.Printf("Created staff account %q", *adminUser)
		return
	}

	hub := live.NewHub()
	go hub.Run()

	go metrics.Serve(cfg.MetricsAddr)

	a := api.New(db, cfg, hub)
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: a.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting API server on %s", cfg.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

// createAdmin provisions a staff account from the command line, the only
// path to the first admin on a fresh database.
func createAdmin(db *gorm.DB, username, password string) error {
	if password == "" {
		return fmt.Errorf("-admin-password is required with -create-admin")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user := models.User{Username: username, PasswordHash: hash, IsStaff: true}
	return db.Create(&user).Error
}
