package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"bonneaffaire/internal/config"
	"bonneaffaire/internal/database"
	"bonneaffaire/internal/logger"
	"bonneaffaire/internal/migrations"
	"bonneaffaire/internal/models"
)

func main() {
	reset := flag.Bool("reset", false, "drop every table before migrating")
	flag.Parse()

	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.Initialize(cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if *reset {
		if cfg.IsProduction() {
			zlog.Fatal("Refusing to drop tables in production")
		}
		fmt.Println("Dropping existing tables...")
		err = db.Migrator().DropTable(
			&models.TimelineEntry{},
			&models.OrderItem{},
			&models.Order{},
			&models.Product{},
			&models.ShopSetting{},
			&models.User{},
		)
		if err != nil {
			zlog.Warn("Error dropping tables", zap.Error(err))
		}
	}

	if err := migrations.RunMigrations(context.Background(), db, cfg, zlog); err != nil {
		zlog.Fatal("Failed to migrate database", zap.Error(err))
	}

	fmt.Println("Database initialization completed successfully!")
	fmt.Printf("Admin user: %s\n", cfg.AdminUsername)
}
