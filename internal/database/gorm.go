package database

import (
	"fmt"
	"log"

	"psicosites/internal/config"
	"psicosites/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitGorm(cfg *config.Config) {
	var err error

	if cfg.DBHost != "" {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		log.Println("Connected to PostgreSQL successfully")
	} else {
		DB, err = gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			log.Fatalf("Failed to open sqlite database at %s: %v", cfg.DBPath, err)
		}
		log.Printf("Using sqlite database at %s", cfg.DBPath)
	}

	// Auto Migration
	err = DB.AutoMigrate(
		&models.Profile{},
		&models.Site{},
		&models.BlogPost{},
		&models.Subscription{},
		&models.TrackingEvent{},
	)
	if err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}

	log.Println("Database migration completed")
}
