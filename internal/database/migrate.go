package database

import (
	"log"

	"github.com/vivekxkt/trading-app/internal/models"
)

func AutoMigrate() error {
	err := DB.AutoMigrate(
		&models.Session{},
		&models.Order{},
	)

	if err != nil {
		log.Printf("Failed to auto-migrate: %v", err)
		return err
	}

	log.Println("Database migration completed successfully")
	return nil
}
