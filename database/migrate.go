package database

import (
	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/utils"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the queue needs.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Token{},
		&models.Settings{},
		&models.OverrideLog{},
		&models.Analytics{},
	)
	if err != nil {
		utils.ErrorLogger.Printf("AutoMigrate failed: %v", err)
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
