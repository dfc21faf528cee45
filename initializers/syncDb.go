package initializers

import (
	"log"

	"github.com/Kariqs/tableside-api/models"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.RestaurantTable{},
		&models.Category{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Payment{},
	)
}

func SyncDatabase() {
	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	log.Println("Database synced successfully.")
}
