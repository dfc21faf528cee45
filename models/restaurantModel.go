package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OpeningHour is one entry of a restaurant's weekly schedule, times as "HH:MM".
type OpeningHour struct {
	Day   string `json:"day" binding:"required"`
	Open  string `json:"open" binding:"required"`
	Close string `json:"close" binding:"required"`
}

type Restaurant struct {
	gorm.Model
	OwnerID      uint                              `json:"ownerId" gorm:"uniqueIndex;not null"`
	Name         string                            `json:"name" gorm:"not null"`
	Email        string                            `json:"email"`
	Phone        string                            `json:"phone"`
	Address      string                            `json:"address"`
	Description  string                            `json:"description"`
	OpeningHours datatypes.JSONType[[]OpeningHour] `json:"openingHours"`
	Tables       []RestaurantTable                 `json:"tables" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
}

type RestaurantTable struct {
	gorm.Model
	RestaurantID uint   `json:"restaurantId" gorm:"uniqueIndex:idx_restaurant_table;not null"`
	TableNumber  int    `json:"tableNumber" gorm:"uniqueIndex:idx_restaurant_table;not null"`
	IsBooked     bool   `json:"isBooked" gorm:"not null;default:false"`
	QRCodeURL    string `json:"qrCodeUrl"`
}

type RestaurantData struct {
	Name         string        `json:"name" binding:"required"`
	Email        string        `json:"email" binding:"omitempty,email"`
	Phone        string        `json:"phone"`
	Address      string        `json:"address"`
	Description  string        `json:"description"`
	OpeningHours []OpeningHour `json:"openingHours" binding:"omitempty,dive"`
	TableCount   int           `json:"tableCount" binding:"omitempty,min=0,max=500"`
}
