package models

import "gorm.io/gorm"

type Category struct {
	gorm.Model
	RestaurantID uint       `json:"restaurantId" gorm:"uniqueIndex:idx_restaurant_category;not null"`
	Name         string     `json:"name" gorm:"uniqueIndex:idx_restaurant_category;size:191;not null"`
	Description  string     `json:"description"`
	MenuItems    []MenuItem `json:"menuItems,omitempty" gorm:"foreignKey:CategoryID"`
}

type MenuItem struct {
	gorm.Model
	RestaurantID uint    `json:"restaurantId" gorm:"index;not null"`
	CategoryID   uint    `json:"categoryId" gorm:"index;not null"`
	Name         string  `json:"name" gorm:"not null"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" gorm:"not null"`
	ImageURL     string  `json:"imageUrl"`
	Available    bool    `json:"available" gorm:"not null;default:true"`
}

type CategoryData struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type MenuItemData struct {
	CategoryID  uint    `json:"categoryId" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	ImageURL    string  `json:"imageUrl" binding:"omitempty,url"`
	Available   *bool   `json:"available"`
}
