package models

import "gorm.io/gorm"

type UserRole string

const (
	RoleOwner UserRole = "owner"
	RoleChef  UserRole = "chef"
)

type User struct {
	gorm.Model
	Fullname     string   `json:"fullname"`
	Email        string   `json:"email" gorm:"uniqueIndex;size:191;not null"`
	Phone        string   `json:"phone"`
	Password     string   `json:"-" gorm:"not null"`
	Role         UserRole `json:"role" gorm:"size:20;not null"`
	RestaurantID *uint    `json:"restaurantId" gorm:"index"`
}

type SignupData struct {
	Fullname string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginData struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChefData struct {
	Fullname string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
}
