package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/Kariqs/tableside-api/middlewares"
	"github.com/Kariqs/tableside-api/models"
	"github.com/Kariqs/tableside-api/services"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type tableCountData struct {
	Count int `json:"count" binding:"min=0,max=500"`
}

func orderTables(db *gorm.DB) *gorm.DB {
	return db.Order("table_number asc")
}

// syncTables makes the restaurant own tables 1..count. Extra tables are
// removed only when free.
func syncTables(tx *gorm.DB, restaurantID uint, count int) error {
	var tables []models.RestaurantTable
	if err := tx.Where("restaurant_id = ?", restaurantID).Find(&tables).Error; err != nil {
		return err
	}

	have := make(map[int]bool, len(tables))
	var extra []uint
	for _, t := range tables {
		have[t.TableNumber] = true
		if t.TableNumber > count {
			if t.IsBooked {
				return fmt.Errorf("%w: table %d is booked", services.ErrConflict, t.TableNumber)
			}
			extra = append(extra, t.ID)
		}
	}

	if len(extra) > 0 {
		if err := tx.Unscoped().Delete(&models.RestaurantTable{}, extra).Error; err != nil {
			return err
		}
	}

	var missing []models.RestaurantTable
	for n := 1; n <= count; n++ {
		if !have[n] {
			missing = append(missing, models.RestaurantTable{RestaurantID: restaurantID, TableNumber: n})
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return tx.Create(&missing).Error
}

func (h *Handler) loadRestaurant(ctx *gin.Context, id uint) (*models.Restaurant, bool) {
	var restaurant models.Restaurant
	if err := h.DB.Preload("Tables", orderTables).First(&restaurant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "restaurant not found")
			return nil, false
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to retrieve restaurant", err)
		return nil, false
	}
	return &restaurant, true
}

func (h *Handler) CreateRestaurant(ctx *gin.Context) {
	claims, _ := middlewares.CurrentUser(ctx)

	var data models.RestaurantData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}

	var count int64
	if err := h.DB.Model(&models.Restaurant{}).Where("owner_id = ?", claims.UserID).Count(&count).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to check restaurant", err)
		return
	}
	if count > 0 {
		sendErrorResponse(ctx, http.StatusConflict, "you already own a restaurant")
		return
	}

	restaurant := models.Restaurant{
		OwnerID:      claims.UserID,
		Name:         data.Name,
		Email:        data.Email,
		Phone:        data.Phone,
		Address:      data.Address,
		Description:  data.Description,
		OpeningHours: datatypes.NewJSONType(data.OpeningHours),
	}

	var owner models.User
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		if err := syncTables(tx, restaurant.ID, data.TableCount); err != nil {
			return err
		}
		if err := tx.First(&owner, claims.UserID).Error; err != nil {
			return err
		}
		owner.RestaurantID = &restaurant.ID
		return tx.Model(&owner).Update("restaurant_id", restaurant.ID).Error
	})
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create restaurant", err)
		return
	}

	token, err := h.generateJWT(owner)
	if err != nil {
		log.Println("Token generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	created, ok := h.loadRestaurant(ctx, restaurant.ID)
	if !ok {
		return
	}
	sendJSONResponse(ctx, http.StatusCreated, gin.H{"restaurant": created, "token": token})
}

func (h *Handler) GetMyRestaurant(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	if restaurant, ok := h.loadRestaurant(ctx, restaurantID); ok {
		ctx.JSON(http.StatusOK, restaurant)
	}
}

func (h *Handler) UpdateRestaurant(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}

	var data models.RestaurantData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}

	err := h.DB.Model(&models.Restaurant{}).Where("id = ?", restaurantID).Updates(map[string]any{
		"name":          data.Name,
		"email":         data.Email,
		"phone":         data.Phone,
		"address":       data.Address,
		"description":   data.Description,
		"opening_hours": datatypes.NewJSONType(data.OpeningHours),
	}).Error
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update restaurant", err)
		return
	}

	if restaurant, ok := h.loadRestaurant(ctx, restaurantID); ok {
		ctx.JSON(http.StatusOK, restaurant)
	}
}

// SetTables grows or shrinks the restaurant's table list.
func (h *Handler) SetTables(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}

	var data tableCountData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		return syncTables(tx, restaurantID, data.Count)
	})
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	if restaurant, ok := h.loadRestaurant(ctx, restaurantID); ok {
		ctx.JSON(http.StatusOK, gin.H{"tables": restaurant.Tables})
	}
}

func (h *Handler) GetPublicRestaurant(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if restaurant, ok := h.loadRestaurant(ctx, id); ok {
		ctx.JSON(http.StatusOK, restaurant)
	}
}

// GetPublicMenu lists categories with their currently available items.
func (h *Handler) GetPublicMenu(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	restaurant, ok := h.loadRestaurant(ctx, id)
	if !ok {
		return
	}

	var categories []models.Category
	err := h.DB.Where("restaurant_id = ?", id).
		Preload("MenuItems", "available = ?", true).
		Order("name asc").
		Find(&categories).Error
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch menu", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"restaurant": gin.H{"id": restaurant.ID, "name": restaurant.Name, "openingHours": restaurant.OpeningHours},
		"categories": categories,
	})
}
