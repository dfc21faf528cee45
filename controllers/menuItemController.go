package controllers

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Kariqs/tableside-api/models"
	"github.com/Kariqs/tableside-api/utils"
	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

type availabilityData struct {
	Available *bool `json:"available" binding:"required"`
}

func (h *Handler) findMenuItem(ctx *gin.Context, restaurantID uint) (*models.MenuItem, bool) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return nil, false
	}

	var item models.MenuItem
	if err := h.DB.Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&item).Error; err != nil {
		if isNotFound(err) {
			sendErrorResponse(ctx, http.StatusNotFound, "menu item not found")
			return nil, false
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to retrieve menu item", err)
		return nil, false
	}
	return &item, true
}

func (h *Handler) categoryBelongs(ctx *gin.Context, restaurantID, categoryID uint) bool {
	var count int64
	if err := h.DB.Model(&models.Category{}).Where("id = ? AND restaurant_id = ?", categoryID, restaurantID).Count(&count).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to validate category", err)
		return false
	}
	if count == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "category not found")
		return false
	}
	return true
}

func (h *Handler) CreateMenuItem(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}

	var data models.MenuItemData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}
	if !h.categoryBelongs(ctx, restaurantID, data.CategoryID) {
		return
	}

	item := models.MenuItem{
		RestaurantID: restaurantID,
		CategoryID:   data.CategoryID,
		Name:         data.Name,
		Description:  data.Description,
		Price:        data.Price,
		ImageURL:     data.ImageURL,
		Available:    true,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create menu item", err)
		return
	}
	// the column default would override a false on insert
	if data.Available != nil && !*data.Available {
		if err := h.DB.Model(&item).Update("available", false).Error; err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to create menu item", err)
			return
		}
	}

	ctx.JSON(http.StatusCreated, item)
}

func (h *Handler) GetMenuItems(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}

	query := h.DB.Where("restaurant_id = ?", restaurantID)
	if categoryID, err := strconv.ParseUint(ctx.Query("categoryId"), 10, 64); err == nil {
		query = query.Where("category_id = ?", categoryID)
	}
	if search := ctx.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var items []models.MenuItem
	if err := query.Order("name asc").Find(&items).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch menu items", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"menuItems": items})
}

func (h *Handler) GetMenuItem(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	if item, ok := h.findMenuItem(ctx, restaurantID); ok {
		ctx.JSON(http.StatusOK, item)
	}
}

func (h *Handler) UpdateMenuItem(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	item, ok := h.findMenuItem(ctx, restaurantID)
	if !ok {
		return
	}

	var data models.MenuItemData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}
	if data.CategoryID != item.CategoryID && !h.categoryBelongs(ctx, restaurantID, data.CategoryID) {
		return
	}

	updates := map[string]any{
		"category_id": data.CategoryID,
		"name":        data.Name,
		"description": data.Description,
		"price":       data.Price,
		"image_url":   data.ImageURL,
	}
	if data.Available != nil {
		updates["available"] = *data.Available
	}
	if err := h.DB.Model(item).Updates(updates).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update menu item", err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// SetMenuItemAvailability lets kitchen staff take an item off the menu.
func (h *Handler) SetMenuItemAvailability(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	item, ok := h.findMenuItem(ctx, restaurantID)
	if !ok {
		return
	}

	var data availabilityData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}
	if err := h.DB.Model(item).Update("available", *data.Available).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update availability", err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteMenuItem(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	item, ok := h.findMenuItem(ctx, restaurantID)
	if !ok {
		return
	}
	if err := h.DB.Delete(item).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to delete menu item", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}

// UploadMenuItemImage takes a multipart "image" file and stores it in S3.
func (h *Handler) UploadMenuItemImage(ctx *gin.Context) {
	if h.Storage == nil {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, utils.ErrStorageDisabled.Error())
		return
	}
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	item, ok := h.findMenuItem(ctx, restaurantID)
	if !ok {
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	if file.Size > maxImageSize {
		sendErrorResponse(ctx, http.StatusBadRequest, "image must be 5MB or smaller")
		return
	}

	f, err := file.Open()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid file", err)
		return
	}
	defer f.Close()

	key := fmt.Sprintf("restaurants/%d/menu/%d-%s%s", restaurantID, item.ID, time.Now().Format("20060102150405"), filepath.Ext(file.Filename))
	url, err := h.Storage.Upload(ctx.Request.Context(), key, file.Header.Get("Content-Type"), f)
	if err != nil {
		log.Printf("Error uploading file %s: %v", file.Filename, err)
		respondWithError(ctx, http.StatusBadGateway, "Failed to upload image", err)
		return
	}

	if err := h.DB.Model(item).Update("image_url", url).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to save image", err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}
