package controllers

import (
	"net/http"

	"github.com/Kariqs/tableside-api/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) findCategory(ctx *gin.Context, restaurantID uint) (*models.Category, bool) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return nil, false
	}

	var category models.Category
	if err := h.DB.Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&category).Error; err != nil {
		if isNotFound(err) {
			sendErrorResponse(ctx, http.StatusNotFound, "category not found")
			return nil, false
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to retrieve category", err)
		return nil, false
	}
	return &category, true
}

func (h *Handler) categoryNameTaken(restaurantID uint, name string, exceptID uint) (bool, error) {
	var count int64
	err := h.DB.Model(&models.Category{}).
		Where("restaurant_id = ? AND name = ? AND id <> ?", restaurantID, name, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (h *Handler) CreateCategory(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}

	var data models.CategoryData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}

	taken, err := h.categoryNameTaken(restaurantID, data.Name, 0)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to check category", err)
		return
	}
	if taken {
		sendErrorResponse(ctx, http.StatusConflict, "category already exists")
		return
	}

	category := models.Category{RestaurantID: restaurantID, Name: data.Name, Description: data.Description}
	if err := h.DB.Create(&category).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create category", err)
		return
	}
	ctx.JSON(http.StatusCreated, category)
}

func (h *Handler) GetCategories(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}

	query := h.DB.Where("restaurant_id = ?", restaurantID)
	if ctx.Query("withItems") == "true" {
		query = query.Preload("MenuItems")
	}

	var categories []models.Category
	if err := query.Order("name asc").Find(&categories).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch categories", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) GetCategory(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	category, ok := h.findCategory(ctx, restaurantID)
	if !ok {
		return
	}
	if err := h.DB.Where("category_id = ?", category.ID).Find(&category.MenuItems).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch menu items", err)
		return
	}
	ctx.JSON(http.StatusOK, category)
}

func (h *Handler) UpdateCategory(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	category, ok := h.findCategory(ctx, restaurantID)
	if !ok {
		return
	}

	var data models.CategoryData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}

	taken, err := h.categoryNameTaken(restaurantID, data.Name, category.ID)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to check category", err)
		return
	}
	if taken {
		sendErrorResponse(ctx, http.StatusConflict, "category already exists")
		return
	}

	if err := h.DB.Model(category).Updates(map[string]any{"name": data.Name, "description": data.Description}).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update category", err)
		return
	}
	ctx.JSON(http.StatusOK, category)
}

// DeleteCategory refuses to orphan menu items.
func (h *Handler) DeleteCategory(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	category, ok := h.findCategory(ctx, restaurantID)
	if !ok {
		return
	}

	var items int64
	if err := h.DB.Model(&models.MenuItem{}).Where("category_id = ?", category.ID).Count(&items).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to check menu items", err)
		return
	}
	if items > 0 {
		sendErrorResponse(ctx, http.StatusConflict, "category still has menu items")
		return
	}

	if err := h.DB.Unscoped().Delete(category).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to delete category", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
