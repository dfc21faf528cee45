package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/Kariqs/tableside-api/models"
	"github.com/Kariqs/tableside-api/utils"
	"github.com/gin-gonic/gin"
)

// sendChefWelcomeEmail mails the generated credentials to a new chef.
func (h *Handler) sendChefWelcomeEmail(chef models.User, restaurantID uint, password string) {
	if h.Mailer == nil {
		log.Printf("Mail not configured, skipping welcome email for %s", chef.Email)
		return
	}

	var restaurant models.Restaurant
	h.DB.Select("name").First(&restaurant, restaurantID)

	data := utils.EmailData{
		Name:       chef.Fullname,
		Restaurant: restaurant.Name,
		Email:      chef.Email,
		Password:   password,
		LoginURL:   h.Config.FrontendURL + "/login",
	}
	if err := h.Mailer.Send(chef.Email, "Your kitchen account", utils.ChefWelcomeTemplate, data); err != nil {
		log.Println("Error sending chef welcome email:", err)
		return
	}
	log.Println("Welcome email sent successfully to:", chef.Email)
}

func (h *Handler) CreateChef(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}

	var data models.ChefData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}
	data.Email = strings.ToLower(strings.TrimSpace(data.Email))

	exists, err := h.checkUserExists(data.Email)
	if err != nil {
		log.Println("Database error during user check:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if exists {
		sendErrorResponse(ctx, http.StatusConflict, msgUserAlreadyExists)
		return
	}

	password, err := utils.GenerateCode(6)
	if err != nil {
		log.Println("Password generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	hashed, err := hashPassword(password)
	if err != nil {
		log.Println("Password hashing error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	chef := models.User{
		Fullname:     data.Fullname,
		Email:        data.Email,
		Phone:        data.Phone,
		Password:     hashed,
		Role:         models.RoleChef,
		RestaurantID: &restaurantID,
	}
	if err := h.DB.Create(&chef).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create chef", err)
		return
	}

	go h.sendChefWelcomeEmail(chef, restaurantID, password)

	ctx.JSON(http.StatusCreated, chef)
}

func (h *Handler) GetChefs(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}

	var chefs []models.User
	err := h.DB.Where("restaurant_id = ? AND role = ?", restaurantID, models.RoleChef).
		Order("fullname asc").
		Find(&chefs).Error
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch chefs", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"chefs": chefs})
}

func (h *Handler) DeleteChef(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	result := h.DB.Unscoped().Where("id = ? AND restaurant_id = ? AND role = ?", id, restaurantID, models.RoleChef).Delete(&models.User{})
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to delete chef", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "chef not found")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Chef removed"})
}
