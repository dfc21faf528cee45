package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Kariqs/tableside-api/middlewares"
	"github.com/Kariqs/tableside-api/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bcryptCost = 10

	msgUserAlreadyExists     = "user already exists"
	msgFailedToHashPassword  = "failed to hash password"
	msgInvalidCredentials    = "invalid email or password"
	msgFailedToGenerateToken = "failed to generate token"
	msgUserCreated           = "Account created successfully."
)

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func (h *Handler) generateJWT(user models.User) (string, error) {
	return middlewares.GenerateToken(user, h.Config.JWTSecret, h.Config.TokenTTL)
}

func (h *Handler) checkUserExists(email string) (bool, error) {
	var count int64
	err := h.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Signup registers a restaurant owner.
func (h *Handler) Signup(ctx *gin.Context) {
	var data models.SignupData
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

	hashedPassword, err := hashPassword(data.Password)
	if err != nil {
		log.Println("Password hashing error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	user := models.User{
		Fullname: data.Fullname,
		Email:    data.Email,
		Phone:    data.Phone,
		Password: hashedPassword,
		Role:     models.RoleOwner,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		log.Println("User creation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		log.Println("Token generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": msgUserCreated, "token": token, "user": user})
}

// Login authenticates owners and chefs alike.
func (h *Handler) Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		sendBindError(ctx, err)
		return
	}

	var user models.User
	err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(loginData.Email))).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Println("Database error during login:", err)
		}
		sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	if err := comparePasswords(user.Password, loginData.Password); err != nil {
		sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	if user.Role == models.RoleOwner && user.RestaurantID == nil {
		var restaurant models.Restaurant
		if err := h.DB.Select("id").Where("owner_id = ?", user.ID).First(&restaurant).Error; err == nil {
			user.RestaurantID = &restaurant.ID
		}
	}

	token, err := h.generateJWT(user)
	if err != nil {
		log.Println("Token generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) Me(ctx *gin.Context) {
	claims, ok := middlewares.CurrentUser(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var user models.User
	if err := h.DB.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "user not found")
			return
		}
		log.Println("Failed to load user:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	ctx.JSON(http.StatusOK, user)
}
