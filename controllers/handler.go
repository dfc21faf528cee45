package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Kariqs/tableside-api/initializers"
	"github.com/Kariqs/tableside-api/middlewares"
	"github.com/Kariqs/tableside-api/models"
	"github.com/Kariqs/tableside-api/realtime"
	"github.com/Kariqs/tableside-api/services"
	"github.com/Kariqs/tableside-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	msgInvalidInput        = "invalid input"
	msgInternalServerError = "Internal server error"
	msgNoRestaurant        = "Create a restaurant first"
)

type Handler struct {
	DB       *gorm.DB
	Config   *initializers.Config
	Orders   *services.OrderService
	Payments *services.PaymentService
	Hub      *realtime.Hub
	// Storage and Mailer are nil when S3 or SMTP are not configured.
	Storage utils.Storage
	Mailer  utils.Mailer
}

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"message": message,
		"error":   errMsg,
	})
}

func sendBindError(ctx *gin.Context, err error) {
	sendJSONResponse(ctx, http.StatusBadRequest, gin.H{
		"message": msgInvalidInput,
		"fields":  validationErrorsToMap(err),
	})
}

// handleServiceError maps the services error taxonomy onto HTTP statuses.
func handleServiceError(ctx *gin.Context, err error) {
	for _, m := range []struct {
		sentinel error
		status   int
	}{
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrValidation, http.StatusBadRequest},
		{services.ErrUpstream, http.StatusBadGateway},
	} {
		if errors.Is(err, m.sentinel) {
			sendErrorResponse(ctx, m.status, strings.TrimPrefix(err.Error(), m.sentinel.Error()+": "))
			return
		}
	}
	log.Printf("%s %s: %v", ctx.Request.Method, ctx.FullPath(), err)
	sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// staffRestaurantID resolves the restaurant the caller works for. Owner
// tokens issued before the restaurant existed carry no restaurant, so the
// owner's row is looked up instead.
func (h *Handler) staffRestaurantID(ctx *gin.Context) (uint, bool) {
	claims, ok := middlewares.CurrentUser(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return 0, false
	}
	if claims.RestaurantID != 0 {
		return claims.RestaurantID, true
	}

	if claims.Role == models.RoleOwner {
		var restaurant models.Restaurant
		err := h.DB.Select("id").Where("owner_id = ?", claims.UserID).First(&restaurant).Error
		if err == nil {
			return restaurant.ID, true
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Println("Failed to resolve owner restaurant:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
			return 0, false
		}
	}
	sendErrorResponse(ctx, http.StatusForbidden, msgNoRestaurant)
	return 0, false
}
