package controllers

import (
	"net/http"
	"strconv"

	"github.com/Kariqs/tableside-api/middlewares"
	"github.com/Kariqs/tableside-api/models"
	"github.com/Kariqs/tableside-api/services"
	"github.com/Kariqs/tableside-api/statemachine"
	"github.com/gin-gonic/gin"
)

type statusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

// CreateOrder is called by a customer who scanned a table's QR code.
func (h *Handler) CreateOrder(ctx *gin.Context) {
	var data models.CreateOrderData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}

	order, err := h.Orders.Create(ctx.Request.Context(), data)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, order)
}

func (h *Handler) GetActiveOrder(ctx *gin.Context) {
	restaurantID, err := strconv.ParseUint(ctx.Query("restaurantId"), 10, 64)
	if err != nil || restaurantID == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid restaurantId")
		return
	}
	tableNumber, err := strconv.Atoi(ctx.Query("tableNumber"))
	if err != nil || tableNumber < 1 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid tableNumber")
		return
	}

	order, err := h.Orders.FindActive(ctx.Request.Context(), uint(restaurantID), tableNumber)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

func (h *Handler) GetOrder(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	order, err := h.Orders.Get(ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

func (h *Handler) AddOrderItems(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var data models.AddItemsData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}

	order, err := h.Orders.AddItems(ctx.Request.Context(), id, data.Items)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// GetOrders lists the restaurant's orders, newest first, with a per-status
// count for the dashboard.
func (h *Handler) GetOrders(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}

	filter := services.OrderFilter{Status: models.OrderStatus(ctx.Query("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid status filter")
		return
	}

	orders, err := h.Orders.List(ctx.Request.Context(), restaurantID, filter)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	var summary []statusCount
	err = h.DB.Model(&models.Order{}).
		Select("status, count(*) as count").
		Where("restaurant_id = ?", restaurantID).
		Group("status").
		Scan(&summary).Error
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to summarise orders", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"orders": orders, "summary": summary})
}

// GetOrderHistory returns the order's status changes and the statuses the
// transition table allows next.
func (h *Handler) GetOrderHistory(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	history, err := h.Orders.History(ctx.Request.Context(), id, restaurantID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	order, err := h.Orders.Get(ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"history":      history,
		"status":       order.Status,
		"nextStatuses": statemachine.ValidTransitionsFrom(order.Status),
	})
}

// UpdateOrderStatus moves an order through the kitchen workflow. Only the
// owner may force a move the transition table does not allow.
func (h *Handler) UpdateOrderStatus(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var data models.OrderStatusData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}

	claims, _ := middlewares.CurrentUser(ctx)
	if data.Force && claims.Role != models.RoleOwner {
		sendErrorResponse(ctx, http.StatusForbidden, "only the owner can force a status change")
		return
	}

	order, err := h.Orders.UpdateStatus(ctx.Request.Context(), id, restaurantID, services.StatusChange{
		To:      data.Status,
		Note:    data.Note,
		ActorID: &claims.UserID,
		Force:   data.Force,
	})
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderPayment(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var data models.OrderPaymentData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}

	order, err := h.Orders.UpdatePaymentStatus(ctx.Request.Context(), id, restaurantID, data.PaymentStatus)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}
