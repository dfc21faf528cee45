package controllers

import (
	"net/http"

	"github.com/Kariqs/tableside-api/models"
	"github.com/Kariqs/tableside-api/services"
	"github.com/gin-gonic/gin"
)

// Checkout starts a payment for an order and returns where to send the
// customer next.
func (h *Handler) Checkout(ctx *gin.Context) {
	var data models.CheckoutData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}

	checkout, err := h.Payments.Initiate(ctx.Request.Context(), data.OrderID, data.Method)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, checkout)
}

// VerifyPayment accepts the provider callback parameters either as a query
// string (GET) or a JSON body (POST).
func (h *Handler) VerifyPayment(ctx *gin.Context) {
	var data models.VerifyData
	var err error
	if ctx.Request.Method == http.MethodGet {
		err = ctx.ShouldBindQuery(&data)
	} else {
		err = ctx.ShouldBindJSON(&data)
	}
	if err != nil {
		sendBindError(ctx, err)
		return
	}

	result, err := h.Payments.Verify(ctx.Request.Context(), services.VerifyInput{
		OrderID:       data.OrderID,
		Method:        data.Method,
		TransactionID: data.TransactionID,
		Pidx:          data.Pidx,
		Data:          data.Data,
	})
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (h *Handler) GetOrderPayments(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(ctx, "orderId")
	if !ok {
		return
	}

	payments, err := h.Payments.ListForOrder(ctx.Request.Context(), orderID, restaurantID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (h *Handler) UpdatePaymentStatus(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var data models.PaymentStatusData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendBindError(ctx, err)
		return
	}

	payment, err := h.Payments.UpdateStatus(ctx.Request.Context(), id, restaurantID, data.Status)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, payment)
}
