package routes

import (
	"github.com/Kariqs/tableside-api/controllers"
	"github.com/gin-gonic/gin"
)

func PaymentRoutes(server *gin.Engine, h *controllers.Handler) {
	server.POST("/payments/checkout", h.Checkout)
	server.GET("/payments/verify", h.VerifyPayment)
	server.POST("/payments/verify", h.VerifyPayment)

	staff := server.Group("/payments", staffOnly(h)...)
	{
		staff.GET("/order/:orderId", h.GetOrderPayments)
		staff.PATCH("/:id/status", h.UpdatePaymentStatus)
	}
}
