package routes

import (
	"github.com/Kariqs/tableside-api/controllers"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine, h *controllers.Handler) {
	server.POST("/orders", h.CreateOrder)
	server.GET("/orders/active", h.GetActiveOrder)
	server.GET("/orders/:id", h.GetOrder)
	server.POST("/orders/:id/items", h.AddOrderItems)

	staff := server.Group("/orders", staffOnly(h)...)
	{
		staff.GET("", h.GetOrders)
		staff.GET("/:id/history", h.GetOrderHistory)
		staff.PATCH("/:id/status", h.UpdateOrderStatus)
		staff.PATCH("/:id/payment", h.UpdateOrderPayment)
	}
}
