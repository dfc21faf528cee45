package routes

import (
	"github.com/Kariqs/tableside-api/controllers"
	"github.com/gin-gonic/gin"
)

func RealtimeRoutes(server *gin.Engine, h *controllers.Handler) {
	server.GET("/realtime/restaurants/:id", append(staffOnly(h), h.StreamRestaurant)...)
	server.GET("/realtime/orders/:id", h.StreamOrder)
}
