package routes

import (
	"github.com/Kariqs/tableside-api/controllers"
	"github.com/gin-gonic/gin"
)

func RestaurantRoutes(server *gin.Engine, h *controllers.Handler) {
	server.GET("/restaurant", append(staffOnly(h), h.GetMyRestaurant)...)

	owner := server.Group("/restaurant", ownerOnly(h)...)
	{
		owner.POST("", h.CreateRestaurant)
		owner.PATCH("", h.UpdateRestaurant)
		owner.PUT("/tables", h.SetTables)
		owner.GET("/tables/:tableNumber/qr", h.GetTableQR)
		owner.POST("/tables/:tableNumber/qr", h.UploadTableQR)
	}

	public := server.Group("/public/restaurants")
	{
		public.GET("/:id", h.GetPublicRestaurant)
		public.GET("/:id/menu", h.GetPublicMenu)
	}
}
