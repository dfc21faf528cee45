package routes

import (
	"github.com/Kariqs/tableside-api/controllers"
	"github.com/gin-gonic/gin"
)

func StaffRoutes(server *gin.Engine, h *controllers.Handler) {
	chefs := server.Group("/chefs", ownerOnly(h)...)
	{
		chefs.POST("", h.CreateChef)
		chefs.GET("", h.GetChefs)
		chefs.DELETE("/:id", h.DeleteChef)
	}

	server.GET("/categories", append(staffOnly(h), h.GetCategories)...)
	server.GET("/categories/:id", append(staffOnly(h), h.GetCategory)...)
	categories := server.Group("/categories", ownerOnly(h)...)
	{
		categories.POST("", h.CreateCategory)
		categories.PATCH("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}

	server.GET("/menu-items", append(staffOnly(h), h.GetMenuItems)...)
	server.GET("/menu-items/:id", append(staffOnly(h), h.GetMenuItem)...)
	server.PATCH("/menu-items/:id/availability", append(staffOnly(h), h.SetMenuItemAvailability)...)
	items := server.Group("/menu-items", ownerOnly(h)...)
	{
		items.POST("", h.CreateMenuItem)
		items.PATCH("/:id", h.UpdateMenuItem)
		items.DELETE("/:id", h.DeleteMenuItem)
		items.POST("/:id/image", h.UploadMenuItemImage)
	}
}
