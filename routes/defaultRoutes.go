package routes

import (
	"github.com/Kariqs/tableside-api/controllers"
	"github.com/Kariqs/tableside-api/middlewares"
	"github.com/Kariqs/tableside-api/models"
	"github.com/gin-gonic/gin"
)

func DefaultRoutes(server *gin.Engine) {
	server.GET("/", controllers.GetHome)
	server.GET("/health", controllers.Health)
}

// Register mounts every route group on server.
func Register(server *gin.Engine, h *controllers.Handler) {
	DefaultRoutes(server)
	AuthRoutes(server, h)
	RestaurantRoutes(server, h)
	StaffRoutes(server, h)
	OrderRoutes(server, h)
	PaymentRoutes(server, h)
	RealtimeRoutes(server, h)
}

func ownerOnly(h *controllers.Handler) []gin.HandlerFunc {
	return []gin.HandlerFunc{middlewares.RequireAuth(h.Config.JWTSecret), middlewares.RequireRole(models.RoleOwner)}
}

func staffOnly(h *controllers.Handler) []gin.HandlerFunc {
	return []gin.HandlerFunc{middlewares.RequireAuth(h.Config.JWTSecret), middlewares.RequireRole(models.RoleOwner, models.RoleChef)}
}
