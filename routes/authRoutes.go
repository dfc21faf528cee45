package routes

import (
	"github.com/Kariqs/tableside-api/controllers"
	"github.com/Kariqs/tableside-api/middlewares"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(server *gin.Engine, h *controllers.Handler) {
	auth := server.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.GET("/me", middlewares.RequireAuth(h.Config.JWTSecret), h.Me)
	}
}
