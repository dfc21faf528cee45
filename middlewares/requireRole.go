package middlewares

import (
	"net/http"
	"strings"

	"github.com/Kariqs/tableside-api/models"
	"github.com/gin-gonic/gin"
)

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	return func(ctx *gin.Context) {
		claims, exists := CurrentUser(ctx)
		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found in context"})
			return
		}

		for _, r := range roles {
			if claims.Role == r {
				ctx.Next()
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied. Required role(s): " + strings.Join(names, ", ")})
	}
}
