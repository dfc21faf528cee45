package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/Kariqs/tableside-api/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const claimsKey = "user"

type Claims struct {
	UserID       uint            `json:"user_id"`
	Email        string          `json:"email"`
	Role         models.UserRole `json:"role"`
	RestaurantID uint            `json:"restaurant_id,omitempty"`
	jwt.RegisteredClaims
}

func GenerateToken(user models.User, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	if user.RestaurantID != nil {
		claims.RestaurantID = *user.RestaurantID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireAuth validates a bearer token and stores its claims on the context.
// EventSource clients cannot set headers, so a token query parameter is
// accepted as well.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenStr := ctx.Query("token")
		if header := ctx.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			tokenStr = strings.TrimPrefix(header, "Bearer ")
		}
		if tokenStr == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization token required"})
			return
		}

		claims, err := ParseToken(tokenStr, secret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		ctx.Set(claimsKey, claims)
		ctx.Next()
	}
}

// CurrentUser returns the claims stored by RequireAuth.
func CurrentUser(ctx *gin.Context) (*Claims, bool) {
	v, exists := ctx.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
