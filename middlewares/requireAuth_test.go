package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Kariqs/tableside-api/models"
	"github.com/gin-gonic/gin"
)

func newRouter(secret string, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", RequireAuth(secret), RequireRole(roles...), func(ctx *gin.Context) {
		claims, _ := CurrentUser(ctx)
		ctx.JSON(http.StatusOK, gin.H{"restaurantId": claims.RestaurantID})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	restaurantID := uint(3)
	chef := models.User{Email: "chef@example.com", Role: models.RoleChef, RestaurantID: &restaurantID}
	chef.ID = 9
	token, err := GenerateToken(chef, "s3cret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	expired, _ := GenerateToken(chef, "s3cret", -time.Minute)

	cases := []struct {
		name   string
		header string
		query  string
		roles  []models.UserRole
		want   int
	}{
		{"bearer header", "Bearer " + token, "", []models.UserRole{models.RoleChef}, http.StatusOK},
		{"query token", "", "?token=" + token, []models.UserRole{models.RoleChef}, http.StatusOK},
		{"missing token", "", "", []models.UserRole{models.RoleChef}, http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, "", []models.UserRole{models.RoleChef}, http.StatusUnauthorized},
		{"wrong role", "Bearer " + token, "", []models.UserRole{models.RoleOwner}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			newRouter("s3cret", tc.roles...).ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := GenerateToken(models.User{Role: models.RoleOwner}, "one", time.Hour)
	if _, err := ParseToken(token, "two"); err == nil {
		t.Fatal("expected signature error")
	}
}
