package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to Tableside API. Scan, order and pay from your table.

The following are the endpoints for this API:

AUTH
- POST "/auth/signup" - Create owner account
- POST "/auth/login" - Sign in as owner or chef
- GET "/auth/me" - Current account

RESTAURANT
- POST/GET/PATCH "/restaurant" - Manage your restaurant
- PUT "/restaurant/tables" - Set the number of tables
- GET/POST "/restaurant/tables/:tableNumber/qr" - Table QR code
- GET "/public/restaurants/:id" - Restaurant profile
- GET "/public/restaurants/:id/menu" - Available menu

STAFF
- "/chefs", "/categories", "/menu-items" - Kitchen management

ORDER
- POST "/orders" - Place an order for a table
- GET "/orders/active" - Active order on a table
- GET "/orders/:id" - Track an order
- POST "/orders/:id/items" - Add items to an open order
- GET "/orders" - Restaurant orders (staff)
- PATCH "/orders/:id/status" - Update order status (staff)
- PATCH "/orders/:id/payment" - Update payment status (staff)

PAYMENT
- POST "/payments/checkout" - Start eSewa, Khalti or cash payment
- GET/POST "/payments/verify" - Confirm a gateway payment

REALTIME
- GET "/realtime/restaurants/:id" - Kitchen event stream
- GET "/realtime/orders/:id" - Order event stream`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

func Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
