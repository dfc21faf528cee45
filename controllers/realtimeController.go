package controllers

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Kariqs/tableside-api/realtime"
	"github.com/gin-gonic/gin"
)

const (
	heartbeatInterval    = 20 * time.Second
	msgStreamUnavailable = "Live updates are unavailable, try again shortly"
)

// streamRoom relays hub events for room to the client as server-sent events
// until the client goes away or the hub shuts down.
func (h *Handler) streamRoom(ctx *gin.Context, room string) {
	sub, err := h.Hub.Subscribe(room)
	if err != nil {
		log.Printf("Subscribe to %s failed: %v", room, err)
		sendErrorResponse(ctx, http.StatusServiceUnavailable, msgStreamUnavailable)
		return
	}
	defer sub.Close()

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.SSEvent("ready", gin.H{"room": room})
	ctx.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return false
			}
			ctx.SSEvent(ev.Name, ev.Payload)
			return true
		case <-heartbeat.C:
			ctx.SSEvent("ping", time.Now().Unix())
			return true
		case <-ctx.Request.Context().Done():
			return false
		}
	})
}

// StreamRestaurant feeds the kitchen dashboard. Staff may only listen to
// their own restaurant.
func (h *Handler) StreamRestaurant(ctx *gin.Context) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if id != restaurantID {
		sendErrorResponse(ctx, http.StatusForbidden, "not your restaurant")
		return
	}
	h.streamRoom(ctx, realtime.RestaurantRoom(id))
}

// StreamOrder lets a customer follow a single order.
func (h *Handler) StreamOrder(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if _, err := h.Orders.Get(ctx.Request.Context(), id); err != nil {
		handleServiceError(ctx, err)
		return
	}
	h.streamRoom(ctx, realtime.OrderRoom(id))
}
