package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Kariqs/tableside-api/models"
	"github.com/Kariqs/tableside-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) findTable(ctx *gin.Context) (*models.RestaurantTable, bool) {
	restaurantID, ok := h.staffRestaurantID(ctx)
	if !ok {
		return nil, false
	}
	tableNumber, err := strconv.Atoi(ctx.Param("tableNumber"))
	if err != nil || tableNumber < 1 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid tableNumber")
		return nil, false
	}

	var table models.RestaurantTable
	err = h.DB.Where("restaurant_id = ? AND table_number = ?", restaurantID, tableNumber).First(&table).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "table not found")
			return nil, false
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to retrieve table", err)
		return nil, false
	}
	return &table, true
}

// GetTableQR renders the table's ordering link as a PNG.
func (h *Handler) GetTableQR(ctx *gin.Context) {
	table, ok := h.findTable(ctx)
	if !ok {
		return
	}

	png, err := utils.TableQRCode(h.Config.FrontendURL, table.RestaurantID, table.TableNumber)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to generate QR code", err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf("inline; filename=table-%d.png", table.TableNumber))
	ctx.Data(http.StatusOK, "image/png", png)
}

// UploadTableQR stores the PNG in S3 and remembers its URL on the table.
func (h *Handler) UploadTableQR(ctx *gin.Context) {
	if h.Storage == nil {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, utils.ErrStorageDisabled.Error())
		return
	}
	table, ok := h.findTable(ctx)
	if !ok {
		return
	}

	png, err := utils.TableQRCode(h.Config.FrontendURL, table.RestaurantID, table.TableNumber)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to generate QR code", err)
		return
	}

	key := fmt.Sprintf("restaurants/%d/qr/table-%d-%s.png", table.RestaurantID, table.TableNumber, time.Now().Format("20060102150405"))
	url, err := h.Storage.Upload(ctx.Request.Context(), key, "image/png", bytes.NewReader(png))
	if err != nil {
		log.Printf("Error uploading QR code for table %d: %v", table.TableNumber, err)
		respondWithError(ctx, http.StatusBadGateway, "Failed to upload QR code", err)
		return
	}

	if err := h.DB.Model(table).Update("qr_code_url", url).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to save QR code", err)
		return
	}
	ctx.JSON(http.StatusOK, table)
}
