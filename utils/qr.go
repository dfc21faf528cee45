package utils

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 512

// TableURL is the customer facing page a table's QR code points to.
func TableURL(frontendURL string, restaurantID uint, tableNumber int) string {
	return fmt.Sprintf("%s/restaurant/%d/table/%d", strings.TrimRight(frontendURL, "/"), restaurantID, tableNumber)
}

func TableQRCode(frontendURL string, restaurantID uint, tableNumber int) ([]byte, error) {
	return qrcode.Encode(TableURL(frontendURL, restaurantID, tableNumber), qrcode.Medium, qrSize)
}
