package services

import (
	"fmt"

	"github.com/Kariqs/tableside-api/models"
	"gorm.io/gorm"
)

// resolveLines prices the requested items against the restaurant's menu.
// Every item must exist, belong to the restaurant and be available,
// otherwise nothing is returned. Repeated menu items collapse into one line.
func resolveLines(db *gorm.DB, restaurantID uint, requested []models.OrderLineData) ([]models.OrderItem, float64, error) {
	if len(requested) == 0 {
		return nil, 0, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}

	ids := make([]uint, 0, len(requested))
	for _, r := range requested {
		ids = append(ids, r.MenuItemID)
	}

	var menuItems []models.MenuItem
	if err := db.Where("id IN ? AND restaurant_id = ?", ids, restaurantID).Find(&menuItems).Error; err != nil {
		return nil, 0, err
	}
	byID := make(map[uint]models.MenuItem, len(menuItems))
	for _, m := range menuItems {
		byID[m.ID] = m
	}

	lines := []models.OrderItem{}
	index := map[uint]int{}
	var total float64
	for _, r := range requested {
		item, ok := byID[r.MenuItemID]
		if !ok || !item.Available {
			return nil, 0, fmt.Errorf("%w: one or more items are missing or unavailable", ErrValidation)
		}
		qty := r.Quantity
		if qty < 1 {
			qty = 1
		}
		total += item.Price * float64(qty)

		if i, seen := index[item.ID]; seen {
			lines[i].Quantity += qty
			continue
		}
		index[item.ID] = len(lines)
		lines = append(lines, models.OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   qty,
		})
	}
	return lines, total, nil
}
