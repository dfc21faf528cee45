package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Kariqs/tableside-api/models"
	"github.com/Kariqs/tableside-api/realtime"
	"github.com/Kariqs/tableside-api/statemachine"
	"gorm.io/gorm"
)

type OrderService struct {
	db                *gorm.DB
	publisher         realtime.Publisher
	strictTransitions bool
}

func NewOrderService(db *gorm.DB, publisher realtime.Publisher, strictTransitions bool) *OrderService {
	return &OrderService{
		db:                db,
		publisher:         publisher,
		strictTransitions: strictTransitions,
	}
}

// StatusChange describes who moves an order and whether the transition
// table may be bypassed.
type StatusChange struct {
	To      models.OrderStatus
	Note    string
	ActorID *uint
	Force   bool
}

type OrderFilter struct {
	Status models.OrderStatus
}

// Create books the table and stores a pending order in one transaction.
// The conditional update on is_booked makes the booking a compare-and-swap,
// so two requests for the same table cannot both succeed.
func (s *OrderService) Create(ctx context.Context, data models.CreateOrderData) (*models.Order, error) {
	if len(data.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	db := s.db.WithContext(ctx)

	var restaurant models.Restaurant
	if err := db.First(&restaurant, data.RestaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: restaurant not found", ErrNotFound)
		}
		return nil, err
	}

	var table models.RestaurantTable
	if err := db.Where("restaurant_id = ? AND table_number = ?", restaurant.ID, data.TableNumber).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: table %d not found", ErrNotFound, data.TableNumber)
		}
		return nil, err
	}
	if table.IsBooked {
		return nil, fmt.Errorf("%w: table %d is already booked", ErrConflict, table.TableNumber)
	}

	lines, total, err := resolveLines(db, restaurant.ID, data.Items)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		RestaurantID:  restaurant.ID,
		TableNumber:   table.TableNumber,
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentUnpaid,
		TotalAmount:   total,
		Note:          data.Note,
		OrderItems:    lines,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := bookTable(tx, restaurant.ID, table.TableNumber); err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.Order{}).
			Where("restaurant_id = ? AND table_number = ? AND status IN ?", restaurant.ID, table.TableNumber, models.ActiveOrderStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: table %d already has an active order", ErrConflict, table.TableNumber)
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:  order.ID,
			ToStatus: models.OrderPending,
			Note:     "Order placed by customer",
		}).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Order %d placed for restaurant %d table %d", order.ID, order.RestaurantID, order.TableNumber)
	s.publisher.Publish(realtime.RestaurantRoom(order.RestaurantID), realtime.EventOrderNew, order)
	return &order, nil
}

// AddItems appends lines to an open, unpaid order. Lines for a menu item
// already on the order increase its quantity instead of duplicating it.
// Unpaid checkouts for the order are marked FAILED, so the next checkout
// charges the new total under a new transaction ID.
func (s *OrderService) AddItems(ctx context.Context, orderID uint, items []models.OrderLineData) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("OrderItems").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order not found", ErrNotFound)
			}
			return err
		}
		if !order.Status.AcceptsItems() {
			return fmt.Errorf("%w: items cannot be added to a %s order", ErrConflict, order.Status)
		}
		if order.PaymentStatus == models.PaymentPaid {
			return fmt.Errorf("%w: order is already paid", ErrConflict)
		}

		lines, added, err := resolveLines(tx, order.RestaurantID, items)
		if err != nil {
			return err
		}

		existing := make(map[uint]uint, len(order.OrderItems))
		for _, line := range order.OrderItems {
			existing[line.MenuItemID] = line.ID
		}
		for _, line := range lines {
			if lineID, ok := existing[line.MenuItemID]; ok {
				if err := tx.Model(&models.OrderItem{}).Where("id = ?", lineID).
					UpdateColumn("quantity", gorm.Expr("quantity + ?", line.Quantity)).Error; err != nil {
					return err
				}
				continue
			}
			line.OrderID = order.ID
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}

		// checkouts started for the old total can no longer settle the order
		err = tx.Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", order.ID, models.TransactionUnpaid).
			Update("status", models.TransactionFailed).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]any{"total_amount": gorm.Expr("total_amount + ?", added)}).Error
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publishToBoth(updated, realtime.EventOrderItemsAdded, realtime.EventOrderUpdate)
	return updated, nil
}

// UpdateStatus moves an order of restaurantID to change.To. Leaving the
// active set releases the table and re-entering it books the table again.
// Moving an inactive order to completed or cancelled frees a table that no
// active order holds.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, restaurantID uint, change StatusChange) (*models.Order, error) {
	if !change.To.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrValidation, change.To)
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND restaurant_id = ?", orderID, restaurantID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order not found", ErrNotFound)
			}
			return err
		}

		from := order.Status
		if s.strictTransitions && !change.Force {
			if err := statemachine.CanTransition(from, change.To); err != nil {
				return fmt.Errorf("%w: %v", ErrConflict, err)
			}
		}

		switch {
		case from.IsActive() && !change.To.IsActive():
			if err := releaseTable(tx, order.RestaurantID, order.TableNumber); err != nil {
				return err
			}
		case !from.IsActive() && change.To.IsActive():
			if err := bookTable(tx, order.RestaurantID, order.TableNumber); err != nil {
				return err
			}
		case change.To.ReleasesTable():
			if err := releaseVacantTable(tx, order.RestaurantID, order.TableNumber); err != nil {
				return err
			}
		}

		if err := tx.Model(&order).Update("status", change.To).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   change.To,
			ChangedBy:  change.ActorID,
			Note:       change.Note,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publishToBoth(updated, realtime.EventOrderUpdate)
	return updated, nil
}

// UpdatePaymentStatus writes the order's payment flag without any checks.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID, restaurantID uint, status models.PaymentStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, status)
	}

	result := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND restaurant_id = ?", orderID, restaurantID).
		Update("payment_status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}

	updated, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publishToBoth(updated, realtime.EventOrderUpdate)
	return updated, nil
}

func (s *OrderService) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("OrderItems").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) List(ctx context.Context, restaurantID uint, filter OrderFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("OrderItems").Where("restaurant_id = ?", restaurantID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindActive returns the order currently occupying a table.
func (s *OrderService) FindActive(ctx context.Context, restaurantID uint, tableNumber int) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").
		Where("restaurant_id = ? AND table_number = ? AND status IN ?", restaurantID, tableNumber, models.ActiveOrderStatuses).
		Order("created_at desc").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active order on table %d", ErrNotFound, tableNumber)
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) History(ctx context.Context, orderID, restaurantID uint) ([]models.OrderStatusHistory, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Order{}).Where("id = ? AND restaurant_id = ?", orderID, restaurantID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}

	var history []models.OrderStatusHistory
	if err := db.Where("order_id = ?", orderID).Order("id asc").Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func (s *OrderService) publishToBoth(order *models.Order, events ...string) {
	for _, ev := range events {
		s.publisher.Publish(realtime.RestaurantRoom(order.RestaurantID), ev, order)
		s.publisher.Publish(realtime.OrderRoom(order.ID), ev, order)
	}
}

func bookTable(tx *gorm.DB, restaurantID uint, tableNumber int) error {
	result := tx.Model(&models.RestaurantTable{}).
		Where("restaurant_id = ? AND table_number = ? AND is_booked = ?", restaurantID, tableNumber, false).
		Update("is_booked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: table %d is already booked", ErrConflict, tableNumber)
	}
	return nil
}

// releaseVacantTable frees the table unless an active order still sits on it.
func releaseVacantTable(tx *gorm.DB, restaurantID uint, tableNumber int) error {
	var active int64
	err := tx.Model(&models.Order{}).
		Where("restaurant_id = ? AND table_number = ? AND status IN ?", restaurantID, tableNumber, models.ActiveOrderStatuses).
		Count(&active).Error
	if err != nil || active > 0 {
		return err
	}
	return releaseTable(tx, restaurantID, tableNumber)
}

func releaseTable(tx *gorm.DB, restaurantID uint, tableNumber int) error {
	return tx.Model(&models.RestaurantTable{}).
		Where("restaurant_id = ? AND table_number = ?", restaurantID, tableNumber).
		Update("is_booked", false).Error
}
