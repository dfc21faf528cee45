package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderPreparing OrderStatus = "preparing"
	OrderCompleted OrderStatus = "completed"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// ActiveOrderStatuses are the statuses that keep a table occupied.
var ActiveOrderStatuses = []OrderStatus{OrderPending, OrderAccepted, OrderPreparing}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderPreparing, OrderCompleted, OrderPaid, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsActive() bool {
	return s == OrderPending || s == OrderAccepted || s == OrderPreparing
}

// ReleasesTable reports whether moving into s frees the order's table even
// when the order was no longer active.
func (s OrderStatus) ReleasesTable() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// AcceptsItems reports whether lines may still be appended in status s.
func (s OrderStatus) AcceptsItems() bool {
	return s == OrderPending || s == OrderAccepted
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentUnpaid || s == PaymentPaid
}

// PaymentSnapshot is copied onto the order once a payment is finalized.
type PaymentSnapshot struct {
	PaymentID     uint          `json:"paymentId"`
	Method        PaymentMethod `json:"method"`
	TransactionID string        `json:"transactionId"`
	ProviderRef   string        `json:"providerRef,omitempty"`
	Amount        float64       `json:"amount"`
	PaidAt        time.Time     `json:"paidAt"`
}

type Order struct {
	gorm.Model
	RestaurantID  uint                                 `json:"restaurantId" gorm:"index:idx_order_table;not null"`
	TableNumber   int                                  `json:"tableNumber" gorm:"index:idx_order_table;not null"`
	Status        OrderStatus                          `json:"status" gorm:"size:20;index;not null"`
	PaymentStatus PaymentStatus                        `json:"paymentStatus" gorm:"size:20;not null"`
	TotalAmount   float64                              `json:"totalAmount"`
	Note          string                               `json:"note"`
	Payment       datatypes.JSONType[*PaymentSnapshot] `json:"payment"`
	OrderItems    []OrderItem                          `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	gorm.Model
	OrderID    uint    `json:"orderId" gorm:"index;not null"`
	MenuItemID uint    `json:"menuItemId" gorm:"not null"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
}

func (i OrderItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"orderId" gorm:"index;not null"`
	FromStatus OrderStatus `json:"fromStatus" gorm:"size:20"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"size:20;not null"`
	ChangedBy  *uint       `json:"changedBy"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type OrderLineData struct {
	MenuItemID uint `json:"menuItemId" binding:"required"`
	Quantity   int  `json:"quantity"`
}

type CreateOrderData struct {
	RestaurantID uint            `json:"restaurantId" binding:"required"`
	TableNumber  int             `json:"tableNumber" binding:"required,min=1"`
	Items        []OrderLineData `json:"items" binding:"required,min=1,dive"`
	Note         string          `json:"note"`
}

type AddItemsData struct {
	Items []OrderLineData `json:"items" binding:"required,min=1,dive"`
}

type OrderStatusData struct {
	Status OrderStatus `json:"status" binding:"required,orderstatus"`
	Note   string      `json:"note"`
	Force  bool        `json:"force"`
}

type OrderPaymentData struct {
	PaymentStatus PaymentStatus `json:"paymentStatus" binding:"required,oneof=unpaid paid"`
}
