package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Kariqs/tableside-api/gateways"
	"github.com/Kariqs/tableside-api/models"
	"github.com/Kariqs/tableside-api/realtime"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentService struct {
	db            *gorm.DB
	gateways      gateways.Registry
	publisher     realtime.Publisher
	returnBaseURL string

	newTransactionID func() string
	now              func() time.Time
}

func NewPaymentService(db *gorm.DB, registry gateways.Registry, publisher realtime.Publisher, returnBaseURL string) *PaymentService {
	return &PaymentService{
		db:               db,
		gateways:         registry,
		publisher:        publisher,
		returnBaseURL:    strings.TrimRight(returnBaseURL, "/"),
		newTransactionID: uuid.NewString,
		now:              time.Now,
	}
}

type Checkout struct {
	Payment     *models.Payment `json:"payment"`
	RedirectURL string          `json:"redirectUrl,omitempty"`
}

type VerifyInput struct {
	OrderID       uint
	Method        models.PaymentMethod
	TransactionID string
	Pidx          string
	Data          string
}

type Verification struct {
	Payment *models.Payment `json:"payment"`
	Order   *models.Order   `json:"order"`
	// ProviderStatus is the raw status the provider reported.
	ProviderStatus string `json:"providerStatus"`
}

// Initiate starts a checkout for the order with the given method. A FAILED
// or absent attempt gets a fresh transaction ID; an UNPAID one is retried
// under its existing ID.
func (s *PaymentService) Initiate(ctx context.Context, orderID uint, method models.PaymentMethod) (*Checkout, error) {
	gw, ok := s.gateways.Get(method)
	if !method.Valid() || !ok {
		return nil, fmt.Errorf("%w: unsupported payment method %q", ErrValidation, method)
	}
	db := s.db.WithContext(ctx)

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, err
	}
	if order.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("%w: order is already paid", ErrConflict)
	}
	if order.Status == models.OrderCancelled {
		return nil, fmt.Errorf("%w: order is cancelled", ErrConflict)
	}

	var existing models.Payment
	err := db.Where("order_id = ? AND method = ?", order.ID, method).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	found := err == nil

	transactionID := s.newTransactionID()
	if found {
		switch existing.Status {
		case models.TransactionPaid:
			return nil, fmt.Errorf("%w: payment already completed", ErrConflict)
		case models.TransactionUnpaid:
			if existing.TransactionID != "" {
				transactionID = existing.TransactionID
			}
		}
	}

	result, err := gw.Initiate(ctx, gateways.InitiateRequest{
		OrderID:       order.ID,
		TransactionID: transactionID,
		Amount:        order.TotalAmount,
		Description:   fmt.Sprintf("Order #%d (table %d)", order.ID, order.TableNumber),
		ReturnURLs:    s.returnURLs(order.ID, method),
	})
	if err != nil {
		log.Printf("Failed to initiate %s payment for order %d: %v", method, order.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	payment := models.Payment{
		OrderID:       order.ID,
		Method:        method,
		Status:        models.TransactionUnpaid,
		TransactionID: transactionID,
		ProviderRef:   result.ProviderRef,
		Amount:        order.TotalAmount,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "method"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "transaction_id", "provider_ref", "amount", "updated_at"}),
	}).Create(&payment).Error
	if err != nil {
		return nil, err
	}

	// the upsert leaves the struct's ID unset on conflict with some drivers
	var saved models.Payment
	if err := db.Where("order_id = ? AND method = ?", order.ID, method).First(&saved).Error; err != nil {
		return nil, err
	}

	return &Checkout{Payment: &saved, RedirectURL: result.RedirectURL}, nil
}

// Verify asks the provider about a checkout and records the outcome.
func (s *PaymentService) Verify(ctx context.Context, in VerifyInput) (*Verification, error) {
	gw, ok := s.gateways.Get(in.Method)
	if !in.Method.Valid() || !ok {
		return nil, fmt.Errorf("%w: unsupported payment method %q", ErrValidation, in.Method)
	}
	if in.OrderID == 0 {
		return nil, fmt.Errorf("%w: orderId is required", ErrValidation)
	}

	transactionID := in.TransactionID
	switch in.Method {
	case models.MethodEsewa:
		if in.Data != "" {
			parser, ok := gw.(gateways.CallbackParser)
			if !ok {
				return nil, fmt.Errorf("%w: callback payload not supported", ErrValidation)
			}
			parsed, err := parser.ParseCallback(in.Data)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}
			if transactionID != "" && transactionID != parsed {
				return nil, fmt.Errorf("%w: transaction mismatch", ErrValidation)
			}
			transactionID = parsed
		}
		if transactionID == "" {
			return nil, fmt.Errorf("%w: transaction_uuid or data is required", ErrValidation)
		}
	case models.MethodKhalti:
		if in.Pidx == "" {
			return nil, fmt.Errorf("%w: pidx is required", ErrValidation)
		}
	}

	db := s.db.WithContext(ctx)

	var order models.Order
	if err := db.First(&order, in.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return nil, err
	}

	var payment models.Payment
	if err := db.Where("order_id = ? AND method = ?", order.ID, in.Method).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment not found", ErrNotFound)
		}
		return nil, err
	}
	if transactionID != "" && transactionID != payment.TransactionID {
		return nil, fmt.Errorf("%w: payment not found for transaction", ErrNotFound)
	}
	if in.Pidx != "" && in.Pidx != payment.ProviderRef {
		return nil, fmt.Errorf("%w: payment not found for pidx", ErrNotFound)
	}
	if payment.Status != models.TransactionPaid && payment.Amount != order.TotalAmount {
		if payment.Status != models.TransactionFailed {
			if err := db.Model(&payment).Update("status", models.TransactionFailed).Error; err != nil {
				return nil, err
			}
		}
		log.Printf("Payment %d for order %d covers %.2f but the order total is %.2f", payment.ID, order.ID, payment.Amount, order.TotalAmount)
		return nil, fmt.Errorf("%w: order total changed since checkout, start a new payment", ErrConflict)
	}

	result, err := gw.Verify(ctx, gateways.VerifyRequest{
		TransactionID: payment.TransactionID,
		ProviderRef:   payment.ProviderRef,
		Amount:        payment.Amount,
	})
	if err != nil {
		log.Printf("Failed to verify %s payment %d: %v", in.Method, payment.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	switch {
	case result.Complete:
		if err := s.finalize(db, &payment, &order, result.ReferenceID); err != nil {
			return nil, err
		}
	case result.Pending:
	default:
		if payment.Status != models.TransactionPaid {
			if err := db.Model(&payment).Update("status", models.TransactionFailed).Error; err != nil {
				return nil, err
			}
			payment.Status = models.TransactionFailed
			log.Printf("Payment %d for order %d failed with provider status %s", payment.ID, order.ID, result.Status)
		}
	}

	updatedOrder, err := s.loadOrder(db, order.ID)
	if err != nil {
		return nil, err
	}
	return &Verification{Payment: &payment, Order: updatedOrder, ProviderStatus: result.Status}, nil
}

// UpdateStatus overwrites a payment's status. Marking it PAID also marks the
// order paid.
func (s *PaymentService) UpdateStatus(ctx context.Context, paymentID, restaurantID uint, status models.TransactionStatus) (*models.Payment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, status)
	}
	db := s.db.WithContext(ctx)

	var payment models.Payment
	err := db.Joins("JOIN orders ON orders.id = payments.order_id").
		Where("payments.id = ? AND orders.restaurant_id = ?", paymentID, restaurantID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment not found", ErrNotFound)
		}
		return nil, err
	}

	var order models.Order
	if err := db.First(&order, payment.OrderID).Error; err != nil {
		return nil, err
	}

	if status == models.TransactionPaid {
		if err := s.finalize(db, &payment, &order, ""); err != nil {
			return nil, err
		}
		return &payment, nil
	}

	if err := db.Model(&payment).Update("status", status).Error; err != nil {
		return nil, err
	}
	payment.Status = status
	s.publishOrder(db, order.ID)
	return &payment, nil
}

func (s *PaymentService) ListForOrder(ctx context.Context, orderID, restaurantID uint) ([]models.Payment, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Order{}).Where("id = ? AND restaurant_id = ?", orderID, restaurantID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}

	var payments []models.Payment
	if err := db.Where("order_id = ?", orderID).Order("created_at asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// finalize marks the payment PAID and copies it onto the order. Running it
// again on a PAID payment rewrites the same values.
func (s *PaymentService) finalize(db *gorm.DB, payment *models.Payment, order *models.Order, referenceID string) error {
	paidAt := s.now()
	if payment.PaidAt != nil {
		paidAt = *payment.PaidAt
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": models.TransactionPaid, "paid_at": paidAt, "amount": payment.Amount}
		if payment.Status != models.TransactionPaid {
			// record the bill the payment settled
			updates["amount"] = order.TotalAmount
		}
		if referenceID != "" && payment.Method == models.MethodEsewa {
			updates["provider_ref"] = referenceID
		}
		if err := tx.Model(payment).Updates(updates).Error; err != nil {
			return err
		}
		payment.Status = models.TransactionPaid
		payment.PaidAt = &paidAt
		payment.Amount = updates["amount"].(float64)
		if ref, ok := updates["provider_ref"].(string); ok {
			payment.ProviderRef = ref
		}

		return tx.Model(order).Updates(map[string]any{
			"payment_status": models.PaymentPaid,
			"payment":        datatypes.NewJSONType(payment.Snapshot()),
		}).Error
	})
	if err != nil {
		return err
	}

	log.Printf("Payment %d (%s) completed for order %d", payment.ID, payment.Method, order.ID)
	s.publishOrder(db, order.ID)
	return nil
}

func (s *PaymentService) publishOrder(db *gorm.DB, orderID uint) {
	order, err := s.loadOrder(db, orderID)
	if err != nil {
		log.Printf("Failed to load order %d for event: %v", orderID, err)
		return
	}
	s.publisher.Publish(realtime.RestaurantRoom(order.RestaurantID), realtime.EventOrderUpdate, order)
	s.publisher.Publish(realtime.OrderRoom(order.ID), realtime.EventOrderUpdate, order)
}

func (s *PaymentService) loadOrder(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("OrderItems").First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *PaymentService) returnURLs(orderID uint, method models.PaymentMethod) gateways.ReturnURLs {
	return gateways.ReturnURLs{
		Success: fmt.Sprintf("%s/payment/success/%d/%s", s.returnBaseURL, orderID, method),
		Failure: fmt.Sprintf("%s/payment/failure/%d/%s", s.returnBaseURL, orderID, method),
	}
}
