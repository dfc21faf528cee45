package models

import (
	"time"

	"gorm.io/gorm"
)

type PaymentMethod string

const (
	MethodCOD    PaymentMethod = "COD"
	MethodEsewa  PaymentMethod = "ESEWA"
	MethodKhalti PaymentMethod = "KHALTI"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCOD || m == MethodEsewa || m == MethodKhalti
}

// TransactionStatus is the state of a single payment attempt.
type TransactionStatus string

const (
	TransactionUnpaid TransactionStatus = "UNPAID"
	TransactionPaid   TransactionStatus = "PAID"
	TransactionFailed TransactionStatus = "FAILED"
)

func (s TransactionStatus) Valid() bool {
	return s == TransactionUnpaid || s == TransactionPaid || s == TransactionFailed
}

type Payment struct {
	gorm.Model
	OrderID       uint              `json:"orderId" gorm:"uniqueIndex:idx_payment_order_method;not null"`
	Method        PaymentMethod     `json:"method" gorm:"uniqueIndex:idx_payment_order_method;size:20;not null"`
	Status        TransactionStatus `json:"status" gorm:"size:20;not null"`
	TransactionID string            `json:"transactionId" gorm:"index;size:64"`
	ProviderRef   string            `json:"providerRef"`
	Amount        float64           `json:"amount"`
	PaidAt        *time.Time        `json:"paidAt"`
}

func (p Payment) Snapshot() *PaymentSnapshot {
	snap := &PaymentSnapshot{
		PaymentID:     p.ID,
		Method:        p.Method,
		TransactionID: p.TransactionID,
		ProviderRef:   p.ProviderRef,
		Amount:        p.Amount,
	}
	if p.PaidAt != nil {
		snap.PaidAt = *p.PaidAt
	}
	return snap
}

type CheckoutData struct {
	OrderID uint          `json:"orderId" binding:"required"`
	Method  PaymentMethod `json:"method" binding:"required,paymentmethod"`
}

type VerifyData struct {
	OrderID       uint          `json:"orderId" form:"orderId" binding:"required"`
	Method        PaymentMethod `json:"method" form:"method" binding:"required,paymentmethod"`
	TransactionID string        `json:"transactionUuid" form:"transaction_uuid"`
	Pidx          string        `json:"pidx" form:"pidx"`
	Data          string        `json:"data" form:"data"`
}

type PaymentStatusData struct {
	Status TransactionStatus `json:"status" binding:"required,oneof=UNPAID PAID FAILED"`
}
