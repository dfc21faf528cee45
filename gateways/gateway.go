// Package gateways holds one payment capability per provider. Each gateway
// knows how to start a hosted checkout and how to ask the provider whether
// the checkout completed.
package gateways

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/Kariqs/tableside-api/models"
)

const DefaultTimeout = 30 * time.Second

type ReturnURLs struct {
	Success string
	Failure string
}

type InitiateRequest struct {
	OrderID       uint
	TransactionID string
	Amount        float64
	Description   string
	ReturnURLs    ReturnURLs
}

type InitiateResult struct {
	// RedirectURL is where the customer's browser should go next. Empty
	// when the method needs no hosted checkout.
	RedirectURL string
	// ProviderRef is the provider's own identifier for the checkout, if any.
	ProviderRef string
}

type VerifyRequest struct {
	TransactionID string
	ProviderRef   string
	Amount        float64
}

type VerifyResult struct {
	Complete    bool
	Pending     bool
	Status      string
	ReferenceID string
}

type Gateway interface {
	Method() models.PaymentMethod
	Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error)
	Verify(ctx context.Context, req VerifyRequest) (VerifyResult, error)
}

// CallbackParser is implemented by gateways whose browser callback carries
// a signed payload that identifies the transaction.
type CallbackParser interface {
	ParseCallback(data string) (transactionID string, err error)
}

type Registry map[models.PaymentMethod]Gateway

func NewRegistry(gateways ...Gateway) Registry {
	r := make(Registry, len(gateways))
	for _, g := range gateways {
		r[g.Method()] = g
	}
	return r
}

func (r Registry) Get(method models.PaymentMethod) (Gateway, bool) {
	g, ok := r[method]
	return g, ok
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(math.Round(amount*100)/100, 'f', -1, 64)
}

func toPaisa(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
