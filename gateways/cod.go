package gateways

import (
	"context"

	"github.com/Kariqs/tableside-api/models"
)

// COD is cash on delivery: nothing to call, staff confirm the payment.
type COD struct{}

func (COD) Method() models.PaymentMethod { return models.MethodCOD }

func (COD) Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error) {
	return InitiateResult{}, nil
}

func (COD) Verify(ctx context.Context, req VerifyRequest) (VerifyResult, error) {
	return VerifyResult{Pending: true, Status: "AWAITING_CASH"}, nil
}
