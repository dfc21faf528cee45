package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Kariqs/tableside-api/models"
	"github.com/go-resty/resty/v2"
)

const KhaltiSandboxURL = "https://dev.khalti.com/api/v2"

type KhaltiConfig struct {
	BaseURL    string
	SecretKey  string
	WebsiteURL string
	Timeout    time.Duration
}

// Khalti implements the Khalti ePayment v2 flow. Both calls are JSON POSTs
// authorised with the merchant secret key; pidx is the proof token.
type Khalti struct {
	cfg    KhaltiConfig
	client *resty.Client
}

func NewKhalti(cfg KhaltiConfig) *Khalti {
	if cfg.BaseURL == "" {
		cfg.BaseURL = KhaltiSandboxURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetBaseURL(cfg.BaseURL).
		SetHeaders(map[string]string{
			"Authorization": "Key " + cfg.SecretKey,
			"Accept":        "application/json",
			"Content-Type":  "application/json",
		})

	return &Khalti{cfg: cfg, client: client}
}

func (k *Khalti) Method() models.PaymentMethod { return models.MethodKhalti }

type khaltiInitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
}

func (k *Khalti) Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error) {
	name := req.Description
	if name == "" {
		name = fmt.Sprintf("Order #%d", req.OrderID)
	}

	resp, err := k.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"return_url":          req.ReturnURLs.Success,
			"website_url":         k.cfg.WebsiteURL,
			"amount":              toPaisa(req.Amount),
			"purchase_order_id":   req.TransactionID,
			"purchase_order_name": name,
		}).
		Post("/epayment/initiate/")
	if err != nil {
		return InitiateResult{}, fmt.Errorf("khalti initiate request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return InitiateResult{}, fmt.Errorf("khalti initiate failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var body khaltiInitiateResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return InitiateResult{}, fmt.Errorf("failed to parse khalti initiate response: %w", err)
	}
	if body.Pidx == "" || body.PaymentURL == "" {
		return InitiateResult{}, fmt.Errorf("incomplete response from khalti: %s", string(resp.Body()))
	}

	return InitiateResult{RedirectURL: body.PaymentURL, ProviderRef: body.Pidx}, nil
}

type khaltiLookupResponse struct {
	Pidx          string  `json:"pidx"`
	TotalAmount   int64   `json:"total_amount"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id"`
}

func (k *Khalti) Verify(ctx context.Context, req VerifyRequest) (VerifyResult, error) {
	resp, err := k.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"pidx": req.ProviderRef}).
		Post("/epayment/lookup/")
	if err != nil {
		return VerifyResult{}, fmt.Errorf("khalti lookup request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return VerifyResult{}, fmt.Errorf("khalti lookup failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var body khaltiLookupResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return VerifyResult{}, fmt.Errorf("failed to parse khalti lookup response: %w", err)
	}
	if body.Status == "" {
		return VerifyResult{}, fmt.Errorf("khalti status missing in response: %s", string(resp.Body()))
	}

	result := VerifyResult{
		Status:   body.Status,
		Complete: body.Status == "Completed",
		Pending:  body.Status == "Pending" || body.Status == "Initiated",
	}
	if result.Complete && body.TotalAmount != toPaisa(req.Amount) {
		result.Complete = false
		result.Status = "AMOUNT_MISMATCH"
	}
	if body.TransactionID != nil {
		result.ReferenceID = *body.TransactionID
	}
	return result, nil
}
