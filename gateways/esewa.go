package gateways

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Kariqs/tableside-api/models"
	"github.com/go-resty/resty/v2"
)

const (
	EsewaSandboxFormURL   = "https://rc-epay.esewa.com.np"
	EsewaSandboxStatusURL = "https://rc.esewa.com.np"

	esewaFormPath   = "/api/epay/main/v2/form"
	esewaStatusPath = "/api/epay/transaction/status/"

	esewaSignedFields = "total_amount,transaction_uuid,product_code"
)

var ErrInvalidSignature = errors.New("esewa callback signature mismatch")

type EsewaConfig struct {
	FormURL     string
	StatusURL   string
	ProductCode string
	SecretKey   string
	Timeout     time.Duration
}

// Esewa implements the eSewa ePay v2 flow: an HMAC signed form POST that
// answers with a redirect, and a status lookup by transaction uuid.
type Esewa struct {
	cfg    EsewaConfig
	client *resty.Client
}

func NewEsewa(cfg EsewaConfig) *Esewa {
	if cfg.FormURL == "" {
		cfg.FormURL = EsewaSandboxFormURL
	}
	if cfg.StatusURL == "" {
		cfg.StatusURL = EsewaSandboxStatusURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		// the Location header of the form response is the checkout page
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	return &Esewa{cfg: cfg, client: client}
}

func (e *Esewa) Method() models.PaymentMethod { return models.MethodEsewa }

// Sign returns the base64 HMAC-SHA256 of message keyed by the merchant secret.
func (e *Esewa) Sign(message string) string {
	mac := hmac.New(sha256.New, []byte(e.cfg.SecretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (e *Esewa) Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error) {
	total := formatAmount(req.Amount)
	message := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s",
		total, req.TransactionID, e.cfg.ProductCode)

	resp, err := e.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"amount":                  total,
			"tax_amount":              "0",
			"total_amount":            total,
			"transaction_uuid":        req.TransactionID,
			"product_code":            e.cfg.ProductCode,
			"product_service_charge":  "0",
			"product_delivery_charge": "0",
			"success_url":             req.ReturnURLs.Success,
			"failure_url":             req.ReturnURLs.Failure,
			"signed_field_names":      esewaSignedFields,
			"signature":               e.Sign(message),
		}).
		Post(e.cfg.FormURL + esewaFormPath)
	if err != nil {
		return InitiateResult{}, fmt.Errorf("esewa form request: %w", err)
	}

	status := resp.StatusCode()
	if status < 300 || status >= 400 {
		return InitiateResult{}, fmt.Errorf("esewa form request failed with status %d: %s", status, string(resp.Body()))
	}

	location := resp.Header().Get("Location")
	if location == "" {
		return InitiateResult{}, fmt.Errorf("esewa response has no redirect location")
	}
	if strings.HasPrefix(location, "/") {
		location = e.cfg.FormURL + location
	}

	return InitiateResult{RedirectURL: location}, nil
}

type esewaStatusResponse struct {
	ProductCode     string  `json:"product_code"`
	TransactionUUID string  `json:"transaction_uuid"`
	TotalAmount     float64 `json:"total_amount"`
	Status          string  `json:"status"`
	RefID           *string `json:"ref_id"`
}

func (e *Esewa) Verify(ctx context.Context, req VerifyRequest) (VerifyResult, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"product_code":     e.cfg.ProductCode,
			"total_amount":     formatAmount(req.Amount),
			"transaction_uuid": req.TransactionID,
		}).
		Get(e.cfg.StatusURL + esewaStatusPath)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("esewa status request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return VerifyResult{}, fmt.Errorf("esewa status request failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var body esewaStatusResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return VerifyResult{}, fmt.Errorf("failed to parse esewa status response: %w", err)
	}
	if body.Status == "" {
		return VerifyResult{}, fmt.Errorf("esewa status missing in response: %s", string(resp.Body()))
	}

	result := VerifyResult{
		Status:   body.Status,
		Complete: body.Status == "COMPLETE",
		Pending:  body.Status == "PENDING" || body.Status == "AMBIGUOUS",
	}
	if body.RefID != nil {
		result.ReferenceID = *body.RefID
	}
	return result, nil
}

// ParseCallback decodes the base64 "data" parameter eSewa appends to the
// success URL, checks its signature and returns the transaction uuid.
func (e *Esewa) ParseCallback(data string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode esewa callback: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return "", fmt.Errorf("parse esewa callback: %w", err)
	}

	signedNames, _ := fields["signed_field_names"].(string)
	signature, _ := fields["signature"].(string)
	if signedNames == "" || signature == "" {
		return "", ErrInvalidSignature
	}

	parts := []string{}
	for _, name := range strings.Split(signedNames, ",") {
		parts = append(parts, name+"="+fmt.Sprint(fields[name]))
	}
	if !hmac.Equal([]byte(e.Sign(strings.Join(parts, ","))), []byte(signature)) {
		return "", ErrInvalidSignature
	}

	txnID, _ := fields["transaction_uuid"].(string)
	if txnID == "" {
		return "", fmt.Errorf("esewa callback has no transaction_uuid")
	}
	return txnID, nil
}
