package gateways

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestEsewa(url string) *Esewa {
	return NewEsewa(EsewaConfig{
		FormURL:     url,
		StatusURL:   url,
		ProductCode: "EPAYTEST",
		SecretKey:   "8gBm/:&EnhH.1/q",
	})
}

func TestEsewa_Sign(t *testing.T) {
	e := newTestEsewa("")
	got := e.Sign("total_amount=100,transaction_uuid=11-201-13,product_code=EPAYTEST")
	want := "5DZywcrTKD0gia/rsSMcrRHmJl+4Tbol6S+lWgdJ94E="
	if got != want {
		t.Fatalf("signature mismatch: got %s want %s", got, want)
	}
}

func TestEsewa_InitiateReturnsRedirectLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != esewaFormPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("total_amount") != "250" || r.PostForm.Get("transaction_uuid") != "txn-1" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		if r.PostForm.Get("signed_field_names") != esewaSignedFields || r.PostForm.Get("signature") == "" {
			t.Errorf("missing signature fields: %v", r.PostForm)
		}
		w.Header().Set("Location", "/checkout/abc")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	e := newTestEsewa(srv.URL)
	res, err := e.Initiate(context.Background(), InitiateRequest{OrderID: 1, TransactionID: "txn-1", Amount: 250})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if res.RedirectURL != srv.URL+"/checkout/abc" {
		t.Fatalf("unexpected redirect %q", res.RedirectURL)
	}
}

func TestEsewa_InitiateFailsWithoutRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"bad signature"}`)
	}))
	defer srv.Close()

	if _, err := newTestEsewa(srv.URL).Initiate(context.Background(), InitiateRequest{TransactionID: "t", Amount: 10}); err == nil {
		t.Fatal("expected error for non-redirect response")
	}
}

func TestEsewa_Verify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("transaction_uuid") != "txn-1" || q.Get("total_amount") != "250" || q.Get("product_code") != "EPAYTEST" {
			t.Errorf("unexpected query %v", q)
		}
		fmt.Fprint(w, `{"product_code":"EPAYTEST","transaction_uuid":"txn-1","total_amount":250,"status":"COMPLETE","ref_id":"0001TS9"}`)
	}))
	defer srv.Close()

	res, err := newTestEsewa(srv.URL).Verify(context.Background(), VerifyRequest{TransactionID: "txn-1", Amount: 250})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.Complete || res.ReferenceID != "0001TS9" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEsewa_ParseCallback(t *testing.T) {
	e := newTestEsewa("")
	signed := "transaction_code,status,total_amount,transaction_uuid,product_code,signed_field_names"
	msg := "transaction_code=000AWEO,status=COMPLETE,total_amount=1000.0,transaction_uuid=txn-9,product_code=EPAYTEST,signed_field_names=" + signed
	payload := fmt.Sprintf(`{"transaction_code":"000AWEO","status":"COMPLETE","total_amount":1000.0,"transaction_uuid":"txn-9","product_code":"EPAYTEST","signed_field_names":%q,"signature":%q}`,
		signed, e.Sign(msg))
	data := base64.StdEncoding.EncodeToString([]byte(payload))

	txn, err := e.ParseCallback(data)
	if err != nil {
		t.Fatalf("parse callback: %v", err)
	}
	if txn != "txn-9" {
		t.Fatalf("unexpected transaction %q", txn)
	}

	tampered := base64.StdEncoding.EncodeToString([]byte(
		fmt.Sprintf(`{"status":"COMPLETE","transaction_uuid":"txn-9","signed_field_names":"status,transaction_uuid","signature":%q}`, "bogus")))
	if _, err := e.ParseCallback(tampered); err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}
