package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/satspoint/SatsPoint/internal/database"
	"github.com/satspoint/SatsPoint/internal/lnbits"
	"github.com/satspoint/SatsPoint/internal/payments"
)

type fakeLnbits struct {
	paid map[string]bool
}

func (f *fakeLnbits) CreateInvoice(params lnbits.InvoiceParams) (lnbits.BitInvoice, error) {
	return lnbits.BitInvoice{
		PaymentHash:    "test-hash",
		PaymentRequest: "lnbc10n1fake",
	}, nil
}

func (f *fakeLnbits) Payment(paymentHash string) (lnbits.PaymentStatus, error) {
	return lnbits.PaymentStatus{Paid: f.paid[paymentHash], Pending: !f.paid[paymentHash]}, nil
}

func newTestRouter(t *testing.T) (*mux.Router, *fakeLnbits, *gorm.DB) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	ln := &fakeLnbits{paid: map[string]bool{}}
	service := payments.NewService(db, ln, "https://pos.example.com")
	handlers := NewPaymentHandlers(service)

	r := mux.NewRouter()
	r.HandleFunc("/payments/invoice", NostrAuthMiddleware(db, handlers.CreateInvoice)).Methods(http.MethodPost)
	r.HandleFunc("/payments/history", NostrAuthMiddleware(db, handlers.History)).Methods(http.MethodGet)
	r.HandleFunc("/payments/webhook", handlers.Webhook).Methods(http.MethodPost)
	r.HandleFunc("/payments/{id}", NostrAuthMiddleware(db, handlers.GetPayment)).Methods(http.MethodGet)
	r.HandleFunc("/health", Health).Methods(http.MethodGet)
	return r, ln, db
}

func TestCreateInvoiceEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]interface{}{"amount_sats": 1000, "memo": "coffee"})
	token, kp := signedHeader(t, "http://example.com/payments/invoice", http.MethodPost)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/payments/invoice", bytes.NewReader(body))
	req.Header.Set("Authorization", token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var resp createInvoiceResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PaymentID == "" || resp.Bolt11 != "lnbc10n1fake" || resp.PaymentHash != "test-hash" {
		t.Errorf("response = %+v", resp)
	}

	// the invoice is retrievable and credited to the signer
	token, _ = signedHeader(t, "http://example.com/payments/"+resp.PaymentID, http.MethodGet)
	req = httptest.NewRequest(http.MethodGet, "http://example.com/payments/"+resp.PaymentID, nil)
	req.Header.Set("Authorization", token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var payment database.Payment
	if err := json.Unmarshal(rr.Body.Bytes(), &payment); err != nil {
		t.Fatalf("decode payment: %v", err)
	}
	if payment.ReceiverPubkey != kp.PublicKey {
		t.Errorf("receiver = %q, want %q", payment.ReceiverPubkey, kp.PublicKey)
	}
	if payment.Status != "pending" {
		t.Errorf("status = %q, want pending", payment.Status)
	}
}

func TestCreateInvoiceRejectsNonPositiveAmount(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]interface{}{"amount_sats": 0})
	token, _ := signedHeader(t, "http://example.com/payments/invoice", http.MethodPost)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/payments/invoice", bytes.NewReader(body))
	req.Header.Set("Authorization", token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	token, _ := signedHeader(t, "http://example.com/payments/pay_missing", http.MethodGet)
	req := httptest.NewRequest(http.MethodGet, "http://example.com/payments/pay_missing", nil)
	req.Header.Set("Authorization", token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestWebhookSettlesPayment(t *testing.T) {
	router, ln, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]interface{}{"amount_sats": 500})
	token, _ := signedHeader(t, "http://example.com/payments/invoice", http.MethodPost)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/payments/invoice", bytes.NewReader(body))
	req.Header.Set("Authorization", token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rr.Code)
	}
	var resp createInvoiceResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)

	ln.paid[resp.PaymentHash] = true
	payload, _ := json.Marshal(map[string]string{"payment_hash": resp.PaymentHash})
	req = httptest.NewRequest(http.MethodPost, "http://example.com/payments/webhook", bytes.NewReader(payload))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("webhook status = %d: %s", rr.Code, rr.Body.String())
	}

	token, _ = signedHeader(t, "http://example.com/payments/"+resp.PaymentID, http.MethodGet)
	req = httptest.NewRequest(http.MethodGet, "http://example.com/payments/"+resp.PaymentID, nil)
	req.Header.Set("Authorization", token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var payment database.Payment
	if err := json.Unmarshal(rr.Body.Bytes(), &payment); err != nil {
		t.Fatalf("decode payment: %v", err)
	}
	if payment.Status != "paid" {
		t.Errorf("status = %q, want paid", payment.Status)
	}
	if payment.SettledAt == nil {
		t.Errorf("settled_at not set")
	}
}

func TestHistoryReturnsOwnPaymentsOnly(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]interface{}{"amount_sats": 100})
	token, kp := signedHeader(t, "http://example.com/payments/invoice", http.MethodPost)
	req := httptest.NewRequest(http.MethodPost, "http://example.com/payments/invoice", bytes.NewReader(body))
	req.Header.Set("Authorization", token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rr.Code)
	}

	// a different key sees an empty history
	otherToken, _ := signedHeader(t, "http://example.com/payments/history", http.MethodGet)
	req = httptest.NewRequest(http.MethodGet, "http://example.com/payments/history", nil)
	req.Header.Set("Authorization", otherToken)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var list []database.Payment
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("foreign history len = %d, want 0", len(list))
	}

	// the merchant sees their invoice
	ownToken, err := signedHeaderFor(t, kp.SecretKey, "http://example.com/payments/history", http.MethodGet)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "http://example.com/payments/history", nil)
	req.Header.Set("Authorization", ownToken)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("own history len = %d, want 1", len(list))
	}
}

func TestHealthUnauthenticated(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "http://example.com/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
