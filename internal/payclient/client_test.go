package payclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/satspoint/SatsPoint/internal/payclient"
)

// staticTokens mints a distinct token per call so the test can assert
// one token per request.
type staticTokens struct {
	calls   int
	lastURL string
}

func (s *staticTokens) Token(url, method string) (string, error) {
	s.calls++
	s.lastURL = url
	return "Nostr dG9rZW4=", nil
}

func TestCreateInvoiceSendsAuthorizedRequest(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payments/invoice" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			AmountSats int64  `json:"amount_sats"`
			Memo       string `json:"memo"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotBody = body.Memo
		if body.AmountSats != 1000 {
			t.Errorf("amount_sats = %d, want 1000", body.AmountSats)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"payment_id":   "pay_123",
			"bolt11":       "lnbc10u1pexample",
			"payment_hash": "hash_123",
		})
	}))
	defer srv.Close()

	tokens := &staticTokens{}
	client := payclient.NewClient(srv.URL, tokens)

	invoice, err := client.CreateInvoice(1000, "coffee")
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if invoice.PaymentID != "pay_123" || invoice.Bolt11 != "lnbc10u1pexample" {
		t.Errorf("invoice = %+v", invoice)
	}
	if !strings.HasPrefix(gotAuth, "Nostr ") {
		t.Errorf("Authorization = %q, want Nostr scheme", gotAuth)
	}
	if gotBody != "coffee" {
		t.Errorf("memo = %q, want coffee", gotBody)
	}
	if tokens.calls != 1 {
		t.Errorf("token calls = %d, want 1", tokens.calls)
	}
	if tokens.lastURL != srv.URL+"/payments/invoice" {
		t.Errorf("token bound to %q, want the request URL", tokens.lastURL)
	}
}

func TestEveryCallMintsAFreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"Status": "pending"})
	}))
	defer srv.Close()

	tokens := &staticTokens{}
	client := payclient.NewClient(srv.URL, tokens)

	for i := 0; i < 3; i++ {
		if _, err := client.GetPayment("pay_1"); err != nil {
			t.Fatalf("GetPayment: %v", err)
		}
	}
	if tokens.calls != 3 {
		t.Errorf("token calls = %d, want one per poll", tokens.calls)
	}
}

func TestErrorStatusIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "wallet unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := payclient.NewClient(srv.URL, &staticTokens{})
	if _, err := client.CreateInvoice(10, ""); err == nil {
		t.Fatal("CreateInvoice swallowed a 502")
	}
}

func TestHealthIsUnauthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("health check sent an Authorization header")
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	tokens := &staticTokens{}
	client := payclient.NewClient(srv.URL, tokens)
	status, err := client.Health()
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("status = %q, want ok", status.Status)
	}
	if tokens.calls != 0 {
		t.Error("health check minted a token")
	}
}
