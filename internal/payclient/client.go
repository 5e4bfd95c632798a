package payclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/imroc/req"
	log "github.com/sirupsen/logrus"

	"github.com/satspoint/SatsPoint/internal/pos"
)

// TokenSource mints one Authorization value per outgoing request.
type TokenSource interface {
	Token(url, method string) (string, error)
}

// Client talks to the payment service. Every authenticated call fetches
// a fresh NIP-98 token bound to the exact URL and method it is about to
// use; tokens are never reused between calls.
type Client struct {
	base string
	auth TokenSource
}

func NewClient(base string, auth TokenSource) *Client {
	return &Client{base: base, auth: auth}
}

type CreateInvoiceRequest struct {
	AmountSats int64  `json:"amount_sats"`
	Memo       string `json:"memo"`
}

type CreateInvoiceResponse struct {
	PaymentID   string `json:"payment_id"`
	Bolt11      string `json:"bolt11"`
	PaymentHash string `json:"payment_hash"`
}

// Payment mirrors the service's payment record.
type Payment struct {
	ID             string
	Bolt11         string
	AmountSats     int64
	Memo           string
	SenderPubkey   string
	ReceiverPubkey string
	PaymentHash    string
	Status         string
	CreatedAt      time.Time
	SettledAt      *time.Time
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (c *Client) header(url, method string) (req.Header, error) {
	token, err := c.auth.Token(url, method)
	if err != nil {
		return nil, err
	}
	return req.Header{
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"Authorization": token,
	}, nil
}

func (c *Client) CreateInvoice(amountSats int64, memo string) (invoice CreateInvoiceResponse, err error) {
	url := c.base + "/payments/invoice"
	header, err := c.header(url, http.MethodPost)
	if err != nil {
		return
	}
	resp, err := req.Post(url, header, req.BodyJSON(&CreateInvoiceRequest{AmountSats: amountSats, Memo: memo}))
	if err != nil {
		return
	}
	if resp.Response().StatusCode >= 300 {
		err = fmt.Errorf("create invoice: %s (%d)", resp.String(), resp.Response().StatusCode)
		return
	}
	err = resp.ToJSON(&invoice)
	return
}

func (c *Client) GetPayment(paymentID string) (payment Payment, err error) {
	url := c.base + "/payments/" + paymentID
	header, err := c.header(url, http.MethodGet)
	if err != nil {
		return
	}
	resp, err := req.Get(url, header)
	if err != nil {
		return
	}
	if resp.Response().StatusCode >= 300 {
		err = fmt.Errorf("get payment: %s (%d)", resp.String(), resp.Response().StatusCode)
		return
	}
	err = resp.ToJSON(&payment)
	return
}

func (c *Client) History() (payments []Payment, err error) {
	url := c.base + "/payments/history"
	header, err := c.header(url, http.MethodGet)
	if err != nil {
		return
	}
	resp, err := req.Get(url, header)
	if err != nil {
		return
	}
	if resp.Response().StatusCode >= 300 {
		err = fmt.Errorf("payment history: %s (%d)", resp.String(), resp.Response().StatusCode)
		return
	}
	err = resp.ToJSON(&payments)
	return
}

// Health is the only unauthenticated call.
func (c *Client) Health() (status HealthResponse, err error) {
	resp, err := req.Get(c.base + "/health")
	if err != nil {
		return
	}
	if resp.Response().StatusCode >= 300 {
		err = fmt.Errorf("health: status %d", resp.Response().StatusCode)
		return
	}
	err = resp.ToJSON(&status)
	return
}

// POSBackend adapts the client to the invoice session's view of the
// payment service.
type POSBackend struct {
	Client *Client
}

func (b POSBackend) CreateInvoice(amountSats int64, memo string) (pos.Invoice, error) {
	resp, err := b.Client.CreateInvoice(amountSats, memo)
	if err != nil {
		log.Debugf("[payclient] create invoice failed: %v", err)
		return pos.Invoice{}, err
	}
	return pos.Invoice{
		PaymentID:   resp.PaymentID,
		Bolt11:      resp.Bolt11,
		PaymentHash: resp.PaymentHash,
	}, nil
}

func (b POSBackend) GetPayment(paymentID string) (pos.PaymentStatus, error) {
	payment, err := b.Client.GetPayment(paymentID)
	if err != nil {
		return pos.PaymentStatus{}, err
	}
	return pos.PaymentStatus{Status: payment.Status}, nil
}
