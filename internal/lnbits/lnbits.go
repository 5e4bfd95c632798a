package lnbits

import (
	"github.com/imroc/req"
)

// NewClient returns a new lnbits api client. The invoice key is enough
// for everything this service does: creating invoices and checking
// incoming payments.
func NewClient(key, url string) *Client {
	return &Client{
		url: url,
		header: req.Header{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"X-Api-Key":    key,
		},
	}
}

type Client struct {
	url    string
	header req.Header
}

type Error struct {
	Detail string `json:"detail"`
}

func (e Error) Error() string {
	return e.Detail
}

type InvoiceParams struct {
	Out     bool   `json:"out"`
	Amount  int64  `json:"amount"`
	Memo    string `json:"memo,omitempty"`
	Unit    string `json:"unit,omitempty"`
	Webhook string `json:"webhook,omitempty"`
}

type BitInvoice struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"`
	CheckingID     string `json:"checking_id"`
}

type PaymentStatus struct {
	Paid     bool   `json:"paid"`
	Pending  bool   `json:"pending"`
	Preimage string `json:"preimage"`
}

type Wallet struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// CreateInvoice creates an incoming invoice on the funding wallet.
func (c *Client) CreateInvoice(params InvoiceParams) (lntx BitInvoice, err error) {
	resp, err := req.Post(c.url+"/api/v1/payments", c.header, req.BodyJSON(&params))
	if err != nil {
		return
	}
	if resp.Response().StatusCode >= 300 {
		var reqErr Error
		resp.ToJSON(&reqErr)
		err = reqErr
		return
	}
	err = resp.ToJSON(&lntx)
	return
}

// Payment returns the settlement status for a payment hash.
func (c *Client) Payment(paymentHash string) (status PaymentStatus, err error) {
	resp, err := req.Get(c.url+"/api/v1/payments/"+paymentHash, c.header)
	if err != nil {
		return
	}
	if resp.Response().StatusCode >= 300 {
		var reqErr Error
		resp.ToJSON(&reqErr)
		err = reqErr
		return
	}
	err = resp.ToJSON(&status)
	return
}

// Info returns the funding wallet.
func (c *Client) Info() (wallet Wallet, err error) {
	resp, err := req.Get(c.url+"/api/v1/wallet", c.header)
	if err != nil {
		return
	}
	if resp.Response().StatusCode >= 300 {
		var reqErr Error
		resp.ToJSON(&reqErr)
		err = reqErr
		return
	}
	err = resp.ToJSON(&wallet)
	return
}
