package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/satspoint/SatsPoint/internal/payments"
)

// PaymentHandlers exposes the payment service over HTTP.
type PaymentHandlers struct {
	service *payments.Service
}

func NewPaymentHandlers(service *payments.Service) *PaymentHandlers {
	return &PaymentHandlers{service: service}
}

type createInvoiceRequest struct {
	AmountSats int64  `json:"amount_sats"`
	Memo       string `json:"memo"`
}

type createInvoiceResponse struct {
	PaymentID   string `json:"payment_id"`
	Bolt11      string `json:"bolt11"`
	PaymentHash string `json:"payment_hash"`
}

func (h *PaymentHandlers) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	pubkey := PubkeyFromContext(r.Context())

	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AmountSats <= 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	result, err := h.service.CreateInvoice(&payments.CreateInvoiceInput{
		ReceiverPubkey: pubkey,
		AmountSats:     req.AmountSats,
		Memo:           req.Memo,
	})
	if err != nil {
		log.Errorf("[api] could not create invoice: %v", err)
		http.Error(w, "failed to create invoice", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	WriteResponse(w, createInvoiceResponse{
		PaymentID:   result.PaymentID,
		Bolt11:      result.Bolt11,
		PaymentHash: result.PaymentHash,
	})
}

func (h *PaymentHandlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "missing payment id", http.StatusBadRequest)
		return
	}

	payment, err := h.service.GetPayment(id)
	if err != nil {
		NotFoundHandler(w, fmt.Errorf("payment %s not found: %w", id, err))
		return
	}
	WriteResponse(w, payment)
}

func (h *PaymentHandlers) History(w http.ResponseWriter, r *http.Request) {
	pubkey := PubkeyFromContext(r.Context())

	list, err := h.service.ListPayments(pubkey, 50, 0)
	if err != nil {
		log.Errorf("[api] could not list payments: %v", err)
		http.Error(w, "failed to list payments", http.StatusInternalServerError)
		return
	}
	WriteResponse(w, list)
}

type webhookPayload struct {
	PaymentHash string `json:"payment_hash"`
}

// Webhook is called by the funding source when an invoice settles. It
// is unauthenticated, so the settlement is re-checked against the
// funding source before anything is marked paid.
func (h *PaymentHandlers) Webhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if payload.PaymentHash == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.service.HandleSettlement(payload.PaymentHash); err != nil {
		log.Errorf("[api] webhook processing failed: %v", err)
		http.Error(w, "webhook processing failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func Health(w http.ResponseWriter, r *http.Request) {
	WriteResponse(w, map[string]string{"status": "ok"})
}
