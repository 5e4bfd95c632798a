package payments

import (
	"fmt"
	"time"

	"github.com/eko/gocache/store"
	gocache "github.com/patrickmn/go-cache"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/satspoint/SatsPoint/internal/database"
	"github.com/satspoint/SatsPoint/internal/lnbits"
	"github.com/satspoint/SatsPoint/internal/metrics"
)

// settled payments never change again, so they are safe to cache
var paymentCache = store.NewGoCache(gocache.New(5*time.Minute, 10*time.Minute), nil)

// LnbitsClient is the part of the funding source the service uses.
type LnbitsClient interface {
	CreateInvoice(params lnbits.InvoiceParams) (lnbits.BitInvoice, error)
	Payment(paymentHash string) (lnbits.PaymentStatus, error)
}

// SettlementNotifier hears about every payment the service marks paid.
type SettlementNotifier interface {
	NotifyPayment(paymentHash string, status string)
}

type Service struct {
	db        *gorm.DB
	ln        LnbitsClient
	publicURL string
	notifier  SettlementNotifier
}

func NewService(db *gorm.DB, ln LnbitsClient, publicURL string) *Service {
	return &Service{db: db, ln: ln, publicURL: publicURL}
}

// NotifyOnSettlement registers a notifier invoked once per settlement,
// whether the webhook or the stream observed it first.
func (s *Service) NotifyOnSettlement(n SettlementNotifier) {
	s.notifier = n
}

type CreateInvoiceInput struct {
	ReceiverPubkey string
	SenderPubkey   string
	AmountSats     int64
	Memo           string
}

type CreateInvoiceResult struct {
	PaymentID   string
	Bolt11      string
	PaymentHash string
}

func (s *Service) CreateInvoice(input *CreateInvoiceInput) (*CreateInvoiceResult, error) {
	resp, err := s.ln.CreateInvoice(lnbits.InvoiceParams{
		Out:     false,
		Amount:  input.AmountSats,
		Memo:    input.Memo,
		Unit:    "sat",
		Webhook: s.publicURL + "/payments/webhook",
	})
	if err != nil {
		return nil, fmt.Errorf("create lnbits invoice: %w", err)
	}

	paymentID := "pay_" + uuid.NewV4().String()
	payment := &database.Payment{
		ID:             paymentID,
		Bolt11:         resp.PaymentRequest,
		AmountSats:     input.AmountSats,
		Memo:           input.Memo,
		SenderPubkey:   input.SenderPubkey,
		ReceiverPubkey: input.ReceiverPubkey,
		PaymentHash:    resp.PaymentHash,
		Status:         "pending",
	}
	if err := database.CreatePayment(s.db, payment); err != nil {
		return nil, fmt.Errorf("store payment: %w", err)
	}

	metrics.InvoicesCreated.Inc()
	log.Infof("[payments] created %s for %s (%d sats)", paymentID, input.ReceiverPubkey, input.AmountSats)
	return &CreateInvoiceResult{
		PaymentID:   paymentID,
		Bolt11:      resp.PaymentRequest,
		PaymentHash: resp.PaymentHash,
	}, nil
}

// HandleSettlement marks the payment behind paymentHash as paid once
// the funding source confirms it. Both the webhook and the stream call
// in here; a payment already marked paid is left untouched.
func (s *Service) HandleSettlement(paymentHash string) error {
	status, err := s.ln.Payment(paymentHash)
	if err != nil {
		return fmt.Errorf("check payment: %w", err)
	}
	if !status.Paid {
		// not settled yet, the caller will hear about it again
		return nil
	}

	payment, tx := database.FindPaymentByHash(s.db, paymentHash)
	if tx.Error != nil {
		return fmt.Errorf("get payment by hash: %w", tx.Error)
	}
	if payment.Status == "paid" {
		return nil
	}

	if err := database.MarkPaymentPaid(s.db, payment.ID, time.Now()); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	metrics.PaymentsSettled.Inc()
	if s.notifier != nil {
		s.notifier.NotifyPayment(paymentHash, "paid")
	}
	log.Infof("[payments] %s settled (%d sats)", payment.ID, payment.AmountSats)
	return nil
}

func (s *Service) GetPayment(id string) (*database.Payment, error) {
	if cached, err := paymentCache.Get(id); err == nil {
		return cached.(*database.Payment), nil
	}
	payment, tx := database.FindPayment(s.db, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if payment.Status == "paid" || payment.Status == "expired" {
		if err := paymentCache.Set(id, payment, &store.Options{Expiration: 5 * time.Minute}); err != nil {
			log.Errorf("[payments] could not cache payment: %v", err)
		}
	}
	return payment, nil
}

func (s *Service) ListPayments(pubkey string, limit, offset int) ([]database.Payment, error) {
	return database.ListPaymentsByPubkey(s.db, pubkey, limit, offset)
}
