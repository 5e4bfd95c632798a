package pos

import (
	"context"
	"fmt"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/satspoint/SatsPoint/internal/errors"
	"github.com/satspoint/SatsPoint/internal/lightning"
	"github.com/satspoint/SatsPoint/internal/runtime"
)

type State string

const (
	StateInput              State = "input"
	StateAwaitingInvoice    State = "awaiting_invoice"
	StateAwaitingSettlement State = "awaiting_settlement"
	StateSettled            State = "settled"
	StateCancelled          State = "cancelled"
	StateTimedOut           State = "timed_out"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusExpired = "expired"
)

// amounts above 1000 BTC are taken as fat fingers and further digits ignored
const maxAmountSats = 100_000_000_000

type Invoice struct {
	PaymentID   string
	Bolt11      string
	PaymentHash string
}

type PaymentStatus struct {
	Status string
}

// Backend is the remote payment service as seen by one session. Both
// calls are authenticated per request by the implementation.
type Backend interface {
	CreateInvoice(amountSats int64, memo string) (Invoice, error)
	GetPayment(paymentID string) (PaymentStatus, error)
}

type Option func(*Session)

func WithPollInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

func WithPollDeadline(d time.Duration) Option {
	return func(s *Session) { s.deadline = d }
}

// WithNotify registers a hook invoked after every state transition.
func WithNotify(f func(State)) Option {
	return func(s *Session) { s.notify = f }
}

// Session drives one merchant collection from amount entry to terminal
// resolution:
//
//	Input -> AwaitingInvoice -> AwaitingSettlement -> Settled | Cancelled | TimedOut
//
// The amount is fixed once the session leaves Input, and the invoice is
// assigned exactly once. At most one poll task exists per session; any
// state other than AwaitingSettlement guarantees no task is running.
type Session struct {
	mu        sync.Mutex
	id        string
	state     State
	amount    int64
	memo      string
	invoice   Invoice
	createdAt time.Time
	lastErr   error
	pollSeq   uint64
	task      *runtime.PollTask
	taskStop  context.CancelFunc
	backend   Backend
	interval  time.Duration
	deadline  time.Duration
	notify    func(State)
}

func NewSession(backend Backend, option ...Option) *Session {
	s := &Session{
		id:        uuid.NewV4().String(),
		state:     StateInput,
		backend:   backend,
		interval:  2 * time.Second,
		deadline:  10 * time.Minute,
		createdAt: time.Now(),
	}
	for _, opt := range option {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Amount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amount
}

func (s *Session) Invoice() Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoice
}

// LastErr returns the error surfaced by the most recent failed charge.
func (s *Session) LastErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// AppendDigit appends d to the entered amount. Appending to zero
// replaces it, so "05" can never be produced. Ignored outside Input.
func (s *Session) AppendDigit(d int) {
	if d < 0 || d > 9 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInput {
		return
	}
	next := s.amount*10 + int64(d)
	if next > maxAmountSats {
		return
	}
	s.amount = next
}

// Backspace removes the last digit; a single digit amount becomes zero.
func (s *Session) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInput {
		return
	}
	s.amount /= 10
}

// Clear resets the entered amount to zero.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInput {
		return
	}
	s.amount = 0
}

// Charge fixes the amount, creates the invoice and starts the
// settlement poll. On creation failure the session returns to Input
// with the amount preserved so the user can retry.
func (s *Session) Charge(memo string) error {
	s.mu.Lock()
	if s.state != StateInput {
		s.mu.Unlock()
		return errors.Create(errors.ChargeStateError)
	}
	if s.amount <= 0 {
		s.mu.Unlock()
		return errors.Create(errors.InvalidAmountError)
	}
	amount := s.amount
	s.memo = memo
	s.state = StateAwaitingInvoice
	s.lastErr = nil
	s.mu.Unlock()
	s.notifyState(StateAwaitingInvoice)

	invoice, err := s.backend.CreateInvoice(amount, memo)
	if err != nil {
		surfaced := errors.New(errors.InvoiceCreationError, err)
		s.mu.Lock()
		s.state = StateInput // amount stays for the retry
		s.lastErr = surfaced
		s.mu.Unlock()
		s.notifyState(StateInput)
		return surfaced
	}

	if dec, err := lightning.DecodeInvoice(invoice.Bolt11); err == nil && dec.AmountSats != amount {
		log.Warnf("[pos] invoice %s encodes %d sats, requested %d", invoice.PaymentID, dec.AmountSats, amount)
	}

	s.mu.Lock()
	if s.invoice.PaymentID != "" {
		// the invoice is assigned exactly once
		s.mu.Unlock()
		return fmt.Errorf("session %s already holds invoice %s", s.id, s.invoice.PaymentID)
	}
	s.invoice = invoice
	s.state = StateAwaitingSettlement
	s.startPolling()
	s.mu.Unlock()
	s.notifyState(StateAwaitingSettlement)
	return nil
}

// startPolling is called with the lock held, after the invoice is fixed.
// The create call has completed by now, so no poll ever races an
// unconfirmed payment ID.
func (s *Session) startPolling() {
	ctx, cancel := context.WithTimeout(context.Background(), s.deadline)
	s.taskStop = cancel
	s.task = runtime.NewPollTask(ctx, "pos:"+s.id, runtime.WithInterval(s.interval))
	s.task.Do(s.pollOnce, s.onPollCancelled, s.onPollDeadline)
}

func (s *Session) pollOnce() {
	s.mu.Lock()
	if s.state != StateAwaitingSettlement {
		s.mu.Unlock()
		return
	}
	s.pollSeq++
	seq := s.pollSeq
	paymentID := s.invoice.PaymentID
	s.mu.Unlock()

	status, err := s.backend.GetPayment(paymentID)
	if err != nil {
		// transient poll failures never alter state
		log.Tracef("[pos] poll %s: %v", paymentID, err)
		return
	}
	if status.Status != StatusPaid {
		return
	}

	s.mu.Lock()
	if s.state != StateAwaitingSettlement || seq != s.pollSeq {
		// stale response observed after cancel/settle
		s.mu.Unlock()
		return
	}
	s.state = StateSettled
	task := s.task
	s.task = nil
	stop := s.taskStop
	s.taskStop = nil
	s.mu.Unlock()
	if task != nil {
		task.Cancel()
	}
	if stop != nil {
		stop()
	}
	log.Infof("[pos] payment %s settled", paymentID)
	s.notifyState(StateSettled)
}

func (s *Session) onPollCancelled() {
	// fires for every cancellation of the task; only an explicit Cancel
	// while still awaiting settlement means the user gave up
	s.mu.Lock()
	if s.state != StateAwaitingSettlement {
		s.mu.Unlock()
		return
	}
	s.state = StateCancelled
	s.task = nil
	s.taskStop = nil
	s.mu.Unlock()
	s.notifyState(StateCancelled)
}

func (s *Session) onPollDeadline() {
	s.mu.Lock()
	if s.state != StateAwaitingSettlement {
		s.mu.Unlock()
		return
	}
	s.state = StateTimedOut
	s.task = nil
	s.taskStop = nil
	s.mu.Unlock()
	log.Debugf("[pos] session %s timed out waiting for settlement", s.id)
	s.notifyState(StateTimedOut)
}

// Cancel stops polling and marks the session cancelled. Settlement may
// still be confirmed out of band through the payment history.
func (s *Session) Cancel() {
	s.mu.Lock()
	task := s.task
	s.mu.Unlock()
	if task != nil {
		task.Cancel()
		return
	}
	// no task running: cancel only makes sense while awaiting settlement
	s.onPollCancelled()
}

// Reset discards the transaction and returns the session to a fresh
// Input state with the amount cleared. Any running poll task is stopped
// first. The state flips to Input before the task is cancelled so the
// cancellation callback cannot surface a spurious Cancelled transition.
func (s *Session) Reset() {
	s.mu.Lock()
	task := s.task
	s.task = nil
	stop := s.taskStop
	s.taskStop = nil
	s.state = StateInput
	s.amount = 0
	s.memo = ""
	s.invoice = Invoice{}
	s.lastErr = nil
	s.pollSeq++
	s.createdAt = time.Now()
	s.mu.Unlock()
	if task != nil {
		task.Cancel()
	}
	if stop != nil {
		stop()
	}
	s.notifyState(StateInput)
}

func (s *Session) notifyState(state State) {
	if s.notify != nil {
		s.notify(state)
	}
}
