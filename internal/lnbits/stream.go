package lnbits

import (
	"github.com/r3labs/sse"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/satspoint/SatsPoint/internal/network"
)

// Stream subscribes to the lnbits payment event stream and reports
// settled incoming payments. It backs up the webhook: whichever source
// observes settlement first wins, the second is a no-op.
type Stream struct {
	client *sse.Client
	onPaid func(paymentHash string)
}

func NewStream(url, invoiceKey string, onPaid func(paymentHash string)) *Stream {
	client := sse.NewClient(url + "/api/v1/payments/sse")
	client.Headers = map[string]string{"X-Api-Key": invoiceKey}
	if conn, err := network.GetClient(); err == nil {
		// sse reconnects internally, the long poll must not time out
		conn.Timeout = 0
		client.Connection = conn
	}
	return &Stream{client: client, onPaid: onPaid}
}

// Start consumes the stream on its own goroutine until the process
// exits. Subscribe reconnects with backoff on connection loss.
func (s *Stream) Start() {
	go func() {
		err := s.client.Subscribe("", func(msg *sse.Event) {
			if len(msg.Data) == 0 {
				return
			}
			s.handle(msg.Data)
		})
		if err != nil {
			log.Errorf("[lnbits] payment stream closed: %v", err)
		}
	}()
	log.Infof("[lnbits] subscribed to payment stream")
}

func (s *Stream) handle(data []byte) {
	payment := gjson.GetBytes(data, "payment")
	if !payment.Exists() {
		payment = gjson.ParseBytes(data)
	}
	hash := payment.Get("payment_hash").String()
	if hash == "" {
		return
	}
	// outgoing payments carry a negative amount
	if payment.Get("amount").Int() <= 0 || payment.Get("pending").Bool() {
		return
	}
	log.Debugf("[lnbits] stream observed settled payment %s", hash)
	s.onPaid(hash)
}
