package lightning

import (
	"strings"

	"github.com/fiatjaf/go-lnurl"
	decodepay "github.com/fiatjaf/ln-decodepay"
)

// URIPrefix is the handoff scheme for external wallets.
const URIPrefix = "lightning:"

// URI wraps a bolt11 payment request into the wallet handoff form used
// for QR payloads and direct navigation.
func URI(bolt11 string) string {
	return URIPrefix + bolt11
}

// StripURI removes a leading lightning: scheme from a scanned payload.
func StripURI(payload string) string {
	if strings.HasPrefix(strings.ToLower(payload), URIPrefix) {
		return payload[len(URIPrefix):]
	}
	return payload
}

// IsInvoice reports whether the payload looks like a bolt11 invoice.
func IsInvoice(payload string) bool {
	payload = strings.ToLower(StripURI(payload))
	return strings.HasPrefix(payload, "lnbc")
}

// IsLnurl reports whether the payload is a bech32 encoded lnurl.
func IsLnurl(payload string) bool {
	payload = strings.ToLower(StripURI(payload))
	if !strings.HasPrefix(payload, "lnurl1") {
		return false
	}
	_, err := lnurl.LNURLDecode(payload)
	return err == nil
}

// Invoice is the subset of a decoded bolt11 the client cares about.
type Invoice struct {
	AmountSats  int64
	Memo        string
	PaymentHash string
}

// DecodeInvoice decodes a bolt11 payment request.
func DecodeInvoice(bolt11 string) (Invoice, error) {
	inv, err := decodepay.Decodepay(StripURI(bolt11))
	if err != nil {
		return Invoice{}, err
	}
	return Invoice{
		AmountSats:  inv.MSatoshi / 1000,
		Memo:        inv.Description,
		PaymentHash: inv.PaymentHash,
	}, nil
}
