package auth

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/satspoint/SatsPoint/internal/errors"
	"github.com/satspoint/SatsPoint/internal/identity"
	"github.com/satspoint/SatsPoint/internal/keys"
)

// KindHTTPAuth is the NIP-98 event kind for HTTP authorization.
const KindHTTPAuth = 27235

// Scheme is the Authorization scheme prefix.
const Scheme = "Nostr "

// Token builds the Authorization value for exactly one request: a kind
// 27235 event carrying the request URL and method, signed with the
// secret key, serialized and base64 encoded. Tokens are stamped with the
// current time and are never cached; the server binds them to a narrow
// clock-skew window around created_at.
//
// The method tag is passed through exactly as supplied. The server
// matches it literally against the request, so callers use the
// http.Method* constants.
func Token(kp keys.Keypair, url, method string) (string, error) {
	ev := nostr.Event{
		PubKey:    kp.PublicKey,
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      KindHTTPAuth,
		Tags: nostr.Tags{
			{"u", url},
			{"method", method},
		},
		Content: "",
	}
	// Sign sets the event ID and signature
	if err := ev.Sign(kp.SecretKey); err != nil {
		return "", errors.New(errors.InvalidKeyMaterialError, err)
	}
	eventJSON, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	return Scheme + base64.StdEncoding.EncodeToString(eventJSON), nil
}

// Authenticator mints tokens for the identity currently held by the
// store. It fails with NotAuthenticated when logged out instead of ever
// proceeding anonymously.
type Authenticator struct {
	Store *identity.Store
}

func (a Authenticator) Token(url, method string) (string, error) {
	kp, err := a.Store.Keypair()
	if err != nil {
		return "", err
	}
	return Token(kp, url, method)
}
