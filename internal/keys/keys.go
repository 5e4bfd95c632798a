package keys

import (
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"

	"github.com/satspoint/SatsPoint/internal/errors"
)

// Keypair holds a nostr secret key and the public key derived from it,
// both as 64 character lowercase hex. A Keypair is only ever constructed
// through Generate, FromHex or FromInput, so the two halves never get
// out of sync.
type Keypair struct {
	SecretKey string
	PublicKey string
}

// Generate creates a fresh random keypair.
func Generate() Keypair {
	sk := nostr.GeneratePrivateKey()
	pk, err := nostr.GetPublicKey(sk)
	if err != nil {
		// unreachable for a key we just generated
		panic(fmt.Errorf("derive public key: %w", err))
	}
	return Keypair{SecretKey: sk, PublicKey: pk}
}

// FromHex builds a keypair from a user supplied secret key. The input must
// be exactly 64 lowercase hex characters.
func FromHex(secretHex string) (Keypair, error) {
	if !IsValidSecretHex(secretHex) {
		return Keypair{}, errors.Create(errors.InvalidKeyFormatError)
	}
	pk, err := nostr.GetPublicKey(secretHex)
	if err != nil {
		return Keypair{}, errors.New(errors.InvalidKeyMaterialError, err)
	}
	return Keypair{SecretKey: secretHex, PublicKey: pk}, nil
}

// FromInput accepts either a hex secret key or a bech32 nsec and converts
// the latter to hex before validation.
func FromInput(input string) (Keypair, error) {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "nsec") {
		prefix, sk, err := nip19.Decode(input)
		if err != nil || prefix != "nsec" {
			return Keypair{}, errors.Create(errors.InvalidKeyFormatError)
		}
		return FromHex(sk.(string))
	}
	return FromHex(input)
}

// IsValidSecretHex reports whether s has the exact shape of a persisted
// secret key: 64 lowercase hex characters.
func IsValidSecretHex(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Npub returns the bech32 form of the public key for display.
func (kp Keypair) Npub() string {
	npub, err := nip19.EncodePublicKey(kp.PublicKey)
	if err != nil {
		return kp.PublicKey
	}
	return npub
}
