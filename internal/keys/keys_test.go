package keys_test

import (
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"

	"github.com/satspoint/SatsPoint/internal/keys"
)

func TestGenerate(t *testing.T) {
	kp := keys.Generate()
	if !keys.IsValidSecretHex(kp.SecretKey) {
		t.Errorf("SecretKey = %q, not 64 lowercase hex chars", kp.SecretKey)
	}
	if len(kp.PublicKey) != 64 {
		t.Errorf("PublicKey length = %d, want 64", len(kp.PublicKey))
	}
}

func TestFromHexDerivationIsStable(t *testing.T) {
	sk := nostr.GeneratePrivateKey()

	kp1, err := keys.FromHex(sk)
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	kp2, err := keys.FromHex(sk)
	if err != nil {
		t.Fatalf("FromHex second call: %v", err)
	}
	if kp1.PublicKey != kp2.PublicKey {
		t.Errorf("derivation not stable: %q != %q", kp1.PublicKey, kp2.PublicKey)
	}

	want, _ := nostr.GetPublicKey(sk)
	if kp1.PublicKey != want {
		t.Errorf("PublicKey = %q, want %q", kp1.PublicKey, want)
	}
}

func TestFromHexRejectsMalformedInput(t *testing.T) {
	valid := nostr.GeneratePrivateKey()

	cases := []struct {
		name  string
		input string
	}{
		{"63 chars", valid[:63]},
		{"65 chars", valid + "a"},
		{"uppercase", strings.ToUpper(valid)},
		{"non-hex char", valid[:63] + "g"},
		{"empty", ""},
		{"whitespace", valid[:63] + " "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := keys.FromHex(tc.input); err == nil {
				t.Errorf("FromHex(%q) accepted malformed input", tc.input)
			}
		})
	}
}

func TestFromInputAcceptsNsec(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	nsec, err := nip19.EncodePrivateKey(sk)
	if err != nil {
		t.Fatalf("EncodePrivateKey: %v", err)
	}

	kp, err := keys.FromInput(nsec)
	if err != nil {
		t.Fatalf("FromInput(nsec): %v", err)
	}
	if kp.SecretKey != sk {
		t.Errorf("SecretKey = %q, want %q", kp.SecretKey, sk)
	}
}

func TestFromInputRejectsNpub(t *testing.T) {
	kp := keys.Generate()
	if _, err := keys.FromInput(kp.Npub()); err == nil {
		t.Error("FromInput accepted an npub as secret key")
	}
}
