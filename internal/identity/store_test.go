package identity_test

import (
	"path/filepath"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/tidwall/buntdb"

	"github.com/satspoint/SatsPoint/internal/identity"
)

func newStore(t *testing.T) (*identity.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := identity.NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestLoginDerivesPublicKey(t *testing.T) {
	s, _ := newStore(t)
	sk := nostr.GeneratePrivateKey()

	if err := s.Login(sk); err != nil {
		t.Fatalf("Login: %v", err)
	}

	session := s.Current()
	if session.State != identity.LoggedIn {
		t.Fatal("state != LoggedIn after login")
	}
	want, _ := nostr.GetPublicKey(sk)
	if session.Keypair.PublicKey != want {
		t.Errorf("PublicKey = %q, want %q", session.Keypair.PublicKey, want)
	}
}

func TestFailedLoginKeepsExistingSession(t *testing.T) {
	s, _ := newStore(t)
	sk := nostr.GeneratePrivateKey()
	if err := s.Login(sk); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := s.Login("not-a-key"); err == nil {
		t.Fatal("Login accepted a malformed key")
	}

	session := s.Current()
	if session.State != identity.LoggedIn {
		t.Error("failed login logged the user out")
	}
	if session.Keypair.SecretKey != sk {
		t.Error("failed login replaced the active keypair")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	s, _ := newStore(t)
	if err := s.Login(nostr.GeneratePrivateKey()); err != nil {
		t.Fatalf("Login: %v", err)
	}

	s.Logout()
	s.Logout()

	if s.Current().State != identity.LoggedOut {
		t.Error("state != LoggedOut after logout")
	}
	if _, err := s.Keypair(); err == nil {
		t.Error("Keypair returned a value while logged out")
	}
}

func TestRestorePersistedSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	sk := nostr.GeneratePrivateKey()

	s, err := identity.NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Login(sk); err != nil {
		t.Fatalf("Login: %v", err)
	}
	s.Close()

	restored, err := identity.NewStore(path)
	if err != nil {
		t.Fatalf("NewStore (restore): %v", err)
	}
	defer restored.Close()

	session := restored.Current()
	if session.State != identity.LoggedIn {
		t.Fatal("restored state != LoggedIn")
	}
	if session.Keypair.SecretKey != sk {
		t.Errorf("restored SecretKey = %q, want %q", session.Keypair.SecretKey, sk)
	}
}

func TestRestorePurgesCorruptValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	// plant a malformed secret key
	db, err := buntdb.Open(path)
	if err != nil {
		t.Fatalf("buntdb.Open: %v", err)
	}
	err = db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set("identity:secret-key", "corrupted!", nil)
		return err
	})
	if err != nil {
		t.Fatalf("seed corrupt value: %v", err)
	}
	db.Close()

	s, err := identity.NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if s.Current().State != identity.LoggedOut {
		t.Error("state != LoggedOut after restoring corrupt value")
	}
	s.Close()

	// the corrupt value must be gone
	db, err = buntdb.Open(path)
	if err != nil {
		t.Fatalf("buntdb.Open (verify): %v", err)
	}
	defer db.Close()
	err = db.View(func(tx *buntdb.Tx) error {
		_, err := tx.Get("identity:secret-key")
		return err
	})
	if err != buntdb.ErrNotFound {
		t.Errorf("corrupt value still persisted, err = %v", err)
	}
}
