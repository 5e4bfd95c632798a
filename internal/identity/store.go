package identity

import (
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/buntdb"

	"github.com/satspoint/SatsPoint/internal/errors"
	"github.com/satspoint/SatsPoint/internal/keys"
)

// secretKeyKey is the single persisted field: the hex encoded secret key,
// scoped to the session database. The public key is re-derived on restore.
const secretKeyKey = "identity:secret-key"

type State int

const (
	LoggedOut State = iota
	LoggedIn
)

// Session is the current identity. Keypair is only meaningful when
// State == LoggedIn.
type Session struct {
	State   State
	Keypair keys.Keypair
}

// Store owns the single active identity of the client. All components
// read the identity through Current; mutation happens only through
// Login and Logout.
type Store struct {
	mu      sync.RWMutex
	session Session
	db      *buntdb.DB
}

// NewStore opens the session database at path and restores any persisted
// identity. A corrupt persisted value is purged and the store starts
// LoggedOut; restore never fails the caller.
func NewStore(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	s.restore()
	return s, nil
}

func (s *Store) restore() {
	var stored string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(secretKeyKey)
		if err != nil {
			return err
		}
		stored = v
		return nil
	})
	if err != nil {
		// nothing persisted, start logged out
		return
	}

	kp, err := keys.FromHex(stored)
	if err != nil {
		log.Warnf("[identity] purging corrupt persisted secret key: %v", errors.Create(errors.PersistedStateCorruptError))
		s.purge()
		return
	}
	s.session = Session{State: LoggedIn, Keypair: kp}
	log.Debugf("[identity] restored session for %s", kp.PublicKey)
}

// Login validates the supplied secret key (hex or nsec), derives the
// public key and persists the hex secret, overwriting any prior value.
// A failed login leaves an existing session untouched.
func (s *Store) Login(secretKey string) error {
	kp, err := keys.FromInput(secretKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(secretKeyKey, kp.SecretKey, nil)
		return err
	})
	if err != nil {
		return err
	}
	s.session = Session{State: LoggedIn, Keypair: kp}
	log.Infof("[identity] logged in as %s", kp.PublicKey)
	return nil
}

// Logout drops the identity and purges the persisted secret key.
// Safe to call when already logged out.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{State: LoggedOut}
	s.purge()
	log.Debugf("[identity] logged out")
}

func (s *Store) purge() {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(secretKeyKey)
		if err == buntdb.ErrNotFound {
			return nil
		}
		return err
	})
	if err != nil {
		log.Errorf("[identity] could not purge session db: %v", err)
	}
}

// Current returns the identity as of now. Never blocks on I/O.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Keypair returns the active keypair or NotAuthenticated when logged out.
func (s *Store) Keypair() (keys.Keypair, error) {
	session := s.Current()
	if session.State != LoggedIn {
		return keys.Keypair{}, errors.Create(errors.NotAuthenticatedError)
	}
	return session.Keypair, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
