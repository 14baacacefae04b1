// Package filestore persists the local session as a JSON file in the data folder.
//
// The file mirrors the browser storage keys the portal has always used (token,
// session_code, user, session_expiry). When a passphrase is configured the document is
// sealed with NaCl secretbox under a key derived from the passphrase with HKDF-SHA256.
package filestore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	portalerrors "github.com/studyhub/portal/internal/errors"
	"github.com/studyhub/portal/internal/utils"
	"github.com/studyhub/portal/sessions"
	"github.com/studyhub/portal/users"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
	saltSize  = 16
	hkdfInfo  = "studyhub-session-store"

	fileMode = 0o600
	dirMode  = 0o700
)

var _ sessions.Repo = (*Store)(nil)

// document is the on-disk layout of an unsealed session
type document struct {
	Token         string      `json:"token,omitempty"`
	SessionCode   string      `json:"session_code,omitempty"`
	User          *users.User `json:"user,omitempty"`
	SessionExpiry *time.Time  `json:"session_expiry,omitempty"`
}

// envelope wraps a sealed document
type envelope struct {
	Sealed bool   `json:"sealed"`
	Salt   []byte `json:"salt"`
	Nonce  []byte `json:"nonce"`
	Box    []byte `json:"box"`
}

// Store is a file-backed sessions.Repo
type Store struct {
	path       string
	passphrase []byte
	lock       sync.Mutex
}

// New returns a store writing to path. An empty passphrase stores plain JSON.
func New(path, passphrase string) *Store {
	return &Store{path: path, passphrase: []byte(passphrase)}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() (*sessions.Session, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, sessions.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[filestore.Load] ReadFile")
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(portalerrors.ErrStoreCorrupted, err.Error())
	}
	// A plain file written before a passphrase was configured is still readable; the
	// next Save seals it.
	if env.Sealed {
		if data, err = s.open(env); err != nil {
			return nil, err
		}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(portalerrors.ErrStoreCorrupted, err.Error())
	}
	if doc.Token == "" && doc.SessionCode == "" {
		return nil, sessions.ErrNotFound
	}

	session := &sessions.Session{
		Token:       doc.Token,
		SessionCode: doc.SessionCode,
		User:        doc.User,
		Expiry:      utils.TimeOrZero(doc.SessionExpiry),
	}
	return session, nil
}

func (s *Store) Save(session *sessions.Session) error {
	if session == nil {
		return errors.New("[filestore.Save] session is nil")
	}

	doc := document{
		Token:         session.Token,
		SessionCode:   session.SessionCode,
		User:          session.User,
		SessionExpiry: utils.OptionalTime(session.Expiry),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "[filestore.Save] Marshal")
	}
	if len(s.passphrase) > 0 {
		if data, err = s.seal(data); err != nil {
			return err
		}
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	return writeAtomic(s.path, data)
}

// Clear removes the session file; a missing file is already clear
func (s *Store) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[filestore.Clear] Remove")
	}
	return nil
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.Wrap(err, "[filestore.seal] salt")
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "[filestore.seal] nonce")
	}
	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	box := secretbox.Seal(nil, plain, &nonce, key)
	return json.Marshal(envelope{Sealed: true, Salt: salt, Nonce: nonce[:], Box: box})
}

func (s *Store) open(env envelope) ([]byte, error) {
	if len(s.passphrase) == 0 || len(env.Nonce) != nonceSize {
		return nil, portalerrors.ErrStoreSealed
	}
	key, err := s.deriveKey(env.Salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	copy(nonce[:], env.Nonce)
	plain, ok := secretbox.Open(nil, env.Box, &nonce, key)
	if !ok {
		return nil, portalerrors.ErrStoreSealed
	}
	return plain, nil
}

func (s *Store) deriveKey(salt []byte) (*[keySize]byte, error) {
	var key [keySize]byte
	h := hkdf.New(sha256.New, s.passphrase, salt, []byte(hkdfInfo))
	if _, err := io.ReadFull(h, key[:]); err != nil {
		return nil, errors.Wrap(err, "[filestore.deriveKey] hkdf")
	}
	return &key, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return errors.Wrap(err, "[filestore.writeAtomic] MkdirAll")
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Wrap(err, "[filestore.writeAtomic] CreateTemp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filestore.writeAtomic] Write")
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filestore.writeAtomic] Chmod")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[filestore.writeAtomic] Close")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "[filestore.writeAtomic] Rename")
}
