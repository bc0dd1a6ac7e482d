package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// State is the document persisted across runs: the credential and a
// denormalized identity snapshot. Written on every login/logout transition,
// read once at startup.
type State struct {
	Token    string   `json:"token"`
	Identity Identity `json:"user"`
}

// CredentialStore persists the session state.
type CredentialStore interface {
	Load() (State, bool, error)
	Save(State) error
	Clear() error
}

// FileStore keeps the state in a single JSON file. When constructed with a
// 32-byte secret the document is sealed with ChaCha20-Poly1305; a state file
// that cannot be read or opened is treated as absent, never as an error the
// caller must handle.
type FileStore struct {
	path   string
	secret []byte

	mu sync.Mutex
}

// NewFileStore creates a store at path. secret must be empty or decode to
// exactly 32 bytes (raw or hex).
func NewFileStore(path, secret string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("session state file path is required")
	}

	s := &FileStore{path: path}
	if secret != "" {
		key, err := decodeKey(secret)
		if err != nil {
			return nil, err
		}
		s.secret = key
	}
	return s, nil
}

func decodeKey(secret string) ([]byte, error) {
	if len(secret) == chacha20poly1305.KeySize {
		return []byte(secret), nil
	}
	key, err := hex.DecodeString(secret)
	if err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}
	return nil, fmt.Errorf("state secret must be %d bytes (raw or hex)", chacha20poly1305.KeySize)
}

// Load reads the persisted state. The second return is false when no usable
// state exists (missing file, corrupt content, wrong key).
func (s *FileStore) Load() (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("read session state: %w", err)
	}
	if len(b) == 0 {
		return State{}, false, nil
	}

	if s.secret != nil {
		b, err = s.open(b)
		if err != nil {
			// Undecryptable state fails closed: behave as logged out.
			return State{}, false, nil
		}
	}

	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return State{}, false, nil
	}
	if st.Token == "" {
		return State{}, false, nil
	}
	return st, true, nil
}

func (s *FileStore) Save(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	if s.secret != nil {
		b, err = s.seal(b)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("mkdir session state dir: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session state: %w", err)
	}
	return nil
}

func (s *FileStore) seal(plain []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.secret)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

func (s *FileStore) open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.secret)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, errors.New("sealed state too short")
	}
	nonce, cipher := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, cipher, nil)
}
