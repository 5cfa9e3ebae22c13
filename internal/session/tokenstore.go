package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore is one storage tier for the auth token and the remembered
// login email. Two tiers exist: durable (survives restarts, used with
// "remember me") and ephemeral (lost when the process exits).
type TokenStore interface {
	SaveToken(token string) error
	LoadToken() (string, error)
	ClearToken() error
	SaveEmail(email string) error
	LoadEmail() (string, error)
}

// MemStore is the ephemeral tier.
type MemStore struct {
	mu    sync.Mutex
	token string
	email string
}

func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemStore) LoadToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemStore) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *MemStore) SaveEmail(email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.email = email
	return nil
}

func (m *MemStore) LoadEmail() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.email, nil
}

// FileStore is the durable tier: a JSON state file under the user's
// config directory, written with owner-only permissions.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type fileState struct {
	Token string `json:"token,omitempty"`
	Email string `json:"email,omitempty"`
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

// DefaultStatePath resolves the durable state file location under the
// user config dir.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "banhangso", "state.json"), nil
}

func (f *FileStore) load() (fileState, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileState{}, nil
	}
	if err != nil {
		return fileState{}, fmt.Errorf("read state file: %w", err)
	}
	var st fileState
	if err := json.Unmarshal(data, &st); err != nil {
		// A corrupt state file is treated as empty rather than locking
		// the user out of login.
		return fileState{}, nil
	}
	return st, nil
}

func (f *FileStore) save(st fileState) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

func (f *FileStore) SaveToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return err
	}
	st.Token = token
	return f.save(st)
}

func (f *FileStore) LoadToken() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return "", err
	}
	return st.Token, nil
}

func (f *FileStore) ClearToken() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return err
	}
	st.Token = ""
	return f.save(st)
}

func (f *FileStore) SaveEmail(email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return err
	}
	st.Email = email
	return f.save(st)
}

func (f *FileStore) LoadEmail() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return "", err
	}
	return st.Email, nil
}
