package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	credentialsDirPerm  = 0o700
	credentialsFilePerm = 0o600
)

// Credentials is the durable part of a session.
type Credentials struct {
	Username string    `yaml:"username,omitempty"`
	Token    string    `yaml:"token"`
	SavedAt  time.Time `yaml:"saved_at,omitempty"`
}

// Store persists credentials between runs. Load returns zero Credentials
// and no error when nothing is stored.
type Store interface {
	Load() (Credentials, error)
	Save(Credentials) error
	Clear() error
}

// FileStore keeps credentials in a YAML file readable only by the owner.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %w", ErrReadCredentials, err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("%w: %s: %w", ErrReadCredentials, s.path, err)
	}
	return creds, nil
}

func (s *FileStore) Save(creds Credentials) error {
	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteCredentials, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), credentialsDirPerm); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteCredentials, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, credentialsFilePerm); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteCredentials, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWriteCredentials, err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrWriteCredentials, err)
	}
	return nil
}

// MemoryStore keeps credentials for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

func (s *MemoryStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, nil
}

func (s *MemoryStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return nil
}
