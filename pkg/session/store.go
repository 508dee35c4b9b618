// Package session persists per-platform browser session state. The blob a
// store holds is the serialized cookie/storage state exported by the
// automation driver; nothing in this package inspects it.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"viralreporter/pkg/config"
)

var (
	// ErrSessionNotFound indicates no session has been saved for the platform
	ErrSessionNotFound = errors.New("no saved session for platform")
)

// Store is the interface for persisting per-platform session blobs
type Store interface {
	// Save writes the session blob for a platform
	Save(platform string, blob []byte) error

	// Load reads the session blob for a platform
	Load(platform string) ([]byte, error)

	// Exists checks whether a session has been saved for a platform
	Exists(platform string) bool

	// Clear removes the saved session for a platform
	Clear(platform string) error

	// Path returns the file path backing the platform's session
	Path(platform string) string
}

// NewStore creates a session store from configuration, encrypted when
// configured to be.
func NewStore(cfg *config.SessionConfig) (Store, error) {
	if cfg.Encrypt {
		passphrase := os.Getenv(cfg.PassphraseEnv)
		if passphrase == "" {
			return nil, fmt.Errorf("session encryption enabled but %s is not set", cfg.PassphraseEnv)
		}
		return NewEncryptedFileStore(cfg.Directory, passphrase)
	}
	return NewFileStore(cfg.Directory)
}

// FileStore stores session blobs as plain files, one per platform
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates a file-based session store rooted at dir
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the session file path for a platform
func (s *FileStore) Path(platform string) string {
	return filepath.Join(s.dir, platform+"_session.json")
}

// Save writes the session blob for a platform
func (s *FileStore) Save(platform string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(platform)

	// Write to temporary file first
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, blob, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tempFile, path)
}

// Load reads the session blob for a platform
func (s *FileStore) Load(platform string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, err := os.ReadFile(s.Path(platform))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return blob, nil
}

// Exists checks whether a session file exists for a platform
func (s *FileStore) Exists(platform string) bool {
	_, err := os.Stat(s.Path(platform))
	return err == nil
}

// Clear removes the saved session for a platform
func (s *FileStore) Clear(platform string) error {
	err := os.Remove(s.Path(platform))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
