package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore stores session blobs encrypted with AES-GCM. The key is
// derived from a passphrase via PBKDF2 with a per-file random salt.
type EncryptedFileStore struct {
	dir        string
	passphrase []byte
	mu         sync.RWMutex
}

// encryptedFile is the on-disk envelope for an encrypted session
type encryptedFile struct {
	Salt      string    `json:"salt"`
	Encrypted string    `json:"encrypted"`
	Version   int       `json:"version"`
	Modified  time.Time `json:"modified"`
}

// NewEncryptedFileStore creates an encrypted session store rooted at dir
func NewEncryptedFileStore(dir, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase cannot be empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &EncryptedFileStore{dir: dir, passphrase: []byte(passphrase)}, nil
}

// Path returns the session file path for a platform
func (s *EncryptedFileStore) Path(platform string) string {
	return filepath.Join(s.dir, platform+"_session.enc")
}

// Save encrypts and writes the session blob for a platform
func (s *EncryptedFileStore) Save(platform string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key(s.passphrase, salt, iterations, keySize, sha256.New)
	ciphertext, err := encrypt(blob, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}

	envelope := encryptedFile{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(ciphertext),
		Version:   1,
		Modified:  time.Now(),
	}

	jsonData, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session file: %w", err)
	}

	path := s.Path(platform)
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tempFile, path)
}

// Load reads and decrypts the session blob for a platform
func (s *EncryptedFileStore) Load(platform string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jsonData, err := os.ReadFile(s.Path(platform))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var envelope encryptedFile
	if err := json.Unmarshal(jsonData, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(envelope.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session data: %w", err)
	}

	key := pbkdf2.Key(s.passphrase, salt, iterations, keySize, sha256.New)
	blob, err := decrypt(ciphertext, key)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session (wrong passphrase?): %w", err)
	}
	return blob, nil
}

// Exists checks whether an encrypted session exists for a platform
func (s *EncryptedFileStore) Exists(platform string) bool {
	_, err := os.Stat(s.Path(platform))
	return err == nil
}

// Clear removes the saved session for a platform
func (s *EncryptedFileStore) Clear(platform string) error {
	err := os.Remove(s.Path(platform))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// encrypt seals data with AES-GCM, prepending the nonce to the ciphertext
func encrypt(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, data, nil), nil
}

// decrypt opens data sealed by encrypt
func decrypt(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(data) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
