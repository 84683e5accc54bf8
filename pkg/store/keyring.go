package store

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// ServiceName identifies gocalib entries in the system keyring
const ServiceName = "gocalib"

// KeyringStore keeps values in the system keyring
// (Keychain on macOS, Credential Manager on Windows, Secret Service on Linux)
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keyring-backed store
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: ServiceName}
}

func (s *KeyringStore) Set(key string, value []byte) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if err := keyring.Set(s.service, key, string(value)); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (s *KeyringStore) Get(key string) ([]byte, error) {
	value, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return []byte(value), nil
}
