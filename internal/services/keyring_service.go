package services

import (
	"errors"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

const serviceName = "echorepo"

// GitHubCredential is the keyring entry holding the repository-service token.
const GitHubCredential = "github"

// KeyringService stores API credentials in the OS keyring. Only system
// backends are used; when none is available every lookup reports no key.
type KeyringService struct {
	open func() (keyring.Keyring, error)

	once sync.Once
	ring keyring.Keyring
	err  error
}

func NewKeyringService() *KeyringService {
	return &KeyringService{open: func() (keyring.Keyring, error) {
		return keyring.Open(keyring.Config{
			ServiceName: serviceName,
			AllowedBackends: []keyring.BackendType{
				keyring.KeychainBackend,
				keyring.SecretServiceBackend,
				keyring.KWalletBackend,
				keyring.WinCredBackend,
			},
			KeychainTrustApplication: true,
		})
	}}
}

// NewKeyringServiceWith wraps an already opened keyring.
func NewKeyringServiceWith(ring keyring.Keyring) *KeyringService {
	return &KeyringService{open: func() (keyring.Keyring, error) { return ring, nil }}
}

func (s *KeyringService) openRing() (keyring.Keyring, error) {
	s.once.Do(func() {
		s.ring, s.err = s.open()
	})
	return s.ring, s.err
}

func (s *KeyringService) StoreApiKey(name string, apiKey []byte) error {
	if len(apiKey) == 0 {
		return errors.New("API key is empty")
	}
	if name == "" {
		return errors.New("credential name is required")
	}
	ring, err := s.openRing()
	if err != nil {
		return err
	}
	return ring.Set(keyring.Item{
		Key:         name,
		Data:        apiKey,
		Label:       name + " API key",
		Description: "API key for " + name + " used by EchoRepo",
	})
}

// GetApiKey returns the stored key, or "" when none is stored.
func (s *KeyringService) GetApiKey(name string) (string, error) {
	if name == "" {
		return "", errors.New("credential name is required")
	}
	ring, err := s.openRing()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(name)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(item.Data)), nil
}

func (s *KeyringService) DeleteApiKey(name string) error {
	if name == "" {
		return errors.New("credential name is required")
	}
	ring, err := s.openRing()
	if err != nil {
		return err
	}
	return ring.Remove(name)
}

func (s *KeyringService) ListApiKeys() ([]string, error) {
	ring, err := s.openRing()
	if err != nil {
		return nil, err
	}
	return ring.Keys()
}

// Resolve returns configured when it is set, otherwise the keyring entry for
// name. Keyring failures are reported through the error but leave the
// credential empty rather than aborting.
func (s *KeyringService) Resolve(configured, name string) (string, error) {
	if strings.TrimSpace(configured) != "" {
		return strings.TrimSpace(configured), nil
	}
	return s.GetApiKey(name)
}
