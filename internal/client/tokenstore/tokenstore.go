// Package tokenstore keeps access tokens in the OS keychain, one per
// server endpoint.
package tokenstore

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const ServiceName = "carddavctl"

var ErrTokenNotFound = errors.New("no token stored for endpoint")

type KeyringStore struct {
	serviceName string
}

func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (k *KeyringStore) SetToken(endpoint, token string) error {
	return keyring.Set(k.serviceName, normalizeEndpoint(endpoint), token)
}

func (k *KeyringStore) GetToken(endpoint string) (string, error) {
	token, err := keyring.Get(k.serviceName, normalizeEndpoint(endpoint))
	if err == nil {
		return token, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrTokenNotFound
	}
	return "", err
}

func (k *KeyringStore) DeleteToken(endpoint string) error {
	err := keyring.Delete(k.serviceName, normalizeEndpoint(endpoint))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrTokenNotFound
	}
	return err
}

func normalizeEndpoint(endpoint string) string {
	return strings.ToLower(strings.TrimSpace(endpoint))
}
