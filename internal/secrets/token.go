// Package secrets keeps the data service token in the OS keychain.
package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the engine's secrets in the OS keychain.
const KeyringService = "jobboard"

var ErrNotFound = errors.New("service token not found in keychain")

func GetServiceToken(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	tok, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(tok) == "" {
		return "", ErrNotFound
	}
	return tok, nil
}

func SetServiceToken(account, token string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, account, strings.TrimSpace(token))
}

// DeleteServiceToken is a no-op when nothing is stored.
func DeleteServiceToken(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// TokenFunc adapts the keychain lookup for the remote client. A missing
// token yields "" so requests go out unauthenticated.
func TokenFunc(account string) func() (string, error) {
	return func() (string, error) {
		tok, err := GetServiceToken(account)
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return tok, err
	}
}
