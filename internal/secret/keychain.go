package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

const keychainService = "spectra"

// errNotFound is the exit status of `security` when an item is missing.
const errNotFound = 44

// ErrNoKeychain is returned by KeychainStore.Set off macOS.
var ErrNoKeychain = errors.New("keychain is only available on macOS")

// KeychainStore keeps secrets in the macOS login keychain through the
// `security` CLI. On other platforms reads find nothing and writes fail.
type KeychainStore struct {
	service string
}

// NewKeychainStore creates a KeychainStore for the spectra service entry.
func NewKeychainStore() *KeychainStore {
	return &KeychainStore{service: keychainService}
}

func (k *KeychainStore) available() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath("security")
	return err == nil
}

// Set stores value under key, replacing any previous item.
func (k *KeychainStore) Set(key string, value []byte) error {
	if !k.available() {
		return ErrNoKeychain
	}
	out, err := exec.Command("security", "add-generic-password",
		"-a", key,
		"-s", k.service,
		"-w", string(value),
		"-U",
	).CombinedOutput()
	if err != nil {
		return fmt.Errorf("keychain set %s: %s: %w", key, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Get returns the secret for key, or nil when there is none.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	if !k.available() {
		return nil, nil
	}
	out, err := exec.Command("security", "find-generic-password",
		"-a", key,
		"-s", k.service,
		"-w",
	).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == errNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("keychain get %s: %w", key, err)
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

// Delete removes the item for key. A missing item is not an error.
func (k *KeychainStore) Delete(key string) error {
	if !k.available() {
		return nil
	}
	err := exec.Command("security", "delete-generic-password",
		"-a", key,
		"-s", k.service,
	).Run()
	var exitErr *exec.ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.ExitCode() == errNotFound) {
		return fmt.Errorf("keychain delete %s: %w", key, err)
	}
	return nil
}
