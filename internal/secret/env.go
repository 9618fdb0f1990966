package secret

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// EnvStore reads secrets from environment variables. Keys are mapped to
// variable names by upper-casing and replacing non-alphanumerics with '_',
// prefixed with SPECTRA_ (spectra-db:password → SPECTRA_DB_PASSWORD).
// Set and Delete only affect the current process.
type EnvStore struct {
	mu sync.Mutex
}

// NewEnvStore creates an EnvStore.
func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// EnvName returns the environment variable consulted for key.
func EnvName(key string) string {
	key = strings.TrimPrefix(key, "spectra-")
	var b strings.Builder
	b.WriteString("SPECTRA_")
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (e *EnvStore) Set(key string, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := os.Setenv(EnvName(key), string(value)); err != nil {
		return fmt.Errorf("env set: %w", err)
	}
	return nil
}

func (e *EnvStore) Get(key string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := os.LookupEnv(EnvName(key))
	if !ok || v == "" {
		return nil, nil
	}
	return []byte(v), nil
}

func (e *EnvStore) Delete(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return os.Unsetenv(EnvName(key))
}

// Chain consults each store in order and returns the first non-empty value.
// Set and Delete go to the first store only.
type Chain []SecretStore

func (c Chain) Set(key string, value []byte) error {
	if len(c) == 0 {
		return fmt.Errorf("secret: no stores configured")
	}
	return c[0].Set(key, value)
}

func (c Chain) Get(key string) ([]byte, error) {
	for _, s := range c {
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if len(v) > 0 {
			return v, nil
		}
	}
	return nil, nil
}

func (c Chain) Delete(key string) error {
	if len(c) == 0 {
		return nil
	}
	return c[0].Delete(key)
}
