package secret

// SecretStore keeps sensitive values such as the database password out of
// the plain-text settings file.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// DBPasswordKey is the key under which the database password is stored.
const DBPasswordKey = "spectra-db:password"
