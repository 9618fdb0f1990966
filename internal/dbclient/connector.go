package dbclient

import (
	"errors"
	"fmt"

	"spectra/internal/domain"
)

// ErrConnect marks failures to open or acquire a database connection.
var ErrConnect = errors.New("database connection failed")

// ErrIncompleteProfile is returned by a Dialect when a required profile field is empty.
var ErrIncompleteProfile = errors.New("incomplete connection profile")

// Dialect captures everything that differs between the supported databases:
// how to reach them and how they spell query parameters.
// A Client picks its Dialect once, at construction.
type Dialect interface {
	// Name is the discriminator value this dialect serves.
	Name() domain.DatabaseDriver

	// DriverName is the database/sql driver registration name.
	DriverName() string

	// DSN assembles the driver connection string from a profile.
	DSN(p domain.Profile) (string, error)

	// Rebind rewrites neutral '?' placeholders into the native token.
	Rebind(query string) string
}

// DialectFor returns the dialect for a driver. Unknown drivers are an error.
func DialectFor(driver domain.DatabaseDriver) (Dialect, error) {
	switch driver {
	case domain.DatabaseDriverPostgres:
		return postgresDialect{}, nil
	case domain.DatabaseDriverSQLServer:
		return sqlServerDialect{}, nil
	case domain.DatabaseDriverMySQL:
		return mysqlDialect{}, nil
	case domain.DatabaseDriverSQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}

// ExecError is returned by Execute when a mutating statement fails.
// The transaction has been rolled back by the time it is returned.
type ExecError struct {
	Query string
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execute failed: %v", e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

func requireFields(dialect domain.DatabaseDriver, fields map[string]string) error {
	for _, name := range []string{"host", "server", "database"} {
		if v, ok := fields[name]; ok && v == "" {
			return fmt.Errorf("%w: %s profile needs %s", ErrIncompleteProfile, dialect, name)
		}
	}
	return nil
}
