package dbclient

import (
	"spectra/internal/domain"

	_ "modernc.org/sqlite"
)

type sqliteDialect struct{}

func (sqliteDialect) Name() domain.DatabaseDriver { return domain.DatabaseDriverSQLite }
func (sqliteDialect) DriverName() string          { return "sqlite" }

// Rebind is the identity: SQLite accepts ? natively.
func (sqliteDialect) Rebind(query string) string { return query }

// DSN opens the file named by Database with a busy timeout for concurrent access.
func (sqliteDialect) DSN(p domain.Profile) (string, error) {
	if err := requireFields(domain.DatabaseDriverSQLite, map[string]string{
		"database": p.Database,
	}); err != nil {
		return "", err
	}
	return "file:" + p.Database + "?_pragma=busy_timeout(5000)", nil
}
