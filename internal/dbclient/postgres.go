package dbclient

import (
	"fmt"
	"strings"

	"spectra/internal/domain"

	_ "github.com/lib/pq"
)

type postgresDialect struct{}

func (postgresDialect) Name() domain.DatabaseDriver { return domain.DatabaseDriverPostgres }
func (postgresDialect) DriverName() string          { return "postgres" }

// Rebind turns ? into $1, $2, ... in order.
func (postgresDialect) Rebind(query string) string { return rebind(query, dollarToken) }

// DSN builds a keyword/value connection string.
func (postgresDialect) DSN(p domain.Profile) (string, error) {
	if err := requireFields(domain.DatabaseDriverPostgres, map[string]string{
		"host": p.Host, "database": p.Database,
	}); err != nil {
		return "", err
	}
	port := p.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		pqQuote(p.Host), port, pqQuote(p.User), pqQuote(p.Password), pqQuote(p.Database),
	), nil
}

// pqQuote quotes a keyword value when it is empty or contains spaces, quotes
// or backslashes, per the libpq connection string rules.
func pqQuote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
