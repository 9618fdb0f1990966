package dbclient

import (
	"net"
	"net/url"
	"strconv"

	"spectra/internal/domain"

	_ "github.com/microsoft/go-mssqldb"
)

type sqlServerDialect struct{}

func (sqlServerDialect) Name() domain.DatabaseDriver { return domain.DatabaseDriverSQLServer }
func (sqlServerDialect) DriverName() string          { return "sqlserver" }

// Rebind turns ? into @p1, @p2, ... in order.
func (sqlServerDialect) Rebind(query string) string { return rebind(query, atPToken) }

// DSN builds a sqlserver:// URL. The ODBC driver name from the settings file
// has no meaning for the native TDS driver and is only reported as the
// application name so it shows up in server-side session listings.
func (sqlServerDialect) DSN(p domain.Profile) (string, error) {
	if err := requireFields(domain.DatabaseDriverSQLServer, map[string]string{
		"server": p.Server, "database": p.Database,
	}); err != nil {
		return "", err
	}
	host := p.Server
	if p.Port != 0 {
		host = net.JoinHostPort(p.Server, strconv.Itoa(p.Port))
	}
	q := url.Values{}
	q.Set("database", p.Database)
	appName := "spectra"
	if p.ODBCDriver != "" {
		appName += " (" + p.ODBCDriver + ")"
	}
	q.Set("app name", appName)

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     host,
		RawQuery: q.Encode(),
	}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	return u.String(), nil
}
