package dbclient

import (
	"net"
	"strconv"

	"spectra/internal/domain"

	"github.com/go-sql-driver/mysql"
)

type mysqlDialect struct{}

func (mysqlDialect) Name() domain.DatabaseDriver { return domain.DatabaseDriverMySQL }
func (mysqlDialect) DriverName() string          { return "mysql" }

// Rebind is the identity: ? is already MySQL's native token.
func (mysqlDialect) Rebind(query string) string { return query }

// DSN builds a go-sql-driver DSN with parseTime enabled.
func (mysqlDialect) DSN(p domain.Profile) (string, error) {
	if err := requireFields(domain.DatabaseDriverMySQL, map[string]string{
		"host": p.Host, "database": p.Database,
	}); err != nil {
		return "", err
	}
	port := p.Port
	if port == 0 {
		port = 3306
	}
	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(p.Host, strconv.Itoa(port))
	cfg.DBName = p.Database
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN(), nil
}
